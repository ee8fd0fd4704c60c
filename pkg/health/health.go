// Package health runs named background checks with flap damping.
//
// Each registered check runs on an interval in a background goroutine and
// uses consecutive failure/success thresholds before flipping state, so a
// single slow disk probe does not immediately alarm the operator. The POS
// terminal reads check snapshots on demand for its status display.
package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc is a health check function. It should return nil if the checked
// component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// checkConfig holds the configuration and runtime state for a single check.
//
// Concurrency model: run() is called from exactly one goroutine (the ticker),
// so the consecutive counters need no synchronization. The healthy flag and
// lastErr are read by status snapshots from arbitrary goroutines and use
// atomics.
type checkConfig struct {
	name             string
	timeout          time.Duration
	check            CheckFunc
	failureThreshold int
	successThreshold int

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	consecutiveFails int
	consecutiveOK    int
}

func (c *checkConfig) lastError() error {
	if p := c.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// run executes the check once and updates thresholds accordingly.
// Must be called from a single goroutine.
func (c *checkConfig) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.check(checkCtx)
	c.lastErr.Store(&err)

	if err != nil {
		c.consecutiveOK = 0
		c.consecutiveFails++
		if c.consecutiveFails >= c.failureThreshold {
			c.healthy.Store(false)
		}
	} else {
		c.consecutiveFails = 0
		c.consecutiveOK++
		if c.consecutiveOK >= c.successThreshold {
			c.healthy.Store(true)
		}
	}
}

// Status is a point-in-time snapshot of one check.
type Status struct {
	Name    string
	Healthy bool
	Err     error
}

// Service manages the registered checks and their background goroutines.
type Service struct {
	// mu protects the check slice and cancel. Held during registration
	// (before Start) and in Start/Stop; snapshots copy under the lock.
	mu     sync.RWMutex
	checks []*checkConfig
	cancel context.CancelFunc
}

// New creates an empty health Service.
func New() *Service {
	return &Service{}
}

// AddCheck registers a named check. Checks start healthy until proven
// otherwise: three consecutive failures mark a check unhealthy, one success
// restores it.
func (s *Service) AddCheck(name string, timeout time.Duration, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &checkConfig{
		name:             name,
		timeout:          timeout,
		check:            check,
		failureThreshold: 3,
		successThreshold: 1,
	}
	c.healthy.Store(true)
	s.checks = append(s.checks, c)
}

// Start begins running all registered checks at the given interval, each in
// its own goroutine. Register all checks before calling Start.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	checks := make([]*checkConfig, len(s.checks))
	copy(checks, s.checks)
	s.mu.Unlock()

	for _, c := range checks {
		go runCheck(ctx, c, interval)
	}
}

// runCheck periodically executes a single check until the context is cancelled.
func runCheck(ctx context.Context, c *checkConfig, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start.
	c.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.run(ctx)
		}
	}
}

// Stop cancels all background check goroutines. Safe to call multiple times.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Healthy reports whether every registered check is currently passing.
func (s *Service) Healthy() bool {
	for _, st := range s.Statuses() {
		if !st.Healthy {
			return false
		}
	}
	return true
}

// Statuses returns a snapshot of all checks in registration order.
func (s *Service) Statuses() []Status {
	s.mu.RLock()
	checks := make([]*checkConfig, len(s.checks))
	copy(checks, s.checks)
	s.mu.RUnlock()

	statuses := make([]Status, len(checks))
	for i, c := range checks {
		statuses[i] = Status{
			Name:    c.name,
			Healthy: c.healthy.Load(),
			Err:     c.lastError(),
		}
	}
	return statuses
}
