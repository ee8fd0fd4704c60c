package app

import (
	"context"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/ecomarket/ecopos/internal/domain/franchise"
	"github.com/ecomarket/ecopos/internal/domain/session"
	"github.com/ecomarket/ecopos/internal/seed"
	"github.com/ecomarket/ecopos/internal/storage/logfile"
	"github.com/ecomarket/ecopos/internal/terminal"
	"github.com/ecomarket/ecopos/pkg/health"
)

// Run creates all dependencies and drives the operator terminal until the
// session ends or the process is signalled. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("log_file", cfg.LogFile))

	// Startup data: embedded EcoMarket dataset unless a seed file overrides it.
	var (
		biz *franchise.Business
		err error
	)
	if cfg.SeedFile != "" {
		biz, err = seed.LoadFile(cfg.SeedFile)
	} else {
		biz, err = seed.Load()
	}
	if err != nil {
		return errors.Wrap(err, "load seed data")
	}
	lg.Info("Business loaded",
		zap.String("business", biz.Name),
		zap.Int("franchises", len(biz.Franchises())),
	)

	// Receipt sink: the append-only transaction log.
	sink := logfile.New(cfg.LogFile)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddCheck("transaction-log", 5*time.Second, sink.Check)
	healthSvc.AddCheck("goroutines", time.Second, health.GoroutineCountCheck(cfg.Health.GoroutineLimit))
	healthSvc.Start(ctx, cfg.Health.Interval)
	defer healthSvc.Stop()

	// Checkout counters.
	meter := m.MeterProvider().Meter("ecopos")
	checkouts, err := meter.Int64Counter("pos.checkouts",
		metric.WithDescription("Completed checkouts"))
	if err != nil {
		return errors.Wrap(err, "create checkout counter")
	}
	logFailures, err := meter.Int64Counter("pos.receipt_log_failures",
		metric.WithDescription("Receipt entries lost to transaction log write failures"))
	if err != nil {
		return errors.Wrap(err, "create log failure counter")
	}

	sess := session.New(biz, sink)
	term := terminal.New(sess, healthSvc, terminal.Metrics{
		Checkouts:   checkouts,
		LogFailures: logFailures,
	}, lg)

	lg.Info("Terminal ready", zap.String("business", biz.Name))
	return term.Run(ctx, os.Stdin, os.Stdout)
}
