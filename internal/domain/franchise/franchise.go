// Package franchise models a store location with its own menu price copies,
// and the business aggregate that owns the locations.
package franchise

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecomarket/ecopos/internal/domain/menu"
)

// ErrNotFound is returned when a franchise lookup by ID fails.
var ErrNotFound = errors.New("franchise not found")

// mallRate is the deterministic mall markup: +10%, applied exactly once at
// construction.
var mallRate = decimal.RequireFromString("1.1")

// Franchise is a store location. It owns deep copies of the menu templates it
// was constructed with, so locations sharing a template can never
// cross-contaminate prices.
type Franchise struct {
	ID      string
	Address string
	IsMall  bool

	menus []*menu.Menu
}

// New builds a Franchise from an address and an ordered set of menu
// templates. Every template is cloned; for mall locations every cloned price
// is rewritten to the marked-up value before the franchise is returned.
func New(address string, templates []*menu.Menu, isMall bool) *Franchise {
	menus := make([]*menu.Menu, len(templates))
	for i, t := range templates {
		m := t.Clone()
		if isMall {
			m.Markup(mallRate)
		}
		menus[i] = m
	}
	return &Franchise{
		ID:      uuid.NewString(),
		Address: address,
		IsMall:  isMall,
		menus:   menus,
	}
}

// Menus returns the franchise's menus in construction order.
func (f *Franchise) Menus() []*menu.Menu {
	return f.menus
}

// MenuByID returns one of the franchise's menus by its identifier.
func (f *Franchise) MenuByID(id string) (*menu.Menu, bool) {
	for _, m := range f.menus {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// String returns the human-readable label for the franchise, its address.
func (f *Franchise) String() string {
	return f.Address
}
