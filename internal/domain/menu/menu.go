// Package menu models a named, time-labeled price list owned by a franchise.
package menu

import (
	"sort"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a menu lookup by ID fails.
	ErrNotFound = errors.New("menu not found")
	// ErrNegativePrice is returned when an item price is below zero.
	ErrNegativePrice = errors.New("price must not be negative")
	// ErrUnknownItem is returned when an item is not on the menu.
	ErrUnknownItem = errors.New("item not on menu")
)

// Item is a single menu entry for display purposes.
type Item struct {
	Name  string
	Price decimal.Decimal
}

// Menu is a named subset of catalog items with its own price snapshot.
// The time window is descriptive metadata only: nothing gates availability
// on it.
type Menu struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string

	items map[string]decimal.Decimal
}

// New builds a Menu with an independent copy of the given price map, so
// later edits to the source (catalog or otherwise) cannot retroactively
// alter the menu.
func New(name string, items map[string]decimal.Decimal, startTime, endTime string) (*Menu, error) {
	cp := make(map[string]decimal.Decimal, len(items))
	for item, price := range items {
		if price.IsNegative() {
			return nil, errors.Wrapf(ErrNegativePrice, "menu %q item %q", name, item)
		}
		cp[item] = price
	}
	return &Menu{
		ID:        uuid.NewString(),
		Name:      name,
		StartTime: startTime,
		EndTime:   endTime,
		items:     cp,
	}, nil
}

// Clone returns a deep copy of the menu with a fresh identity. Prices of the
// clone and the original diverge independently.
func (m *Menu) Clone() *Menu {
	items := make(map[string]decimal.Decimal, len(m.items))
	for item, price := range m.items {
		items[item] = price
	}
	return &Menu{
		ID:        uuid.NewString(),
		Name:      m.Name,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		items:     items,
	}
}

// CalculateBill sums this menu's price for every cart entry it carries.
// Entries not on the menu contribute nothing: a cart may hold stale names
// after a menu switch and those are tolerated, not priced. An empty cart
// bills zero, and repeated names are each counted.
func (m *Menu) CalculateBill(cart []string) decimal.Decimal {
	total := decimal.Zero
	for _, name := range cart {
		if price, ok := m.items[name]; ok {
			total = total.Add(price)
		}
	}
	return total
}

// Price returns the menu price for an item and whether the menu carries it.
func (m *Menu) Price(name string) (decimal.Decimal, bool) {
	price, ok := m.items[name]
	return price, ok
}

// Has reports whether the menu carries the named item.
func (m *Menu) Has(name string) bool {
	_, ok := m.items[name]
	return ok
}

// Items returns the menu entries sorted by name for stable display.
func (m *Menu) Items() []Item {
	items := make([]Item, 0, len(m.items))
	for name, price := range m.items {
		items = append(items, Item{Name: name, Price: price})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// SetPrice updates the price of an existing menu item.
func (m *Menu) SetPrice(name string, price decimal.Decimal) error {
	if price.IsNegative() {
		return errors.Wrapf(ErrNegativePrice, "menu %q item %q", m.Name, name)
	}
	if _, ok := m.items[name]; !ok {
		return errors.Wrapf(ErrUnknownItem, "menu %q item %q", m.Name, name)
	}
	m.items[name] = price
	return nil
}

// Markup multiplies every price by rate, rounded to 2 decimal places.
// Rounding is half-away-from-zero, so a template price of 2.50 marks up to
// exactly 2.75 at the mall rate. Applied once, at franchise construction.
func (m *Menu) Markup(rate decimal.Decimal) {
	for name, price := range m.items {
		m.items[name] = price.Mul(rate).Round(2)
	}
}
