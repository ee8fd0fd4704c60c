// Package catalog holds the master list of item base prices.
package catalog

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownItem is returned when a requested item is not in the catalog.
	ErrUnknownItem = errors.New("item not in catalog")
	// ErrNegativePrice is returned when an item price is below zero.
	ErrNegativePrice = errors.New("price must not be negative")
)

// Catalog maps item names to their canonical base unit prices. It is built
// once at startup and read-only afterwards.
type Catalog struct {
	prices map[string]decimal.Decimal
}

// New builds a Catalog from the given prices. The input map is copied, so
// later mutations of it cannot reach the catalog.
func New(prices map[string]decimal.Decimal) (*Catalog, error) {
	cp := make(map[string]decimal.Decimal, len(prices))
	for name, price := range prices {
		if price.IsNegative() {
			return nil, errors.Wrapf(ErrNegativePrice, "item %q", name)
		}
		cp[name] = price
	}
	return &Catalog{prices: cp}, nil
}

// Price returns the base price for an item and whether the item exists.
func (c *Catalog) Price(name string) (decimal.Decimal, bool) {
	price, ok := c.prices[name]
	return price, ok
}

// Select builds an independent name-to-price map for the given items,
// suitable for constructing a menu template. Editing the returned map never
// affects the catalog. Unknown names are an error.
func (c *Catalog) Select(names ...string) (map[string]decimal.Decimal, error) {
	items := make(map[string]decimal.Decimal, len(names))
	for _, name := range names {
		price, ok := c.prices[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownItem, "item %q", name)
		}
		items[name] = price
	}
	return items, nil
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.prices)
}
