// Package session holds the transient state of one operator checkout flow:
// the selected franchise, the active menu, and the accumulated cart.
package session

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecomarket/ecopos/internal/domain/franchise"
	"github.com/ecomarket/ecopos/internal/domain/menu"
	"github.com/ecomarket/ecopos/internal/domain/receipt"
)

// Sentinel errors for session state violations. All are recoverable: the UI
// reports them and the session keeps going.
var (
	ErrNoFranchise  = errors.New("no franchise selected")
	ErrNoActiveMenu = errors.New("no active menu selected")
	ErrEmptyCart    = errors.New("cart is empty")
)

// UnknownItemError indicates an add-to-cart for an item the active menu does
// not carry. Adds are rejected up front rather than silently priced at zero.
type UnknownItemError struct {
	Item string
	Menu string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("item %q is not on menu %q", e.Item, e.Menu)
}

// UnknownLineError indicates a cart line ID that is not in the cart.
type UnknownLineError struct {
	LineID string
}

func (e *UnknownLineError) Error() string {
	return fmt.Sprintf("cart line %s not found", e.LineID)
}

// Line is one cart entry. The same item may appear on several lines; each
// line has its own identity so duplicates can be removed individually.
type Line struct {
	ID   string
	Name string
}

// CheckoutResult holds the outcome of a successful checkout.
type CheckoutResult struct {
	Receipt *receipt.Receipt

	// LogWarning is set when the receipt could not be appended to the
	// transaction log. The checkout itself still completed: the cart is
	// cleared and the receipt returned.
	LogWarning error
}

// Session is the order state machine: NoFranchise -> FranchiseSelected ->
// MenuSelected (cart active). It is not safe for concurrent use; each
// operator terminal owns exactly one Session.
type Session struct {
	business *franchise.Business
	sink     receipt.Sink
	now      func() time.Time

	franchise *franchise.Franchise
	menu      *menu.Menu
	lines     []Line
}

// New creates an empty Session over the given business topology, persisting
// receipts to sink.
func New(business *franchise.Business, sink receipt.Sink) *Session {
	return &Session{
		business: business,
		sink:     sink,
		now:      time.Now,
	}
}

// BusinessName returns the name of the business this session serves.
func (s *Session) BusinessName() string {
	return s.business.Name
}

// Franchises lists the selectable franchises in stable order.
func (s *Session) Franchises() []*franchise.Franchise {
	return s.business.Franchises()
}

// SelectFranchise activates a franchise by ID. Any active menu is invalidated
// and the cart is discarded; a menu must be selected before items can be
// added again.
func (s *Session) SelectFranchise(id string) error {
	f, ok := s.business.FranchiseByID(id)
	if !ok {
		return errors.Wrapf(franchise.ErrNotFound, "select franchise %s", id)
	}
	s.franchise = f
	s.menu = nil
	s.lines = nil
	return nil
}

// Franchise returns the active franchise, or nil.
func (s *Session) Franchise() *franchise.Franchise {
	return s.franchise
}

// Menus lists the active franchise's menus.
func (s *Session) Menus() ([]*menu.Menu, error) {
	if s.franchise == nil {
		return nil, ErrNoFranchise
	}
	return s.franchise.Menus(), nil
}

// SelectMenu activates one of the selected franchise's menus by ID.
// Switching menus mid-cart discards the cart: pricing always follows the
// active menu.
func (s *Session) SelectMenu(id string) error {
	if s.franchise == nil {
		return ErrNoFranchise
	}
	m, ok := s.franchise.MenuByID(id)
	if !ok {
		return errors.Wrapf(menu.ErrNotFound, "select menu %s", id)
	}
	s.menu = m
	s.lines = nil
	return nil
}

// Menu returns the active menu, or nil.
func (s *Session) Menu() *menu.Menu {
	return s.menu
}

// Items lists the active menu's items sorted by name.
func (s *Session) Items() ([]menu.Item, error) {
	if s.menu == nil {
		return nil, ErrNoActiveMenu
	}
	return s.menu.Items(), nil
}

// AddItem appends one cart line for the named item and returns it. Names the
// active menu does not carry are rejected with *UnknownItemError.
func (s *Session) AddItem(name string) (Line, error) {
	if s.menu == nil {
		return Line{}, ErrNoActiveMenu
	}
	if !s.menu.Has(name) {
		return Line{}, &UnknownItemError{Item: name, Menu: s.menu.Name}
	}
	line := Line{ID: uuid.NewString(), Name: name}
	s.lines = append(s.lines, line)
	return line, nil
}

// RemoveLine removes exactly one cart line by its ID, so duplicate items can
// be removed individually.
func (s *Session) RemoveLine(id string) error {
	if s.menu == nil {
		return ErrNoActiveMenu
	}
	for i, l := range s.lines {
		if l.ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return nil
		}
	}
	return &UnknownLineError{LineID: id}
}

// ClearCart empties the cart.
func (s *Session) ClearCart() {
	s.lines = nil
}

// Lines returns a copy of the current cart lines in order.
func (s *Session) Lines() []Line {
	return slices.Clone(s.lines)
}

// Total prices the current cart against the active menu. With no active menu
// or an empty cart the total is zero.
func (s *Session) Total() decimal.Decimal {
	if s.menu == nil || len(s.lines) == 0 {
		return decimal.Zero
	}
	return s.menu.CalculateBill(s.itemNames())
}

// Checkout finalizes the cart: it builds the receipt at current menu prices,
// appends it to the transaction log, and clears the cart. An empty cart fails
// with ErrEmptyCart and changes nothing. A log append failure does not fail
// the checkout; it is surfaced as CheckoutResult.LogWarning.
func (s *Session) Checkout(ctx context.Context) (*CheckoutResult, error) {
	if s.menu == nil {
		return nil, ErrNoActiveMenu
	}
	if len(s.lines) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]receipt.LineItem, 0, len(s.lines))
	total := decimal.Zero
	for _, l := range s.lines {
		price, ok := s.menu.Price(l.Name)
		if !ok {
			// Stale line the active menu no longer carries: tolerated,
			// contributes nothing, same as CalculateBill.
			continue
		}
		lines = append(lines, receipt.LineItem{Name: l.Name, Price: price})
		total = total.Add(price)
	}

	r := &receipt.Receipt{
		ID:        uuid.NewString(),
		Timestamp: s.now(),
		Store:     s.franchise.Address,
		Lines:     lines,
		Total:     total.Round(2),
	}

	var warn error
	if err := s.sink.Append(ctx, r.Render()); err != nil {
		warn = errors.Wrap(err, "append receipt")
	}

	s.lines = nil
	return &CheckoutResult{Receipt: r, LogWarning: warn}, nil
}

func (s *Session) itemNames() []string {
	names := make([]string, len(s.lines))
	for i, l := range s.lines {
		names[i] = l.Name
	}
	return names
}
