package franchise

// Business is a named collection of franchises. Pure aggregate: it carries no
// pricing logic of its own.
type Business struct {
	Name string

	franchises []*Franchise
}

// NewBusiness builds a Business over the given franchises.
func NewBusiness(name string, franchises ...*Franchise) *Business {
	return &Business{
		Name:       name,
		franchises: franchises,
	}
}

// Franchises returns the franchises in construction order.
func (b *Business) Franchises() []*Franchise {
	return b.franchises
}

// FranchiseByID returns a franchise by its identifier.
func (b *Business) FranchiseByID(id string) (*Franchise, bool) {
	for _, f := range b.franchises {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}
