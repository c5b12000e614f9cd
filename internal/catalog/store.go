package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sourcemart/storefront-api/internal/pricing"
)

// Store is an in-memory product catalog. Products are immutable once
// loaded; lookups return shared pointers and callers must not mutate them.
type Store struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Product
}

// NewStore builds a store from the provided products, parsing each
// product's tier encodings into its resolved price schedule.
func NewStore(logger zerolog.Logger, products ...Product) *Store {
	s := &Store{byID: make(map[string]*Product, len(products))}
	for i := range products {
		p := products[i]
		tiers := pricing.ParseEncodings(p.VariablePricing, logger.With().Str("product_id", p.ID).Logger())
		p.Tiers = pricing.AttachSavings(tiers, p.RegularPrice)
		if _, exists := s.byID[p.ID]; exists {
			logger.Warn().Str("product_id", p.ID).Msg("duplicate product id in seed, keeping first")
			continue
		}
		s.byID[p.ID] = &p
		s.order = append(s.order, p.ID)
	}
	return s
}

// Get returns the product for id, or nil when unknown.
func (s *Store) Get(_ context.Context, id string) *Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id]
}

// GetMultiple returns the products for the requested ids in request order.
// Unknown ids are skipped.
func (s *Store) GetMultiple(_ context.Context, ids []string) []*Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ListFilter captures catalog listing filters.
type ListFilter struct {
	Query    string
	Category string
	Brand    string
}

// List returns products matching the filter in insertion order, plus the
// total match count before the offset/limit window is applied.
func (s *Store) List(_ context.Context, f ListFilter, offset, limit int) ([]*Product, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Product, 0, len(s.order))
	for _, id := range s.order {
		p := s.byID[id]
		if !matches(p, f) {
			continue
		}
		matched = append(matched, p)
	}
	total := len(matched)
	if offset >= total {
		return []*Product{}, total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total
}

// Len reports the number of loaded products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func matches(p *Product, f ListFilter) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Brand), q) &&
			!strings.Contains(strings.ToLower(p.Category), q) {
			return false
		}
	}
	return true
}
