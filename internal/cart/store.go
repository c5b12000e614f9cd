package cart

import (
	"sync"

	"github.com/sourcemart/storefront-api/internal/pricing"
)

// Entry is the authoritative per-product cart state: how many and from
// which sourcing option.
type Entry struct {
	Quantity     int
	Source       pricing.Source
	VariantIndex int
}

// Item pairs an entry with its product id for ordered iteration.
type Item struct {
	ProductID string
	Entry
}

// Store holds cart records keyed by account. Line items keep insertion
// order so the storefront renders a stable list across refreshes.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
}

type record struct {
	order []string
	items map[string]Entry
}

// NewStore constructs an empty cart store.
func NewStore() *Store {
	return &Store{records: make(map[string]*record)}
}

// Items returns an insertion-ordered snapshot of the account's cart.
func (s *Store) Items(accountKey string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[accountKey]
	if !ok {
		return []Item{}
	}
	out := make([]Item, 0, len(rec.order))
	for _, id := range rec.order {
		out = append(out, Item{ProductID: id, Entry: rec.items[id]})
	}
	return out
}

// Get returns the entry for productID in the account's cart.
func (s *Store) Get(accountKey, productID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[accountKey]
	if !ok {
		return Entry{}, false
	}
	entry, ok := rec.items[productID]
	return entry, ok
}

// Add inserts a line item or increments the existing quantity. Source and
// variant selection always take the latest value.
func (s *Store) Add(accountKey, productID string, entry Entry) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[accountKey]
	if !ok {
		rec = &record{items: make(map[string]Entry)}
		s.records[accountKey] = rec
	}
	if existing, ok := rec.items[productID]; ok {
		entry.Quantity += existing.Quantity
	} else {
		rec.order = append(rec.order, productID)
	}
	rec.items[productID] = entry
	return entry
}

// SetQuantity overwrites the quantity for an existing line item. It
// reports whether the item was present.
func (s *Store) SetQuantity(accountKey, productID string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[accountKey]
	if !ok {
		return false
	}
	entry, ok := rec.items[productID]
	if !ok {
		return false
	}
	entry.Quantity = qty
	rec.items[productID] = entry
	return true
}

// Remove deletes a line item, reporting whether it existed.
func (s *Store) Remove(accountKey, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[accountKey]
	if !ok {
		return false
	}
	if _, ok := rec.items[productID]; !ok {
		return false
	}
	delete(rec.items, productID)
	for i, id := range rec.order {
		if id == productID {
			rec.order = append(rec.order[:i], rec.order[i+1:]...)
			break
		}
	}
	if len(rec.items) == 0 {
		delete(s.records, accountKey)
	}
	return true
}

// Clear drops the whole cart for an account. Used after order placement.
func (s *Store) Clear(accountKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, accountKey)
}
