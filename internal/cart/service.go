package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sourcemart/storefront-api/internal/catalog"
	"github.com/sourcemart/storefront-api/internal/obs"
	"github.com/sourcemart/storefront-api/internal/pricing"
)

// ErrNotFound indicates the referenced line item or product does not exist.
var ErrNotFound = errors.New("cart item not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrVariantMismatch is returned when the requested variant index has no
// matching entry in the product's variant list. Raised instead of
// defaulting because a silently substituted variant would misstate price
// and SKU.
var ErrVariantMismatch = errors.New("no matching product variant")

// ErrOutOfStock is returned when adding a product with no stock.
var ErrOutOfStock = errors.New("product out of stock")

// ErrBelowMOQ is returned when the resulting line quantity is under the
// product's minimum order quantity.
var ErrBelowMOQ = errors.New("quantity below minimum order quantity")

// Service encapsulates cart domain operations. Construct it, then attach
// the debouncer via WithDebounce so flushes route back through the service.
type Service struct {
	Store    *Store
	Catalog  *catalog.Service
	Logger   zerolog.Logger
	debounce *Debouncer
}

// WithDebounce wires a debouncer whose flushes commit through the service.
func (s *Service) WithDebounce(window time.Duration) *Service {
	s.debounce = NewDebouncer(window, s.commitQuantity)
	return s
}

// Debouncer exposes the attached debouncer for shutdown wiring.
func (s *Service) Debouncer() *Debouncer {
	return s.debounce
}

// AddItem inserts or increments a line item. The product must exist and
// the variant index must reference a real variant.
func (s *Service) AddItem(ctx context.Context, accountKey, productID string, qty int, source pricing.Source, variantIndex int) (Entry, error) {
	if s == nil || s.Store == nil || s.Catalog == nil {
		return Entry{}, errors.New("cart service not configured")
	}
	if qty < 1 {
		return Entry{}, fmt.Errorf("quantity must be at least 1: %w", ErrInvalidInput)
	}
	if !source.Valid() {
		return Entry{}, fmt.Errorf("%w: %q", pricing.ErrUnknownSource, source)
	}
	product, err := s.Catalog.GetByID(ctx, productID)
	if err != nil {
		return Entry{}, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	if !product.HasVariant(variantIndex) {
		return Entry{}, fmt.Errorf("variant index %d: %w", variantIndex, ErrVariantMismatch)
	}
	if !product.InStock() {
		return Entry{}, fmt.Errorf("product %s: %w", productID, ErrOutOfStock)
	}
	// MOQ applies to the line total, so increments onto an existing line
	// always pass once the first add met it.
	total := qty
	if existing, ok := s.Store.Get(accountKey, productID); ok {
		total += existing.Quantity
	}
	if total < product.MOQ {
		return Entry{}, fmt.Errorf("quantity %d under moq %d: %w", total, product.MOQ, ErrBelowMOQ)
	}
	entry := s.Store.Add(accountKey, productID, Entry{Quantity: qty, Source: source, VariantIndex: variantIndex})
	s.invalidate(ctx, productID)
	return entry, nil
}

// UpdateQuantity schedules a debounced quantity write. The new quantity is
// immediately visible to reads through the pending overlay; the
// authoritative store write happens once the debounce window elapses.
func (s *Service) UpdateQuantity(ctx context.Context, accountKey, productID string, qty int) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if qty < 1 {
		return fmt.Errorf("quantity must be at least 1: %w", ErrInvalidInput)
	}
	if _, ok := s.Store.Get(accountKey, productID); !ok {
		return ErrNotFound
	}
	if s.debounce == nil {
		s.commitQuantity(accountKey, productID, qty)
		return nil
	}
	s.debounce.Queue(accountKey, productID, qty)
	return nil
}

// Remove deletes a line item immediately and cancels any pending debounced
// write for it. Pending writes for other items are untouched.
func (s *Service) Remove(ctx context.Context, accountKey, productID string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if s.debounce != nil {
		s.debounce.Cancel(accountKey, productID)
	}
	if !s.Store.Remove(accountKey, productID) {
		return ErrNotFound
	}
	s.invalidate(ctx, productID)
	return nil
}

// Items returns the account's cart entries with pending debounced
// quantities overlaid, in insertion order.
func (s *Service) Items(accountKey string) []Item {
	items := s.Store.Items(accountKey)
	if s.debounce == nil {
		return items
	}
	for i := range items {
		if qty, ok := s.debounce.Pending(accountKey, items[i].ProductID); ok {
			items[i].Quantity = qty
		}
	}
	return items
}

// Summary reconciles the account's cart against the catalog and prices it.
func (s *Service) Summary(ctx context.Context, accountKey string) (Summary, error) {
	items := s.Items(accountKey)
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.Catalog.GetMultiple(ctx, ids)
	if err != nil {
		// Stale-but-present: reconcile with whatever resolved rather
		// than failing the whole view.
		s.Logger.Warn().Err(err).Msg("product batch fetch failed, reconciling partial")
	}
	byID := make(map[string]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return Reconcile(items, byID), nil
}

// Clear drops the cart and all its pending writes. Used after order
// placement.
func (s *Service) Clear(accountKey string) {
	if s.debounce != nil {
		s.debounce.CancelAccount(accountKey)
	}
	s.Store.Clear(accountKey)
}

// Close stops all pending debounce timers.
func (s *Service) Close() {
	if s.debounce != nil {
		s.debounce.Close()
	}
}

func (s *Service) commitQuantity(accountKey, productID string, qty int) {
	result := "ok"
	if !s.Store.SetQuantity(accountKey, productID, qty) {
		// Item removed while the write was pending. Last write loses to
		// the explicit removal.
		result = "stale"
	} else {
		s.invalidate(context.Background(), productID)
	}
	if obs.CartWriteFlushTotal != nil {
		obs.CartWriteFlushTotal.WithLabelValues(result).Inc()
	}
}

func (s *Service) invalidate(ctx context.Context, productID string) {
	if s.Catalog == nil {
		return
	}
	if err := s.Catalog.InvalidateProducts(ctx, productID); err != nil {
		s.Logger.Warn().Err(err).Str("product_id", productID).Msg("cache invalidation failed")
	}
}
