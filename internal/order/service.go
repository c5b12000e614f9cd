package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/sourcemart/storefront-api/internal/cart"
	"github.com/sourcemart/storefront-api/internal/events"
	"github.com/sourcemart/storefront-api/internal/obs"
	"github.com/sourcemart/storefront-api/internal/pricing"
)

// ErrEmptyCart is returned when checkout is attempted with no line items.
var ErrEmptyCart = errors.New("order: cart is empty")

// ErrUnresolvedItems is returned when a line item still awaits product
// data. Placing an order against a provisional subtotal would charge an
// unknown amount.
var ErrUnresolvedItems = errors.New("order: cart has unresolved items")

// ErrInvalidInput is returned when the checkout payload fails validation.
var ErrInvalidInput = errors.New("order: invalid input")

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order: not found")

// Service turns a reconciled cart into a placed order.
type Service struct {
	Orders   *Store
	Cart     *cart.Service
	Bus      *events.Bus
	Validate *validator.Validate
	Logger   zerolog.Logger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Create validates the checkout input, snapshots the cart, and places the
// order. The cart is cleared on success and order.created is emitted.
func (s *Service) Create(ctx context.Context, accountKey string, input Input) (*Order, error) {
	if s == nil || s.Orders == nil || s.Cart == nil {
		return nil, errors.New("order service not configured")
	}
	if s.Validate != nil {
		if err := s.Validate.Struct(input); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	source, err := pricing.ParseSource(input.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	summary, err := s.Cart.Summary(ctx, accountKey)
	if err != nil {
		return nil, fmt.Errorf("snapshot cart: %w", err)
	}
	if len(summary.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if summary.Provisional {
		return nil, ErrUnresolvedItems
	}

	now := s.now()
	o := &Order{
		ID:         newObjectID(now),
		AccountKey: accountKey,
		Recipient:  input.Recipient,
		Source:     source,
		Items:      summary.Items,
		Subtotal:   summary.Subtotal,
		Status:     StatusCreated,
		CreatedAt:  now,
	}
	s.Orders.Put(o)
	s.Cart.Clear(accountKey)

	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.Inc()
	}
	if s.Bus != nil {
		if _, err := s.Bus.Emit(ctx, events.TopicOrderCreated, o.ID, map[string]any{
			"orderId":  o.ID,
			"subtotal": pricing.Display(o.Subtotal),
			"items":    len(o.Items),
		}); err != nil {
			s.Logger.Warn().Err(err).Str("order_id", o.ID).Msg("order.created notification failed")
		}
	}
	return o, nil
}

// Get returns an order scoped to the requesting account.
func (s *Service) Get(accountKey, orderID string) (*Order, error) {
	o := s.Orders.Get(orderID)
	if o == nil || o.AccountKey != accountKey {
		return nil, ErrNotFound
	}
	return o, nil
}
