package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sourcemart/storefront-api/internal/events"
	"github.com/sourcemart/storefront-api/internal/order"
	"github.com/sourcemart/storefront-api/internal/pricing"
)

// ErrAlreadyPaid is returned when payment is initiated for a settled order.
var ErrAlreadyPaid = errors.New("payment: order already paid")

// Service initiates payment for placed orders.
type Service struct {
	Orders   *order.Service
	Provider Provider
	Bus      *events.Bus
	Currency string
	Logger   zerolog.Logger

	// AutoSettle marks the order paid as soon as an intent is issued.
	// Only the sandbox provider settles synchronously; a real provider
	// would confirm through a webhook instead.
	AutoSettle bool
}

// Initiate creates a payment intent for the order and returns the hosted
// checkout URL.
func (s *Service) Initiate(ctx context.Context, accountKey, orderID string) (IntentResponse, error) {
	if s == nil || s.Orders == nil || s.Provider == nil {
		return IntentResponse{}, errors.New("payment service not configured")
	}
	o, err := s.Orders.Get(accountKey, orderID)
	if err != nil {
		return IntentResponse{}, err
	}
	if o.Status == order.StatusPaid {
		return IntentResponse{}, ErrAlreadyPaid
	}
	intent, err := s.Provider.CreateIntent(ctx, IntentRequest{
		OrderID:  o.ID,
		Amount:   pricing.Display(o.Subtotal),
		Currency: s.Currency,
	})
	if err != nil {
		return IntentResponse{}, fmt.Errorf("create intent: %w", err)
	}
	if s.Bus != nil {
		if _, err := s.Bus.Emit(ctx, events.TopicPaymentInitiated, o.ID, map[string]any{
			"orderId":  o.ID,
			"provider": intent.Provider,
		}); err != nil {
			s.Logger.Warn().Err(err).Str("order_id", o.ID).Msg("payment.initiated notification failed")
		}
	}
	if s.AutoSettle {
		s.settle(ctx, o.ID)
	}
	return intent, nil
}

func (s *Service) settle(ctx context.Context, orderID string) {
	if !s.Orders.Orders.SetStatus(orderID, order.StatusPaid) {
		s.Logger.Warn().Str("order_id", orderID).Msg("settle skipped, order missing")
		return
	}
	if s.Bus == nil {
		return
	}
	if _, err := s.Bus.Emit(ctx, events.TopicOrderPaid, orderID, map[string]any{
		"orderId": orderID,
	}); err != nil {
		s.Logger.Warn().Err(err).Str("order_id", orderID).Msg("order.paid notification failed")
	}
}
