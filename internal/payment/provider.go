package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// IntentRequest captures the information required to open a payment intent
// with a provider.
type IntentRequest struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
}

// IntentResponse is the minimal information a provider returns when
// creating an intent.
type IntentResponse struct {
	Provider   string
	Token      string
	PaymentURL string
}

// Provider abstracts the upstream payment gateway.
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (IntentResponse, error)
}
