package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Sandbox synthesises deterministic payment URLs without a network call.
// The real gateway integration slots in behind the same Provider
// interface; the sandbox drives local development and tests.
type Sandbox struct {
	BaseURL   string
	SecretKey string
}

// CreateIntent issues a hosted-checkout style URL with an HMAC token so
// repeated calls for the same order produce the same link.
func (s Sandbox) CreateIntent(_ context.Context, req IntentRequest) (IntentResponse, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return IntentResponse{}, errors.New("order id is required")
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		return IntentResponse{}, fmt.Errorf("amount must be positive, got %s", req.Amount)
	}
	token := s.sign(orderID, req.Amount.StringFixed(2), req.Currency)
	return IntentResponse{
		Provider:   "sandbox",
		Token:      token,
		PaymentURL: fmt.Sprintf("%s/checkout/%s?token=%s", strings.TrimRight(s.host(), "/"), orderID, token),
	}, nil
}

func (s Sandbox) host() string {
	host := strings.TrimSpace(s.BaseURL)
	if host == "" {
		return "https://pay.sandbox.sourcemart.io"
	}
	return host
}

func (s Sandbox) sign(parts ...string) string {
	mac := hmac.New(sha256.New, []byte(s.SecretKey))
	mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}
