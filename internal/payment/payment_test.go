package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sourcemart/storefront-api/internal/cart"
	"github.com/sourcemart/storefront-api/internal/catalog"
	"github.com/sourcemart/storefront-api/internal/common"
	"github.com/sourcemart/storefront-api/internal/events"
	"github.com/sourcemart/storefront-api/internal/order"
	"github.com/sourcemart/storefront-api/internal/payment"
	"github.com/sourcemart/storefront-api/internal/pricing"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func placeOrder(t *testing.T) (*order.Service, *order.Order, *events.Bus) {
	t.Helper()
	store := catalog.NewStore(zerolog.Nop(), catalog.Seed()...)
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{Store: store})
	require.NoError(t, err)

	cartSvc := &cart.Service{Store: cart.NewStore(), Catalog: catalogSvc, Logger: zerolog.Nop()}
	bus := &events.Bus{}
	orderSvc := &order.Service{
		Orders:   order.NewStore(),
		Cart:     cartSvc,
		Bus:      bus,
		Validate: validator.New(),
		Logger:   zerolog.Nop(),
	}

	_, err = cartSvc.AddItem(context.Background(), "anon:a1", "prod-kraft-mailer-a4", 10, pricing.SourceExChina, 0)
	require.NoError(t, err)
	placed, err := orderSvc.Create(context.Background(), "anon:a1", order.Input{
		Recipient: order.Recipient{
			Name: "Priya Sharma", Phone: "9876543210", Email: "priya@acme.example",
			Address: "14 Industrial Estate", City: "Pune", State: "Maharashtra", Pincode: "411001",
		},
		Source: "ex-china",
	})
	require.NoError(t, err)
	return orderSvc, placed, bus
}

func TestSandboxIntentDeterministic(t *testing.T) {
	sandbox := payment.Sandbox{BaseURL: "https://pay.test", SecretKey: "k"}
	req := payment.IntentRequest{OrderID: "abc123", Amount: dec(t, "459.90"), Currency: "INR"}

	first, err := sandbox.CreateIntent(context.Background(), req)
	require.NoError(t, err)
	second, err := sandbox.CreateIntent(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, first.PaymentURL, second.PaymentURL)
	require.True(t, strings.HasPrefix(first.PaymentURL, "https://pay.test/checkout/abc123?token="))
}

func TestSandboxRejectsBadInput(t *testing.T) {
	sandbox := payment.Sandbox{SecretKey: "k"}
	_, err := sandbox.CreateIntent(context.Background(), payment.IntentRequest{OrderID: "", Amount: dec(t, "10")})
	require.Error(t, err)
	_, err = sandbox.CreateIntent(context.Background(), payment.IntentRequest{OrderID: "abc", Amount: dec(t, "0")})
	require.Error(t, err)
}

func TestInitiatePayment(t *testing.T) {
	orderSvc, placed, bus := placeOrder(t)
	svc := &payment.Service{
		Orders:   orderSvc,
		Provider: payment.Sandbox{SecretKey: "k"},
		Bus:      bus,
		Currency: "INR",
		Logger:   zerolog.Nop(),
	}
	handler := &payment.Handler{Svc: svc}

	router := chi.NewRouter()
	router.Get("/api/v1/pay/{orderId}", handler.Initiate)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pay/"+placed.ID, nil)
	req = req.WithContext(common.WithAccountKey(req.Context(), "anon:a1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		PaymentURL string `json:"paymentUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.PaymentURL, placed.ID)

	topics := make([]string, 0, 2)
	for _, ev := range bus.Recent() {
		topics = append(topics, ev.Topic)
	}
	require.Contains(t, topics, events.TopicPaymentInitiated)
}

func TestInitiateAutoSettle(t *testing.T) {
	orderSvc, placed, bus := placeOrder(t)
	svc := &payment.Service{
		Orders:     orderSvc,
		Provider:   payment.Sandbox{SecretKey: "k"},
		Bus:        bus,
		Currency:   "INR",
		Logger:     zerolog.Nop(),
		AutoSettle: true,
	}

	_, err := svc.Initiate(context.Background(), "anon:a1", placed.ID)
	require.NoError(t, err)

	settled, err := orderSvc.Get("anon:a1", placed.ID)
	require.NoError(t, err)
	require.Equal(t, order.StatusPaid, settled.Status)

	topics := make([]string, 0, 3)
	for _, ev := range bus.Recent() {
		topics = append(topics, ev.Topic)
	}
	require.Contains(t, topics, events.TopicOrderPaid)

	_, err = svc.Initiate(context.Background(), "anon:a1", placed.ID)
	require.ErrorIs(t, err, payment.ErrAlreadyPaid)
}

func TestInitiatePaymentUnknownOrder(t *testing.T) {
	orderSvc, _, _ := placeOrder(t)
	svc := &payment.Service{
		Orders:   orderSvc,
		Provider: payment.Sandbox{SecretKey: "k"},
		Currency: "INR",
		Logger:   zerolog.Nop(),
	}
	handler := &payment.Handler{Svc: svc}
	router := chi.NewRouter()
	router.Get("/api/v1/pay/{orderId}", handler.Initiate)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pay/ffffffffffffffffffffffff", nil)
	req = req.WithContext(common.WithAccountKey(req.Context(), "anon:a1"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitiatePaymentAlreadyPaid(t *testing.T) {
	orderSvc, placed, _ := placeOrder(t)
	require.True(t, orderSvc.Orders.SetStatus(placed.ID, order.StatusPaid))

	svc := &payment.Service{
		Orders:   orderSvc,
		Provider: payment.Sandbox{SecretKey: "k"},
		Currency: "INR",
		Logger:   zerolog.Nop(),
	}
	_, err := svc.Initiate(context.Background(), "anon:a1", placed.ID)
	require.ErrorIs(t, err, payment.ErrAlreadyPaid)
}
