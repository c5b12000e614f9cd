package order_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sourcemart/storefront-api/internal/cart"
	"github.com/sourcemart/storefront-api/internal/catalog"
	"github.com/sourcemart/storefront-api/internal/common"
	"github.com/sourcemart/storefront-api/internal/events"
	"github.com/sourcemart/storefront-api/internal/order"
	"github.com/sourcemart/storefront-api/internal/pricing"
)

type fixtureNotifier struct {
	topics []string
}

func (f *fixtureNotifier) Notify(_ context.Context, event events.Event) error {
	f.topics = append(f.topics, event.Topic)
	return nil
}

type checkoutFixture struct {
	handler  *order.Handler
	cartSvc  *cart.Service
	orderSvc *order.Service
	notifier *fixtureNotifier
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := catalog.NewStore(zerolog.Nop(), catalog.Seed()...)
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{Store: store})
	require.NoError(t, err)

	cartSvc := &cart.Service{
		Store:   cart.NewStore(),
		Catalog: catalogSvc,
		Logger:  zerolog.Nop(),
	}
	notifier := &fixtureNotifier{}
	orderSvc := &order.Service{
		Orders:   order.NewStore(),
		Cart:     cartSvc,
		Bus:      &events.Bus{Notifiers: []events.Notifier{notifier}},
		Validate: validator.New(),
		Logger:   zerolog.Nop(),
	}
	return &checkoutFixture{
		handler:  &order.Handler{Svc: orderSvc},
		cartSvc:  cartSvc,
		orderSvc: orderSvc,
		notifier: notifier,
	}
}

func validInput() map[string]any {
	return map[string]any{
		"name":    "Priya Sharma",
		"phone":   "9876543210",
		"email":   "priya@acme.example",
		"address": "14 Industrial Estate, Phase 2",
		"city":    "Pune",
		"state":   "Maharashtra",
		"pincode": "411001",
		"source":  "ex-china",
	}
}

func (f *checkoutFixture) post(t *testing.T, account string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/order", bytes.NewReader(raw))
	if account != "" {
		req = req.WithContext(common.WithAccountKey(req.Context(), account))
	}
	rec := httptest.NewRecorder()
	f.handler.Create(rec, req)
	return rec
}

var oidPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

func TestCreateOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.cartSvc.AddItem(context.Background(), "anon:a1", "prod-kraft-mailer-a4", 10, pricing.SourceExChina, 0)
	require.NoError(t, err)

	rec := f.post(t, "anon:a1", validInput())
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Payload struct {
			ID struct {
				OID string `json:"$oid"`
			} `json:"_id"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Regexp(t, oidPattern, resp.Payload.ID.OID)

	placed, err := f.orderSvc.Get("anon:a1", resp.Payload.ID.OID)
	require.NoError(t, err)
	require.Equal(t, order.StatusCreated, placed.Status)
	require.Len(t, placed.Items, 1)
	require.Equal(t, "459.9", placed.Subtotal.String())

	require.Empty(t, f.cartSvc.Items("anon:a1"), "cart cleared after placement")
	require.Equal(t, []string{events.TopicOrderCreated}, f.notifier.topics)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	rec := f.post(t, "anon:a1", validInput())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "EMPTY_CART")
}

func TestCreateOrderUnresolvedItems(t *testing.T) {
	f := newCheckoutFixture(t)
	// A line item whose product the catalog no longer knows stays
	// unresolved, so checkout must refuse the provisional total.
	f.cartSvc.Store.Add("anon:a1", "prod-retired", cart.Entry{Quantity: 2, Source: pricing.SourceExChina})

	rec := f.post(t, "anon:a1", validInput())
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "CART_UNRESOLVED")
}

func TestCreateOrderValidation(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.cartSvc.AddItem(context.Background(), "anon:a1", "prod-kraft-mailer-a4", 10, pricing.SourceExChina, 0)
	require.NoError(t, err)

	for name, mutate := range map[string]func(map[string]any){
		"missing email": func(m map[string]any) { delete(m, "email") },
		"bad email":     func(m map[string]any) { m["email"] = "not-an-email" },
		"short pincode": func(m map[string]any) { m["pincode"] = "411" },
		"bad source":    func(m map[string]any) { m["source"] = "ex-mars" },
		"missing name":  func(m map[string]any) { delete(m, "name") },
	} {
		t.Run(name, func(t *testing.T) {
			body := validInput()
			mutate(body)
			rec := f.post(t, "anon:a1", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	// Failed validation must not consume the cart.
	require.Len(t, f.cartSvc.Items("anon:a1"), 1)
}

func TestCreateOrderRequiresIdentity(t *testing.T) {
	f := newCheckoutFixture(t)
	rec := f.post(t, "", validInput())
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderScopedToAccount(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.cartSvc.AddItem(context.Background(), "anon:a1", "prod-kraft-mailer-a4", 10, pricing.SourceExChina, 0)
	require.NoError(t, err)
	placed, err := f.orderSvc.Create(context.Background(), "anon:a1", inputFromMap(t, validInput()))
	require.NoError(t, err)

	_, err = f.orderSvc.Get("anon:other", placed.ID)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func inputFromMap(t *testing.T, m map[string]any) order.Input {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	var input order.Input
	require.NoError(t, json.Unmarshal(raw, &input))
	return input
}

func TestObjectIDsAreUnique(t *testing.T) {
	f := newCheckoutFixture(t)
	seen := map[string]struct{}{}
	for i := 0; i < 5; i++ {
		_, err := f.cartSvc.AddItem(context.Background(), "anon:a1", "prod-kraft-mailer-a4", 10, pricing.SourceExChina, 0)
		require.NoError(t, err)
		placed, err := f.orderSvc.Create(context.Background(), "anon:a1", inputFromMap(t, validInput()))
		require.NoError(t, err)
		_, dup := seen[placed.ID]
		require.False(t, dup)
		seen[placed.ID] = struct{}{}
	}
}
