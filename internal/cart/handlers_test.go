package cart_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sourcemart/storefront-api/internal/cart"
	"github.com/sourcemart/storefront-api/internal/catalog"
	"github.com/sourcemart/storefront-api/internal/common"
)

func newCartRouter(t *testing.T, window time.Duration) (*chi.Mux, *cart.Service) {
	t.Helper()
	store := catalog.NewStore(zerolog.Nop(), catalog.Seed()...)
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Store:        store,
		DefaultPage:  1,
		DefaultLimit: 20,
		MaxLimit:     100,
	})
	require.NoError(t, err)

	svc := (&cart.Service{
		Store:   cart.NewStore(),
		Catalog: catalogSvc,
		Logger:  zerolog.Nop(),
	}).WithDebounce(window)
	t.Cleanup(svc.Close)

	handler := &cart.Handler{Svc: svc}
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Anon-ID")
			if key != "" {
				r = r.WithContext(common.WithAccountKey(r.Context(), key))
			}
			next.ServeHTTP(w, r)
		})
	})
	router.Get("/api/v1/cart", handler.Get)
	router.Get("/api/v1/cart/summary", handler.Summary)
	router.Post("/api/v1/cart/items/{productId}", handler.AddItem)
	router.Patch("/api/v1/cart/items/{productId}", handler.UpdateItem)
	router.Delete("/api/v1/cart/items/{productId}", handler.RemoveItem)
	return router, svc
}

func doJSON(t *testing.T, router *chi.Mux, method, path, account string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if account != "" {
		req.Header.Set("X-Anon-ID", account)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type cartGetResponse struct {
	Items map[string]struct {
		Quantity int    `json:"quantity"`
		Source   string `json:"source"`
	} `json:"items"`
}

func TestCartAddAndGet(t *testing.T) {
	router, _ := newCartRouter(t, time.Hour)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-1", map[string]any{
		"quantity": 10,
		"source":   "ex-china",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Repeated add increments the quantity server-side.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-1", map[string]any{
		"quantity": 5,
		"source":   "ex-china",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "anon-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got cartGetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	require.Equal(t, 15, got.Items["prod-kraft-mailer-a4"].Quantity)
	require.Equal(t, "ex-china", got.Items["prod-kraft-mailer-a4"].Source)

	// Carts are isolated per account.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "anon-2", nil)
	got = cartGetResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Empty(t, got.Items)
}

func TestCartAddValidation(t *testing.T) {
	router, _ := newCartRouter(t, time.Hour)

	t.Run("unknown product", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-missing", "anon-1", map[string]any{
			"quantity": 1, "source": "ex-china",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("variant mismatch is user visible", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-1", map[string]any{
			"quantity": 1, "source": "ex-china", "variantIndex": 9,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "VARIANT_MISMATCH")
	})

	t.Run("unknown source", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-1", map[string]any{
			"quantity": 1, "source": "ex-mars",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("out of stock", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-silicone-spatula-set", "anon-1", map[string]any{
			"quantity": 12, "source": "ex-china",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, rec.Body.String(), "OUT_OF_STOCK")
	})

	t.Run("below minimum order quantity", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-moq", map[string]any{
			"quantity": 5, "source": "ex-china",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "BELOW_MOQ")
	})

	t.Run("increments under moq pass once the line meets it", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-moq", map[string]any{
			"quantity": 10, "source": "ex-china",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-moq", map[string]any{
			"quantity": 2, "source": "ex-china",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("zero quantity", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-1", map[string]any{
			"quantity": 0, "source": "ex-china",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing identity", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCartDebouncedUpdate(t *testing.T) {
	router, svc := newCartRouter(t, 25*time.Millisecond)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-usb-c-cable-1m", "anon-1", map[string]any{
		"quantity": 25, "source": "ex-china",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Rapid-fire quantity edits.
	for qty := 26; qty <= 30; qty++ {
		rec = doJSON(t, router, http.MethodPatch, "/api/v1/cart/items/prod-usb-c-cable-1m", "anon-1", map[string]any{
			"quantity": qty,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Optimistic overlay: reads see the final quantity before the flush.
	var got cartGetResponse
	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "anon-1", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 30, got.Items["prod-usb-c-cable-1m"].Quantity)

	// A single authoritative write lands with the final quantity.
	require.Eventually(t, func() bool {
		entry, ok := svc.Store.Get("anon-1", "prod-usb-c-cable-1m")
		return ok && entry.Quantity == 30
	}, time.Second, 5*time.Millisecond)
}

func TestCartRemoveCancelsOnlyThatItem(t *testing.T) {
	router, svc := newCartRouter(t, 25*time.Millisecond)

	for _, id := range []string{"prod-kraft-mailer-a4", "prod-cotton-tote-plain"} {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/"+id, "anon-1", map[string]any{
			"quantity": 60, "source": "ex-china",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	doJSON(t, router, http.MethodPatch, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-1", map[string]any{"quantity": 99})
	doJSON(t, router, http.MethodPatch, "/api/v1/cart/items/prod-cotton-tote-plain", "anon-1", map[string]any{"quantity": 70})

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, ok := svc.Store.Get("anon-1", "prod-kraft-mailer-a4")
	require.False(t, ok, "removal is immediate")

	// The other item's pending write still lands.
	require.Eventually(t, func() bool {
		entry, ok := svc.Store.Get("anon-1", "prod-cotton-tote-plain")
		return ok && entry.Quantity == 70
	}, time.Second, 5*time.Millisecond)

	// The removed item's pending write never resurrects it.
	time.Sleep(50 * time.Millisecond)
	_, ok = svc.Store.Get("anon-1", "prod-kraft-mailer-a4")
	require.False(t, ok)
}

func TestCartUpdateUnknownItem(t *testing.T) {
	router, _ := newCartRouter(t, time.Hour)
	rec := doJSON(t, router, http.MethodPatch, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-1", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

type summaryResponse struct {
	Payload struct {
		Items []struct {
			ProductID string          `json:"productId"`
			Quantity  int             `json:"quantity"`
			Product   json.RawMessage `json:"product"`
			UnitPrice string          `json:"unitPrice"`
			LineTotal string          `json:"lineTotal"`
		} `json:"items"`
		Subtotal    string `json:"subtotal"`
		Provisional bool   `json:"provisional"`
	} `json:"payload"`
}

func TestCartSummary(t *testing.T) {
	router, _ := newCartRouter(t, time.Hour)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items/prod-kraft-mailer-a4", "anon-1", map[string]any{
		"quantity": 10, "source": "ex-china",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart/summary", "anon-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Payload.Items, 1)
	require.Equal(t, "45.99", got.Payload.Items[0].UnitPrice)
	require.Equal(t, "459.9", got.Payload.Items[0].LineTotal)
	require.Equal(t, "459.9", got.Payload.Subtotal)
	require.False(t, got.Payload.Provisional)
}
