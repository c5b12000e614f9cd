package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sourcemart/storefront-api/internal/common"
	"github.com/sourcemart/storefront-api/internal/pricing"
)

// Handler wires the cart service to HTTP.
type Handler struct {
	Svc *Service
}

type wireEntry struct {
	Quantity int            `json:"quantity"`
	Source   pricing.Source `json:"source"`
}

// Get handles GET /api/v1/cart, returning the raw cart record keyed by
// product id. Pending debounced quantities are already overlaid.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	accountKey, ok := common.AccountKey(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing cart identity", nil)
		return
	}
	items := h.Svc.Items(accountKey)
	wire := make(map[string]wireEntry, len(items))
	for _, item := range items {
		wire[item.ProductID] = wireEntry{Quantity: item.Quantity, Source: item.Source}
	}
	common.JSON(w, http.StatusOK, map[string]any{"items": wire})
}

// Summary handles GET /api/v1/cart/summary, returning the reconciled,
// priced cart with display rounding applied.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	accountKey, ok := common.AccountKey(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing cart identity", nil)
		return
	}
	summary, err := h.Svc.Summary(r.Context(), accountKey)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Payload(w, http.StatusOK, summary.Display())
}

type addItemRequest struct {
	Quantity     int    `json:"quantity"`
	Source       string `json:"source"`
	VariantIndex *int   `json:"variantIndex"`
}

// AddItem handles POST /api/v1/cart/items/{productId}.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	accountKey, ok := common.AccountKey(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing cart identity", nil)
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	source, err := pricing.ParseSource(req.Source)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown shipping source", map[string]any{"source": req.Source})
		return
	}
	variantIndex := 0
	if req.VariantIndex != nil {
		variantIndex = *req.VariantIndex
	}
	entry, err := h.Svc.AddItem(r.Context(), accountKey, productID, req.Quantity, source, variantIndex)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"productId": productID,
		"quantity":  entry.Quantity,
		"source":    entry.Source,
	})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem handles PATCH /api/v1/cart/items/{productId}. The write is
// debounced; the response reflects the requested quantity immediately.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	accountKey, ok := common.AccountKey(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing cart identity", nil)
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := h.Svc.UpdateQuantity(r.Context(), accountKey, productID, req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"productId": productID,
		"quantity":  req.Quantity,
	})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	accountKey, ok := common.AccountKey(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing cart identity", nil)
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if err := h.Svc.Remove(r.Context(), accountKey, productID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrVariantMismatch):
		common.JSONError(w, http.StatusBadRequest, "VARIANT_MISMATCH", "requested variant does not exist for this product", nil)
	case errors.Is(err, ErrOutOfStock):
		common.JSONError(w, http.StatusConflict, "OUT_OF_STOCK", "product is out of stock", nil)
	case errors.Is(err, ErrBelowMOQ):
		common.JSONError(w, http.StatusBadRequest, "BELOW_MOQ", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, pricing.ErrUnknownSource):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart item or product not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
