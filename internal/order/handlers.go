package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sourcemart/storefront-api/internal/common"
)

// Handler wires order operations to HTTP.
type Handler struct {
	Svc *Service
}

// Create handles POST /api/v1/order. The response id uses the upstream
// order service's Mongo-style envelope.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	accountKey, ok := common.AccountKey(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing cart identity", nil)
		return
	}
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	o, err := h.Svc.Create(r.Context(), accountKey, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Payload(w, http.StatusCreated, map[string]any{
		"_id": map[string]any{"$oid": o.ID},
	})
}

// Get handles GET /api/v1/order/{orderId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	accountKey, ok := common.AccountKey(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing cart identity", nil)
		return
	}
	o, err := h.Svc.Get(accountKey, chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Payload(w, http.StatusOK, o)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_CART", "cannot place an order with an empty cart", nil)
	case errors.Is(err, ErrUnresolvedItems):
		common.JSONError(w, http.StatusConflict, "CART_UNRESOLVED", "cart has items awaiting product data, retry shortly", nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
