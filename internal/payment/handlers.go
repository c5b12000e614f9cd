package payment

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sourcemart/storefront-api/internal/common"
	"github.com/sourcemart/storefront-api/internal/order"
)

// Handler wires payment initiation to HTTP.
type Handler struct {
	Svc *Service
}

// Initiate handles GET /api/v1/pay/{orderId}.
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	accountKey, ok := common.AccountKey(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing cart identity", nil)
		return
	}
	intent, err := h.Svc.Initiate(r.Context(), accountKey, chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"paymentUrl": intent.PaymentURL})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
	case errors.Is(err, ErrAlreadyPaid):
		common.JSONError(w, http.StatusConflict, "ALREADY_PAID", "order is already settled", nil)
	default:
		common.JSONError(w, http.StatusBadGateway, "PAYMENT_FAILED", "unable to initiate payment", nil)
	}
}
