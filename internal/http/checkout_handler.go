package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/ishop4u/internal/domain"
)

type Checkout interface {
	PlaceOrderWithKey(ctx context.Context, idempotencyKey string, address domain.ShippingAddress) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout Checkout
	timeout  time.Duration
}

func NewCheckoutHandler(c Checkout, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: c,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	IdempotencyKey  string                 `json:"idempotency_key"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
}

type CheckoutResponseDTO struct {
	OrderID domain.OrderID  `json:"order_id"`
	UserID  string          `json:"user_id"`
	Order   json.RawMessage `json:"order,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	key := req.IdempotencyKey
	if key == "" {
		key = r.Header.Get("Idempotency-Key")
	}

	order, err := h.checkout.PlaceOrderWithKey(ctx, key, req.ShippingAddress)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, CheckoutResponseDTO{
		OrderID: order.ID,
		UserID:  order.UserID,
		Order:   order.Raw,
	})
}
