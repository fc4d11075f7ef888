package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fjod/ishop4u/internal/domain"
)

type checkoutRequest struct {
	UserID          string `json:"user_id"`
	ShippingAddress string `json:"shipping_address"`
}

func (c *Client) Checkout(ctx context.Context, userID, shippingAddress string) (*domain.Order, error) {
	body, err := c.do(ctx, "checkout", http.MethodPost, "/api/checkout", nil,
		checkoutRequest{UserID: userID, ShippingAddress: shippingAddress}, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	order := &domain.Order{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, order); err != nil {
			return nil, fmt.Errorf("checkout: decode response failed: %w", err)
		}
		order.Raw = json.RawMessage(body)
	}
	return order, nil
}
