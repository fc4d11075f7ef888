package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/ishop4u/internal/domain"
)

// CartStore is the Remote Cart Store contract the synchronizer depends on.
type CartStore interface {
	FetchCart(ctx context.Context, userID string) ([]domain.CartLine, error)
	AddItem(ctx context.Context, req AddItemRequest) error
	UpdateQuantity(ctx context.Context, lineID domain.LineID, quantity int) error
	UpdateNotes(ctx context.Context, lineID domain.LineID, notes string) error
	RemoveItem(ctx context.Context, lineID domain.LineID) error
}

var _ CartStore = (*Client)(nil)

type AddItemRequest struct {
	ProductID string  `json:"product_id"`
	UserID    string  `json:"user_id"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

func (c *Client) FetchCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	err := c.getJSON(ctx, "fetch cart", "/api/cart", url.Values{"user_id": {userID}}, &lines)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

func (c *Client) AddItem(ctx context.Context, req AddItemRequest) error {
	_, err := c.do(ctx, "add item", http.MethodPost, "/api/cart", nil, req, http.StatusCreated)
	return err
}

func (c *Client) UpdateQuantity(ctx context.Context, lineID domain.LineID, quantity int) error {
	_, err := c.do(ctx, "update quantity", http.MethodPut, linePath(lineID), nil,
		updateQuantityRequest{Quantity: quantity}, http.StatusOK)
	return err
}

func (c *Client) UpdateNotes(ctx context.Context, lineID domain.LineID, notes string) error {
	_, err := c.do(ctx, "update notes", http.MethodPut, linePath(lineID), nil,
		updateNotesRequest{Notes: notes}, http.StatusOK)
	return err
}

func (c *Client) RemoveItem(ctx context.Context, lineID domain.LineID) error {
	_, err := c.do(ctx, "remove item", http.MethodDelete, linePath(lineID), nil, nil, http.StatusOK)
	return err
}

func linePath(id domain.LineID) string {
	return fmt.Sprintf("/api/cart/%s", url.PathEscape(id.String()))
}
