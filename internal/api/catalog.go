package api

import (
	"context"
	"net/url"

	"github.com/fjod/ishop4u/internal/domain"
)

func (c *Client) Products(ctx context.Context, query string, source domain.Source) ([]domain.Product, error) {
	params := url.Values{"source": {string(source)}}
	if query != "" {
		params.Set("query", query)
	}
	var products []domain.Product
	if err := c.getJSON(ctx, "list products", "/api/products", params, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) TopProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.getJSON(ctx, "top products", "/api/top_products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}
