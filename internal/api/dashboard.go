package api

import (
	"context"
	"net/url"

	"github.com/fjod/ishop4u/internal/domain"
)

func (c *Client) ShipmentSummary(ctx context.Context) (domain.ShipmentSummary, error) {
	var s domain.ShipmentSummary
	err := c.getJSON(ctx, "shipment summary", "/api/shipment_summary", nil, &s)
	return s, err
}

func (c *Client) CategoryDistribution(ctx context.Context) ([]domain.CategoryShare, error) {
	var shares []domain.CategoryShare
	err := c.getJSON(ctx, "category distribution", "/api/category_distribution", nil, &shares)
	return shares, err
}

func (c *Client) DeliveryComparison(ctx context.Context) (domain.DeliveryComparison, error) {
	var d domain.DeliveryComparison
	err := c.getJSON(ctx, "delivery comparison", "/api/delivery_comparison", nil, &d)
	return d, err
}

func (c *Client) SalesPerformance(ctx context.Context, tr domain.TimeRange) ([]domain.SalesPoint, error) {
	var points []domain.SalesPoint
	err := c.getJSON(ctx, "sales performance", "/api/sales_performance",
		url.Values{"time_range": {string(tr)}}, &points)
	return points, err
}
