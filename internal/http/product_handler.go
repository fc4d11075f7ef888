package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/ishop4u/internal/catalog"
	"github.com/fjod/ishop4u/internal/domain"
)

type Catalog interface {
	Search(ctx context.Context, q catalog.Query) (*catalog.Result, error)
	Top(ctx context.Context) ([]domain.Product, error)
}

type ProductHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewProductHandler(c Catalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		timeout: timeout,
	}
}

type ProductDTO struct {
	domain.Product
	ImageURL string `json:"image_url"`
}

type ProductsResponse struct {
	Products []ProductDTO `json:"products"`
	Fetched  int          `json:"fetched,omitempty"`
}

func toProductDTOs(products []domain.Product) []ProductDTO {
	out := make([]ProductDTO, len(products))
	for i, p := range products {
		out[i] = ProductDTO{Product: p, ImageURL: p.ImageOrPlaceholder()}
	}
	return out
}

// Get handles ?query=&source=&filter=&sort=.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	res, err := h.catalog.Search(ctx, catalog.Query{
		Search: q.Get("query"),
		Source: domain.ParseSource(q.Get("source")),
		Filter: q.Get("filter"),
		Sort:   catalog.ParseSortOrder(q.Get("sort")),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, &ProductsResponse{Products: toProductDTOs(res.Products), Fetched: res.Fetched})
}

func (h *ProductHandler) Top(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.Top(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, &ProductsResponse{Products: toProductDTOs(products)})
}
