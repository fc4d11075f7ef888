package catalog

import (
	"context"
	"errors"

	"github.com/fjod/ishop4u/internal/domain"
)

type ProductCache interface {
	Get(ctx context.Context, key string) ([]domain.Product, error)
	Set(ctx context.Context, key string, products []domain.Product) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache misses on every read. Used when no redis is configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]domain.Product, error) {
	return nil, ErrCacheMiss
}

func (NopCache) Set(context.Context, string, []domain.Product) error { return nil }

func (NopCache) Delete(context.Context, string) error { return nil }
