package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/fjod/ishop4u/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Upstream interface {
	Products(ctx context.Context, query string, source domain.Source) ([]domain.Product, error)
	TopProducts(ctx context.Context) ([]domain.Product, error)
}

type SortOrder string

const (
	SortName      SortOrder = "name"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
)

func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortPriceLow, SortPriceHigh:
		return SortOrder(s)
	default:
		return SortName
	}
}

type Query struct {
	// Search is sent upstream.
	Search string
	Source domain.Source
	// Filter narrows the upstream result by title or description, locally.
	Filter string
	Sort   SortOrder
}

type Result struct {
	Products []domain.Product `json:"products"`
	// Fetched is the upstream count before Filter was applied.
	Fetched int `json:"fetched"`
}

type Service struct {
	upstream Upstream
	cache    ProductCache
	logger   *zap.Logger
	sfg      singleflight.Group // Prevents cache stampede

	loadTimeout time.Duration
}

const DefaultLoadTimeout = 15 * time.Second

func NewService(upstream Upstream, cache ProductCache, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		upstream: upstream,
		cache:    cache,
		logger:   logger.Named("catalog"),

		loadTimeout: DefaultLoadTimeout,
	}
}

func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	if q.Source == "" {
		q.Source = domain.SourceEscuelaJS
	}
	products, err := s.cached(ctx, searchKey(q.Source, q.Search), func(ctx context.Context) ([]domain.Product, error) {
		return s.upstream.Products(ctx, strings.TrimSpace(q.Search), q.Source)
	})
	if err != nil {
		return nil, err
	}

	out := Filter(products, q.Filter)
	SortProducts(out, q.Sort)
	return &Result{Products: out, Fetched: len(products)}, nil
}

func (s *Service) Top(ctx context.Context) ([]domain.Product, error) {
	return s.cached(ctx, topKey, func(ctx context.Context) ([]domain.Product, error) {
		return s.upstream.TopProducts(ctx)
	})
}

// Invalidate drops a cached search so the next call goes upstream.
func (s *Service) Invalidate(ctx context.Context, source domain.Source, search string) error {
	return s.cache.Delete(ctx, searchKey(source, search))
}

// cached loads key once for all concurrent callers. The shared load runs
// detached from any single caller, bounded by loadTimeout; each caller stops
// waiting when its own ctx is done.
func (s *Service) cached(ctx context.Context, key string, load func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	ch := s.sfg.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()

		products, err := s.cache.Get(ctx, key)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cache get error", zap.String("key", key), zap.Error(err))
		}

		products, err = load(ctx)
		if err != nil {
			return nil, err
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, key, products); err != nil {
				s.logger.Warn("cache set error", zap.String("key", key), zap.Error(err))
			}
		}()
		return products, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// callers sort in place; never hand out the shared slice
		return append([]domain.Product(nil), res.Val.([]domain.Product)...), nil
	}
}

// Filter keeps products whose title or description contains term, ignoring case.
func Filter(products []domain.Product, term string) []domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if term == "" ||
			strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}

func SortProducts(products []domain.Product, order SortOrder) {
	switch order {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.GreaterThan(products[j].Price)
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Title) < strings.ToLower(products[j].Title)
		})
	}
}
