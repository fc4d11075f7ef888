package dashboard

import (
	"context"
	"fmt"

	"github.com/fjod/ishop4u/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Source interface {
	ShipmentSummary(ctx context.Context) (domain.ShipmentSummary, error)
	CategoryDistribution(ctx context.Context) ([]domain.CategoryShare, error)
	DeliveryComparison(ctx context.Context) (domain.DeliveryComparison, error)
	SalesPerformance(ctx context.Context, tr domain.TimeRange) ([]domain.SalesPoint, error)
}

type Service struct {
	source Source
	logger *zap.Logger
}

func NewService(source Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger.Named("dashboard")}
}

// Overview loads all widgets at once. The first failing widget cancels the
// others and its error is returned.
func (s *Service) Overview(ctx context.Context, tr domain.TimeRange) (*domain.Overview, error) {
	if tr == "" {
		tr = domain.TimeRangeMonth
	}
	out := &domain.Overview{TimeRange: tr}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.source.ShipmentSummary(ctx)
		if err != nil {
			return fmt.Errorf("shipment summary: %w", err)
		}
		out.Shipments = v
		return nil
	})
	g.Go(func() error {
		v, err := s.source.CategoryDistribution(ctx)
		if err != nil {
			return fmt.Errorf("category distribution: %w", err)
		}
		out.Categories = v
		return nil
	})
	g.Go(func() error {
		v, err := s.source.DeliveryComparison(ctx)
		if err != nil {
			return fmt.Errorf("delivery comparison: %w", err)
		}
		out.Delivery = v
		return nil
	})
	g.Go(func() error {
		v, err := s.source.SalesPerformance(ctx, tr)
		if err != nil {
			return fmt.Errorf("sales performance: %w", err)
		}
		out.Sales = v
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("error loading dashboard", zap.String("time_range", string(tr)), zap.Error(err))
		return nil, err
	}
	out.Growth = out.Delivery.Growth()
	return out, nil
}
