package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/ishop4u/internal/api"
	"github.com/fjod/ishop4u/internal/domain"
	"github.com/fjod/ishop4u/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderPlacer interface {
	Checkout(ctx context.Context, userID, shippingAddress string) (*domain.Order, error)
}

// Cart is the part of the synchronizer checkout needs.
type Cart interface {
	UserID() (string, bool)
	Snapshot() domain.Snapshot
	FlushNotes()
	Clear(ctx context.Context) error
}

type Service struct {
	orders   OrderPlacer
	cart     Cart
	validate *validator.Validate
	logger   *zap.Logger
}

func NewService(orders OrderPlacer, cart Cart, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:   orders,
		cart:     cart,
		validate: validator.New(),
		logger:   logger.Named("checkout"),
	}
}

func (s *Service) PlaceOrder(ctx context.Context, address domain.ShippingAddress) (*domain.Order, error) {
	return s.PlaceOrderWithKey(ctx, uuid.NewString(), address)
}

// PlaceOrderWithKey places the order under idempotencyKey so a retried
// submission is not ordered twice.
func (s *Service) PlaceOrderWithKey(ctx context.Context, idempotencyKey string, address domain.ShippingAddress) (*domain.Order, error) {
	userID, ok := s.cart.UserID()
	if !ok {
		return nil, service.ErrNotAuthenticated
	}
	if err := s.validate.Struct(address); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, fieldList(verrs))
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	// notes typed just before submitting belong to the order
	s.cart.FlushNotes()
	if s.cart.Snapshot().IsEmpty() {
		return nil, ErrEmptyCart
	}

	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	order, err := s.orders.Checkout(api.WithIdempotencyKey(ctx, idempotencyKey), userID, address.String())
	if err != nil {
		s.logger.Error("checkout failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("place order: %w", err)
	}
	if order.UserID == "" {
		order.UserID = userID
	}
	s.logger.Info("order placed",
		zap.String("user_id", userID),
		zap.String("order_id", string(order.ID)),
		zap.String("idempotency_key", idempotencyKey))

	if err := s.cart.Clear(ctx); err != nil {
		// the order exists; leftover lines show up on the next refresh
		s.logger.Warn("clearing cart after checkout failed", zap.String("user_id", userID), zap.Error(err))
	}
	return order, nil
}

func fieldList(verrs validator.ValidationErrors) string {
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fe.Field() + " is " + fe.Tag()
	}
	return strings.Join(fields, ", ")
}
