package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const DefaultTopic = "checkout-outbox"

// CheckoutCompletedEvent is the part of the checkout outbox payload the
// storefront cares about.
type CheckoutCompletedEvent struct {
	CheckoutID string `json:"checkout_id"`
	UserID     string `json:"user_id"`
}

type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Cart is refreshed when a checkout for its bound user completes elsewhere.
type Cart interface {
	UserID() (string, bool)
	Refresh(ctx context.Context) error
}

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

type Consumer struct {
	cart       Cart
	reader     Reader
	logger     *zap.Logger
	retryDelay time.Duration
}

func NewKafkaReader(cfg Config) *kafka.Reader {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.GroupID,
		MaxBytes: 10e6, // 10MB
	})
}

func NewConsumer(cart Cart, reader Reader, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{cart: cart, reader: reader, logger: logger.Named("poller"), retryDelay: time.Second}
}

// Run reads until ctx is done or the reader is closed. Failed refreshes are
// logged and the next event is read, whatever error they wrap.
func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		err := c.processMessage(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil, errors.Is(err, errReaderClosed):
			return
		case errors.Is(err, errRead):
			c.logger.Warn("error reading checkout event", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
		default:
			c.logger.Warn("skipping checkout event", zap.Error(err))
		}
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("error closing kafka reader", zap.Error(err))
	}
}

var (
	errReaderClosed = errors.New("reader closed")
	errRead         = errors.New("read message")
)

func (c *Consumer) processMessage(ctx context.Context) error {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			return errReaderClosed
		}
		return fmt.Errorf("%w: %w", errRead, err)
	}

	var event CheckoutCompletedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("parse message at offset %d: %w", m.Offset, err)
	}
	if event.UserID == "" {
		return fmt.Errorf("message at offset %d has no user_id", m.Offset)
	}

	userID, ok := c.cart.UserID()
	if !ok || userID != event.UserID {
		return nil
	}

	c.logger.Info("checkout completed elsewhere, refreshing cart",
		zap.String("user_id", userID), zap.String("checkout_id", event.CheckoutID))
	if err := c.cart.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh after checkout %s: %w", event.CheckoutID, err)
	}
	return nil
}
