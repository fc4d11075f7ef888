package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fjod/ishop4u/internal/api"
	"github.com/fjod/ishop4u/internal/catalog"
	"github.com/fjod/ishop4u/internal/checkout"
	"github.com/fjod/ishop4u/internal/config"
	"github.com/fjod/ishop4u/internal/dashboard"
	h "github.com/fjod/ishop4u/internal/http"
	"github.com/fjod/ishop4u/internal/identity"
	"github.com/fjod/ishop4u/internal/poller"
	"github.com/fjod/ishop4u/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local storefront API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		return serve(cmd.Context(), cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newCart(cfg *config.Config, client *api.Client, log *zap.Logger) *service.CartSynchronizer {
	return service.NewCartSynchronizer(client, log,
		service.WithNotesDelay(cfg.Cart.NotesDelay),
		service.WithWriteTimeout(cfg.Cart.WriteTimeout),
		service.WithErrorHandler(func(op string, err error) {
			log.Warn("background cart write failed", zap.String("op", op), zap.Error(err))
		}),
	)
}

func newProductCache(cfg *config.Config, log *zap.Logger) (catalog.ProductCache, func()) {
	if cfg.Redis.Addr == "" {
		log.Info("redis not configured, catalog cache disabled")
		return catalog.NopCache{}, func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return catalog.NewRedisCache(rdb, cfg.Redis.TTL), func() {
		if err := rdb.Close(); err != nil {
			log.Warn("error closing redis client", zap.Error(err))
		}
	}
}

func serve(parent context.Context, cfg *config.Config, log *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := api.NewClient(cfg.API.Client(), log)
	if err != nil {
		return err
	}

	session := identity.NewSession()
	cart := newCart(cfg, client, log)
	defer cart.Close()

	cache, closeCache := newProductCache(cfg, log)
	defer closeCache()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cart.Watch(ctx, session)
	}()

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := poller.NewConsumer(cart, poller.NewKafkaReader(poller.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}), log)
		defer consumer.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Run(ctx)
		}()
		log.Info("checkout poller started", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	router := h.NewRouter(h.Handlers{
		Session:   h.NewSessionHandler(session),
		Cart:      h.NewCartHandler(cart, cfg.HTTP.RequestTimeout),
		Products:  h.NewProductHandler(catalog.NewService(client, cache, log), cfg.HTTP.RequestTimeout),
		Checkout:  h.NewCheckoutHandler(checkout.NewService(client, cart, log), cfg.HTTP.RequestTimeout),
		Dashboard: h.NewDashboardHandler(dashboard.NewService(client, log), cfg.HTTP.RequestTimeout),
	}, log, cfg.HTTP.RequestTimeout)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront API starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			stop()
			wg.Wait()
			return err
		}
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	stop()
	wg.Wait()

	log.Info("server exited")
	return nil
}
