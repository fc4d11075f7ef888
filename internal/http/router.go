package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Session   *SessionHandler
	Cart      *CartHandler
	Products  *ProductHandler
	Checkout  *CheckoutHandler
	Dashboard *DashboardHandler
}

func NewRouter(h Handlers, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(RequestContext(logger))
	r.Use(middleware.Timeout(requestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.Session.Get)
			r.Post("/", h.Session.SignIn)
			r.Delete("/", h.Session.SignOut)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Get("/links", h.Cart.CheckoutLinks)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{line_id}/quantity", h.Cart.UpdateQuantity)
			r.Put("/items/{line_id}/notes", h.Cart.UpdateNotes)
			r.Delete("/items/{line_id}", h.Cart.RemoveItem)
		})
		r.Get("/products", h.Products.Get)
		r.Get("/products/top", h.Products.Top)
		r.Post("/checkout", h.Checkout.PlaceOrder)
		r.Get("/dashboard", h.Dashboard.Get)
	})

	return otelhttp.NewHandler(r, "ishop")
}
