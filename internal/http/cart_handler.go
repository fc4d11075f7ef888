package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/ishop4u/internal/domain"
	"github.com/fjod/ishop4u/internal/logger"
	"github.com/fjod/ishop4u/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Cart interface {
	UserID() (string, bool)
	Snapshot() domain.Snapshot
	Drafts() map[domain.LineID]string
	Refresh(ctx context.Context) error
	AddItem(ctx context.Context, product domain.Product, notes *string) error
	SetQuantity(ctx context.Context, lineID domain.LineID, quantity int) error
	SetNotes(lineID domain.LineID, text string) error
	RemoveItem(ctx context.Context, lineID domain.LineID) error
	Clear(ctx context.Context) error
}

var _ Cart = (*service.CartSynchronizer)(nil)

type CartHandler struct {
	cart    Cart
	timeout time.Duration
}

func NewCartHandler(cart Cart, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:    cart,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	Product domain.Product `json:"product"`
	Notes   *string        `json:"notes"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type UpdateNotesRequestDTO struct {
	Notes *string `json:"notes"`
}

type CartLineDTO struct {
	domain.CartLine
	Image      string          `json:"image"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	NotesDraft *string         `json:"notes_draft,omitempty"`
}

type CartResponseDTO struct {
	UserID    string          `json:"user_id"`
	Lines     []CartLineDTO   `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	// Stale is set when the store accepted a change the mirror could not reread yet.
	Stale bool `json:"stale,omitempty"`
}

func (h *CartHandler) view(stale bool) CartResponseDTO {
	snap := h.cart.Snapshot()
	drafts := h.cart.Drafts()

	lines := make([]CartLineDTO, len(snap.Lines))
	for i, l := range snap.Lines {
		lines[i] = CartLineDTO{
			CartLine: l,
			Image:    l.Product.ImageOrPlaceholder(),
			Subtotal: l.Subtotal(),
		}
		if d, ok := drafts[l.ID]; ok {
			lines[i].NotesDraft = &d
		}
	}
	return CartResponseDTO{
		UserID:    snap.UserID,
		Lines:     lines,
		ItemCount: snap.Len(),
		Total:     snap.Total(),
		Stale:     stale,
	}
}

// respondMutation answers with the current view. A stale refresh still means
// the change went through.
func (h *CartHandler) respondMutation(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err != nil && !errors.Is(err, service.ErrStale) {
		handleError(w, r, err)
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Warn("cart changed but could not be reread", zap.Error(err))
	}
	respondJSON(w, r, status, h.view(err != nil))
}

func (h *CartHandler) requireUser(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := h.cart.UserID(); !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return false
	}
	return true
}

func lineIDParam(w http.ResponseWriter, r *http.Request) (domain.LineID, bool) {
	id := domain.LineID(chi.URLParam(r, "line_id"))
	if id == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_line_id", "line_id is required")
		return "", false
	}
	return id, true
}

// GetCart serves the mirror. ?refresh=true rereads the store first.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}
	if r.URL.Query().Get("refresh") == "true" {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		if err := h.cart.Refresh(ctx); err != nil {
			handleError(w, r, err)
			return
		}
	}
	respondJSON(w, r, http.StatusOK, h.view(false))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if !h.requireUser(w, r) {
		return
	}
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Product.ID == "" {
		respondError(w, r, http.StatusBadRequest, "invalid_product", "product.id is required")
		return
	}

	h.respondMutation(w, r, http.StatusCreated, h.cart.AddItem(ctx, req.Product, req.Notes))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if !h.requireUser(w, r) {
		return
	}
	lineID, ok := lineIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		respondError(w, r, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	h.respondMutation(w, r, http.StatusOK, h.cart.SetQuantity(ctx, lineID, *req.Quantity))
}

// UpdateNotes answers 202: the write happens once typing pauses.
func (h *CartHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}
	lineID, ok := lineIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateNotesRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Notes == nil {
		respondError(w, r, http.StatusBadRequest, "invalid_notes", "notes is required")
		return
	}
	if _, ok := h.cart.Snapshot().Line(lineID); !ok {
		respondError(w, r, http.StatusNotFound, "not_found", "no such cart line")
		return
	}

	if err := h.cart.SetNotes(lineID, *req.Notes); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusAccepted, h.view(false))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if !h.requireUser(w, r) {
		return
	}
	lineID, ok := lineIDParam(w, r)
	if !ok {
		return
	}

	h.respondMutation(w, r, http.StatusOK, h.cart.RemoveItem(ctx, lineID))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if !h.requireUser(w, r) {
		return
	}

	h.respondMutation(w, r, http.StatusOK, h.cart.Clear(ctx))
}

// CheckoutLinks renders the affiliate links as plain text, one per line.
func (h *CartHandler) CheckoutLinks(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(h.cart.Snapshot().CheckoutList())); err != nil {
		logger.FromContext(r.Context()).Warn("failed to write checkout list", zap.Error(err))
	}
}
