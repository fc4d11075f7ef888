package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/ishop4u/internal/api"
	"github.com/fjod/ishop4u/internal/debounce"
	"github.com/fjod/ishop4u/internal/domain"
	"github.com/fjod/ishop4u/internal/identity"
	"go.uber.org/zap"
)

const (
	DefaultNotesDelay   = 500 * time.Millisecond
	DefaultWriteTimeout = 10 * time.Second
)

// CartSynchronizer mirrors the signed-in user's remote cart. Every confirmed
// mutation is followed by a fresh read; the snapshot is only ever replaced by
// what the store returns.
type CartSynchronizer struct {
	store        api.CartStore
	logger       *zap.Logger
	notes        *debounce.Keyed[domain.LineID]
	writeTimeout time.Duration
	onError      func(op string, err error)

	mu         sync.RWMutex
	userID     string
	bound      bool
	generation uint64
	snapshot   domain.Snapshot
	drafts     map[domain.LineID]string
	provider   identity.Provider
}

type Option func(*options)

type options struct {
	notesDelay   time.Duration
	writeTimeout time.Duration
	onError      func(op string, err error)
}

func WithNotesDelay(d time.Duration) Option {
	return func(o *options) { o.notesDelay = d }
}

// WithWriteTimeout bounds the debounced notes writes, which run without a caller context.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) { o.writeTimeout = d }
}

// WithErrorHandler receives failures of work that has no caller to return to,
// i.e. debounced notes writes and their follow-up refresh.
func WithErrorHandler(fn func(op string, err error)) Option {
	return func(o *options) { o.onError = fn }
}

func NewCartSynchronizer(store api.CartStore, logger *zap.Logger, opts ...Option) *CartSynchronizer {
	o := options{notesDelay: DefaultNotesDelay, writeTimeout: DefaultWriteTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartSynchronizer{
		store:        store,
		logger:       logger.Named("cart"),
		notes:        debounce.NewKeyed[domain.LineID](o.notesDelay),
		writeTimeout: o.writeTimeout,
		onError:      o.onError,
		drafts:       make(map[domain.LineID]string),
	}
}

// Bind switches the synchronizer to userID. The previous user's snapshot,
// drafts and pending notes writes are dropped before anything else can read them.
func (s *CartSynchronizer) Bind(userID string) {
	if userID == "" {
		s.Unbind()
		return
	}
	s.mu.Lock()
	if s.bound && s.userID == userID {
		s.mu.Unlock()
		return
	}
	s.reset(userID, true)
	s.mu.Unlock()
	s.notes.CancelAll()
	s.logger.Info("cart bound to user", zap.String("user_id", userID))
}

func (s *CartSynchronizer) Unbind() {
	s.mu.Lock()
	if !s.bound {
		s.mu.Unlock()
		return
	}
	s.reset("", false)
	s.mu.Unlock()
	s.notes.CancelAll()
	s.logger.Info("cart unbound")
}

// reset must be called with mu held.
func (s *CartSynchronizer) reset(userID string, bound bool) {
	s.generation++
	s.userID = userID
	s.bound = bound
	s.snapshot = domain.Snapshot{UserID: userID}
	s.drafts = make(map[domain.LineID]string)
}

// Watch follows provider until ctx is done. While it runs, every read and
// mutation first adopts provider's current identity, so nothing is sent for a
// user who already signed out. Refreshes after a change run in the background
// and never delay the rebinding itself.
func (s *CartSynchronizer) Watch(ctx context.Context, provider identity.Provider) {
	changes, cancel := provider.Subscribe()
	defer cancel()

	s.mu.Lock()
	s.provider = provider
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.provider == provider {
			s.provider = nil
		}
		s.mu.Unlock()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	refresh := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// failures are logged inside Refresh and the empty snapshot stays
			_ = s.Refresh(ctx)
		}()
	}

	s.follow()
	refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			s.follow()
			refresh()
		}
	}
}

// follow rebinds to the watched provider's identity if it moved on.
func (s *CartSynchronizer) follow() {
	s.mu.RLock()
	provider := s.provider
	s.mu.RUnlock()
	if provider == nil {
		return
	}
	if userID, ok := provider.Current(); ok {
		s.Bind(userID)
	} else {
		s.Unbind()
	}
}

func (s *CartSynchronizer) current() (userID string, gen uint64, ok bool) {
	s.follow()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.generation, s.bound
}

// UserID reports the bound user, if any.
func (s *CartSynchronizer) UserID() (string, bool) {
	userID, _, ok := s.current()
	return userID, ok
}

// Snapshot returns a copy of the last synchronized cart.
func (s *CartSynchronizer) Snapshot() domain.Snapshot {
	s.follow()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// NoteDraft returns notes typed for lineID that the store has not confirmed yet.
func (s *CartSynchronizer) NoteDraft(lineID domain.LineID) (string, bool) {
	s.follow()
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.drafts[lineID]
	return text, ok
}

func (s *CartSynchronizer) Drafts() map[domain.LineID]string {
	s.follow()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.LineID]string, len(s.drafts))
	for k, v := range s.drafts {
		out[k] = v
	}
	return out
}

// Refresh replaces the snapshot with the store's view of the bound user's
// cart. With nobody signed in the snapshot is emptied and nil returned. On
// failure the previous snapshot is kept.
func (s *CartSynchronizer) Refresh(ctx context.Context) error {
	userID, gen, ok := s.current()
	if !ok {
		s.mu.Lock()
		if s.generation == gen {
			s.snapshot = domain.Snapshot{}
		}
		s.mu.Unlock()
		return nil
	}

	lines, err := s.store.FetchCart(ctx, userID)
	if err != nil {
		s.logger.Error("error fetching cart", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("refresh cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding cart fetched for previous user", zap.String("user_id", userID))
		return nil
	}
	s.snapshot = domain.Snapshot{UserID: userID, Lines: lines}
	// a draft lives until the store shows its text or the line is gone
	for id, text := range s.drafts {
		if line, ok := s.snapshot.Line(id); !ok || line.NotesText() == text {
			delete(s.drafts, id)
		}
	}
	return nil
}

func (s *CartSynchronizer) refreshAfter(ctx context.Context, op string) error {
	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrStale, err)
	}
	return nil
}

// AddItem asks the store for a new line with quantity 1. Nothing is added
// locally; the line appears once the follow-up refresh returns it.
func (s *CartSynchronizer) AddItem(ctx context.Context, product domain.Product, notes *string) error {
	userID, _, ok := s.current()
	if !ok {
		s.logger.Warn("add item rejected: user not logged in")
		return ErrNotAuthenticated
	}
	if product.ID == "" {
		return ErrInvalidProduct
	}

	err := s.store.AddItem(ctx, api.AddItemRequest{
		ProductID: product.ID,
		UserID:    userID,
		Quantity:  1,
		Notes:     notes,
	})
	if err != nil {
		s.logger.Error("error adding to cart", zap.String("product_id", product.ID), zap.Error(err))
		return fmt.Errorf("add item: %w", err)
	}
	return s.refreshAfter(ctx, "add item")
}

// SetQuantity updates a line. Zero removes it, negative values never reach the store.
func (s *CartSynchronizer) SetQuantity(ctx context.Context, lineID domain.LineID, quantity int) error {
	if _, _, ok := s.current(); !ok {
		return ErrNotAuthenticated
	}
	if lineID == "" {
		return ErrInvalidLine
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, lineID)
	}

	if err := s.store.UpdateQuantity(ctx, lineID, quantity); err != nil {
		s.logger.Error("error updating cart item quantity",
			zap.String("line_id", lineID.String()), zap.Int("quantity", quantity), zap.Error(err))
		return fmt.Errorf("set quantity: %w", err)
	}
	return s.refreshAfter(ctx, "set quantity")
}

// SetNotes records text as a draft right away and writes it to the store once
// no further edits for the same line arrived within the notes delay. Only the
// latest text of a burst is sent.
func (s *CartSynchronizer) SetNotes(lineID domain.LineID, text string) error {
	gen, err := s.draft(lineID, text)
	if err != nil {
		return err
	}
	s.notes.Schedule(lineID, func() {
		s.writeNotes(gen, lineID, text)
	})
	return nil
}

// SaveNotes writes text for lineID now and returns the outcome, replacing
// any debounced write still pending for the line.
func (s *CartSynchronizer) SaveNotes(ctx context.Context, lineID domain.LineID, text string) error {
	gen, err := s.draft(lineID, text)
	if err != nil {
		return err
	}
	s.notes.Cancel(lineID)
	return s.saveNotes(ctx, gen, lineID, text)
}

func (s *CartSynchronizer) draft(lineID domain.LineID, text string) (uint64, error) {
	s.follow()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return 0, ErrNotAuthenticated
	}
	if lineID == "" {
		return 0, ErrInvalidLine
	}
	s.drafts[lineID] = text
	return s.generation, nil
}

func (s *CartSynchronizer) writeNotes(gen uint64, lineID domain.LineID, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := s.saveNotes(ctx, gen, lineID, text); err != nil && !errors.Is(err, errSuperseded) {
		s.report("set notes", err)
	}
}

var errSuperseded = fmt.Errorf("identity changed before notes were written: %w", ErrNotAuthenticated)

// saveNotes leaves the draft in place; the follow-up refresh drops it once
// the store returns the same text.
func (s *CartSynchronizer) saveNotes(ctx context.Context, gen uint64, lineID domain.LineID, text string) error {
	if _, cur, ok := s.current(); !ok || cur != gen {
		return errSuperseded
	}
	if err := s.store.UpdateNotes(ctx, lineID, text); err != nil {
		s.logger.Error("error updating cart item notes", zap.String("line_id", lineID.String()), zap.Error(err))
		return fmt.Errorf("set notes: %w", err)
	}
	return s.refreshAfter(ctx, "set notes")
}

func (s *CartSynchronizer) report(op string, err error) {
	if s.onError != nil {
		s.onError(op, err)
	}
}

// FlushNotes sends pending notes writes now instead of waiting for the delay.
func (s *CartSynchronizer) FlushNotes() {
	s.notes.Flush()
}

func (s *CartSynchronizer) PendingNotes() int {
	return s.notes.Pending()
}

func (s *CartSynchronizer) RemoveItem(ctx context.Context, lineID domain.LineID) error {
	if _, _, ok := s.current(); !ok {
		return ErrNotAuthenticated
	}
	if lineID == "" {
		return ErrInvalidLine
	}

	if err := s.removeLine(ctx, lineID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return s.refreshAfter(ctx, "remove item")
}

func (s *CartSynchronizer) removeLine(ctx context.Context, lineID domain.LineID) error {
	if err := s.store.RemoveItem(ctx, lineID); err != nil {
		s.logger.Error("error removing from cart", zap.String("line_id", lineID.String()), zap.Error(err))
		return err
	}
	// a notes write for a deleted line can only fail
	s.notes.Cancel(lineID)
	s.mu.Lock()
	delete(s.drafts, lineID)
	s.mu.Unlock()
	return nil
}

// Clear removes the lines of the current snapshot one by one. Lines that
// fail to delete are reported and left in place; the snapshot afterwards is
// whatever the store returns. ErrStale is only returned when every line was
// removed.
func (s *CartSynchronizer) Clear(ctx context.Context) error {
	if _, _, ok := s.current(); !ok {
		return ErrNotAuthenticated
	}

	var errs []error
	for _, line := range s.Snapshot().Lines {
		if err := s.removeLine(ctx, line.ID); err != nil {
			errs = append(errs, fmt.Errorf("remove line %s: %w", line.ID, err))
		}
	}
	if err := s.Refresh(ctx); err != nil {
		if len(errs) == 0 {
			return fmt.Errorf("clear cart: %w: %w", ErrStale, err)
		}
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("clear cart: %w", errors.Join(errs...))
	}
	return nil
}

// Close sends pending notes writes and waits for writes already under way.
func (s *CartSynchronizer) Close() {
	s.notes.Flush()
	s.notes.Wait()
}
