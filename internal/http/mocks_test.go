package http

import (
	"context"
	"sync"

	"github.com/fjod/ishop4u/internal/catalog"
	"github.com/fjod/ishop4u/internal/domain"
	"github.com/fjod/ishop4u/internal/service"
)

type mockCart struct {
	mu       sync.Mutex
	userID   string
	snapshot domain.Snapshot
	drafts   map[domain.LineID]string
	err      error

	added    []domain.Product
	quantity map[domain.LineID]int
	removed  []domain.LineID
	cleared  int
	refresh  int
}

func newMockCart(userID string, lines ...domain.CartLine) *mockCart {
	return &mockCart{
		userID:   userID,
		snapshot: domain.Snapshot{UserID: userID, Lines: lines},
		drafts:   make(map[domain.LineID]string),
		quantity: make(map[domain.LineID]int),
	}
}

func (m *mockCart) UserID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID, m.userID != ""
}

func (m *mockCart) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.Clone()
}

func (m *mockCart) Drafts() map[domain.LineID]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.LineID]string, len(m.drafts))
	for k, v := range m.drafts {
		out[k] = v
	}
	return out
}

func (m *mockCart) Refresh(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh++
	return m.err
}

func (m *mockCart) AddItem(_ context.Context, p domain.Product, _ *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userID == "" {
		return service.ErrNotAuthenticated
	}
	m.added = append(m.added, p)
	return m.err
}

func (m *mockCart) SetQuantity(_ context.Context, id domain.LineID, q int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q < 0 {
		return service.ErrInvalidQuantity
	}
	m.quantity[id] = q
	return m.err
}

func (m *mockCart) SetNotes(id domain.LineID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[id] = text
	return nil
}

func (m *mockCart) RemoveItem(_ context.Context, id domain.LineID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, id)
	return m.err
}

func (m *mockCart) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	return m.err
}

type mockCatalog struct {
	query catalog.Query
	res   *catalog.Result
	top   []domain.Product
	err   error
}

func (m *mockCatalog) Search(_ context.Context, q catalog.Query) (*catalog.Result, error) {
	m.query = q
	if m.err != nil {
		return nil, m.err
	}
	return m.res, nil
}

func (m *mockCatalog) Top(context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.top, nil
}

type mockCheckout struct {
	key     string
	address domain.ShippingAddress
	order   *domain.Order
	err     error
}

func (m *mockCheckout) PlaceOrderWithKey(_ context.Context, key string, addr domain.ShippingAddress) (*domain.Order, error) {
	m.key = key
	m.address = addr
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

type mockDashboard struct {
	got domain.TimeRange
	err error
}

func (m *mockDashboard) Overview(_ context.Context, tr domain.TimeRange) (*domain.Overview, error) {
	m.got = tr
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Overview{TimeRange: tr}, nil
}

type mockSession struct {
	userID string
}

func (s *mockSession) Current() (string, bool) { return s.userID, s.userID != "" }
func (s *mockSession) SignIn(userID string)    { s.userID = userID }
func (s *mockSession) SignOut()                { s.userID = "" }
