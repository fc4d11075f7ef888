package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/fjod/ishop4u/internal/api"
	"github.com/fjod/ishop4u/internal/domain"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("store down")

type notesCall struct {
	lineID domain.LineID
	notes  string
}

// fakeStore behaves like the remote cart store: adding a product twice bumps
// the existing line, ids are assigned by the store.
type fakeStore struct {
	m        sync.Mutex
	carts    map[string][]domain.CartLine
	products map[string]domain.Product
	nextID   int

	calls      map[string]int
	notesCalls []notesCall
	errs       map[string]error
	removeErrs map[domain.LineID]error

	// fetchGate, when set, is received from before FetchCart answers.
	fetchGate    chan struct{}
	fetchStarted chan string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		carts:      make(map[string][]domain.CartLine),
		products:   make(map[string]domain.Product),
		calls:      make(map[string]int),
		errs:       make(map[string]error),
		removeErrs: make(map[domain.LineID]error),
	}
}

func (f *fakeStore) addProduct(id, title, price, link string) domain.Product {
	p := domain.Product{
		ID:            id,
		Title:         title,
		Price:         decimal.RequireFromString(price),
		Source:        domain.SourceEscuelaJS,
		AffiliateLink: link,
	}
	f.m.Lock()
	f.products[id] = p
	f.m.Unlock()
	return p
}

func (f *fakeStore) seed(userID string, p domain.Product, quantity int) domain.LineID {
	f.m.Lock()
	defer f.m.Unlock()
	f.products[p.ID] = p
	f.nextID++
	id := domain.LineID(strconv.Itoa(f.nextID))
	f.carts[userID] = append(f.carts[userID], domain.CartLine{
		ID: id, ProductID: p.ID, UserID: userID, Quantity: quantity, Product: p,
	})
	return id
}

func (f *fakeStore) setErr(op string, err error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.errs[op] = err
}

func (f *fakeStore) callCount(op string) int {
	f.m.Lock()
	defer f.m.Unlock()
	return f.calls[op]
}

func (f *fakeStore) totalCalls() int {
	f.m.Lock()
	defer f.m.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeStore) lineCount(userID string) int {
	f.m.Lock()
	defer f.m.Unlock()
	return len(f.carts[userID])
}

func (f *fakeStore) getNotesCalls() []notesCall {
	f.m.Lock()
	defer f.m.Unlock()
	return append([]notesCall(nil), f.notesCalls...)
}

func (f *fakeStore) record(op string) error {
	f.calls[op]++
	return f.errs[op]
}

func (f *fakeStore) FetchCart(_ context.Context, userID string) ([]domain.CartLine, error) {
	f.m.Lock()
	gate, started := f.fetchGate, f.fetchStarted
	f.m.Unlock()
	if started != nil {
		started <- userID
	}
	if gate != nil {
		<-gate
	}

	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("fetch"); err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, len(f.carts[userID]))
	for i, l := range f.carts[userID] {
		if l.Notes != nil {
			n := *l.Notes
			l.Notes = &n
		}
		lines[i] = l
	}
	return lines, nil
}

func (f *fakeStore) AddItem(_ context.Context, req api.AddItemRequest) error {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("add"); err != nil {
		return err
	}
	p, ok := f.products[req.ProductID]
	if !ok {
		return &api.StatusError{Op: "add item", StatusCode: 404, Message: "Product not found."}
	}
	cart := f.carts[req.UserID]
	for i := range cart {
		if cart[i].ProductID == req.ProductID {
			cart[i].Quantity += req.Quantity
			if req.Notes != nil {
				cart[i].Notes = req.Notes
			}
			return nil
		}
	}
	f.nextID++
	f.carts[req.UserID] = append(cart, domain.CartLine{
		ID:        domain.LineID(strconv.Itoa(f.nextID)),
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Quantity:  req.Quantity,
		Notes:     req.Notes,
		Product:   p,
	})
	return nil
}

func (f *fakeStore) find(id domain.LineID) (string, int, error) {
	for user, cart := range f.carts {
		for i := range cart {
			if cart[i].ID == id {
				return user, i, nil
			}
		}
	}
	return "", 0, &api.StatusError{Op: "line", StatusCode: 404, Message: fmt.Sprintf("Cart item %s not found.", id)}
}

func (f *fakeStore) UpdateQuantity(_ context.Context, id domain.LineID, quantity int) error {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("quantity"); err != nil {
		return err
	}
	user, i, err := f.find(id)
	if err != nil {
		return err
	}
	f.carts[user][i].Quantity = quantity
	return nil
}

func (f *fakeStore) UpdateNotes(_ context.Context, id domain.LineID, notes string) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.notesCalls = append(f.notesCalls, notesCall{lineID: id, notes: notes})
	if err := f.record("notes"); err != nil {
		return err
	}
	user, i, err := f.find(id)
	if err != nil {
		return err
	}
	n := notes
	f.carts[user][i].Notes = &n
	return nil
}

func (f *fakeStore) RemoveItem(_ context.Context, id domain.LineID) error {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("remove"); err != nil {
		return err
	}
	if err := f.removeErrs[id]; err != nil {
		return err
	}
	user, i, err := f.find(id)
	if err != nil {
		return err
	}
	cart := f.carts[user]
	f.carts[user] = append(cart[:i:i], cart[i+1:]...)
	return nil
}
