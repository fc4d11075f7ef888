package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/ishop4u/internal/api"
	"github.com/fjod/ishop4u/internal/domain"
	"github.com/fjod/ishop4u/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testDelay = 30 * time.Millisecond

func newSync(t *testing.T, store *fakeStore, opts ...Option) *CartSynchronizer {
	opts = append([]Option{WithNotesDelay(testDelay)}, opts...)
	s := NewCartSynchronizer(store, zap.NewNop(), opts...)
	t.Cleanup(s.Close)
	return s
}

func strPtr(s string) *string { return &s }

func TestRefresh_NoUserEmptySnapshot(t *testing.T) {
	store := newFakeStore()
	store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	sut := newSync(t, store)

	require.NoError(t, sut.Refresh(context.Background()))
	assert.True(t, sut.Snapshot().IsEmpty())
	assert.Equal(t, 0, store.totalCalls())
}

func TestRefresh_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.seed("u1", store.addProduct("p1", "Mug", "4.50", "https://a"), 2)
	store.seed("u1", store.addProduct("p2", "Hat", "10", "https://b"), 1)
	sut := newSync(t, store)
	sut.Bind("u1")

	require.NoError(t, sut.Refresh(context.Background()))
	first := sut.Snapshot()
	require.NoError(t, sut.Refresh(context.Background()))
	second := sut.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.Len())
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, "19", first.Total().String())
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	store := newFakeStore()
	store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 2)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))
	before := sut.Snapshot()

	store.setErr("fetch", errStoreDown)
	err := sut.Refresh(context.Background())

	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, before, sut.Snapshot())
}

func TestSnapshot_ReturnsCopy(t *testing.T) {
	store := newFakeStore()
	store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 2)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))

	snap := sut.Snapshot()
	snap.Lines[0].Quantity = 99

	assert.Equal(t, 2, sut.Snapshot().Lines[0].Quantity)
}

func TestAddItem_LineComesFromStore(t *testing.T) {
	store := newFakeStore()
	p := store.addProduct("p1", "Mug", "4.50", "")
	sut := newSync(t, store)
	sut.Bind("u1")

	require.NoError(t, sut.AddItem(context.Background(), p, strPtr("gift wrap")))

	snap := sut.Snapshot()
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, domain.LineID("1"), snap.Lines[0].ID)
	assert.Equal(t, 1, snap.Lines[0].Quantity)
	assert.Equal(t, "gift wrap", snap.Lines[0].NotesText())
	assert.Equal(t, 1, store.callCount("add"))
	assert.Equal(t, 1, store.callCount("fetch"))
}

func TestAddItem_SameProductTwiceBumpsQuantity(t *testing.T) {
	store := newFakeStore()
	p := store.addProduct("p1", "Mug", "4.50", "")
	sut := newSync(t, store)
	sut.Bind("u1")

	require.NoError(t, sut.AddItem(context.Background(), p, nil))
	require.NoError(t, sut.AddItem(context.Background(), p, nil))

	snap := sut.Snapshot()
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, 2, snap.Lines[0].Quantity)
}

func TestAddItem_Unauthenticated(t *testing.T) {
	store := newFakeStore()
	p := store.addProduct("p1", "Mug", "4.50", "")
	sut := newSync(t, store)

	err := sut.AddItem(context.Background(), p, nil)

	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, 0, store.totalCalls())
}

func TestAddItem_InvalidProduct(t *testing.T) {
	store := newFakeStore()
	sut := newSync(t, store)
	sut.Bind("u1")

	err := sut.AddItem(context.Background(), domain.Product{Title: "no id"}, nil)

	assert.ErrorIs(t, err, ErrInvalidProduct)
	assert.Equal(t, 0, store.totalCalls())
}

func TestAddItem_StoreRejectsNoOptimisticLine(t *testing.T) {
	store := newFakeStore()
	sut := newSync(t, store)
	sut.Bind("u1")

	err := sut.AddItem(context.Background(), domain.Product{ID: "missing"}, nil)

	assert.ErrorIs(t, err, api.ErrRejected)
	assert.True(t, sut.Snapshot().IsEmpty())
	assert.Equal(t, 0, store.callCount("fetch"))
}

func TestSetQuantity_Success(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 2)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))

	require.NoError(t, sut.SetQuantity(context.Background(), id, 5))

	line, ok := sut.Snapshot().Line(id)
	require.True(t, ok)
	assert.Equal(t, 5, line.Quantity)
}

func TestSetQuantity_ZeroSameAsRemove(t *testing.T) {
	setup := func() (*fakeStore, domain.LineID, domain.LineID) {
		store := newFakeStore()
		a := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 2)
		b := store.seed("u1", store.addProduct("p2", "Hat", "10", ""), 1)
		return store, a, b
	}

	storeA, lineA, _ := setup()
	viaZero := newSync(t, storeA)
	viaZero.Bind("u1")
	require.NoError(t, viaZero.Refresh(context.Background()))
	require.NoError(t, viaZero.SetQuantity(context.Background(), lineA, 0))

	storeB, lineB, _ := setup()
	viaRemove := newSync(t, storeB)
	viaRemove.Bind("u1")
	require.NoError(t, viaRemove.Refresh(context.Background()))
	require.NoError(t, viaRemove.RemoveItem(context.Background(), lineB))

	assert.Equal(t, viaRemove.Snapshot(), viaZero.Snapshot())
	assert.Equal(t, 1, viaZero.Snapshot().Len())
	assert.Equal(t, 0, storeA.callCount("quantity"))
	assert.Equal(t, 1, storeA.callCount("remove"))
}

func TestSetQuantity_NegativeRejectedLocally(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 2)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))
	before := sut.Snapshot()
	callsBefore := store.totalCalls()

	err := sut.SetQuantity(context.Background(), id, -1)

	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, callsBefore, store.totalCalls())
	assert.Equal(t, before, sut.Snapshot())
}

func TestSetQuantity_FailurePreservesState(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 2)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))

	store.setErr("quantity", errStoreDown)
	err := sut.SetQuantity(context.Background(), id, 5)

	assert.ErrorIs(t, err, errStoreDown)
	snap := sut.Snapshot()
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, id, snap.Lines[0].ID)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
}

func TestSetQuantity_RefreshFailureIsStale(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 2)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))

	store.setErr("fetch", errStoreDown)
	err := sut.SetQuantity(context.Background(), id, 3)

	assert.ErrorIs(t, err, ErrStale)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 2, sut.Snapshot().Lines[0].Quantity)
}

func TestSetQuantity_Unauthenticated(t *testing.T) {
	store := newFakeStore()
	sut := newSync(t, store)

	assert.ErrorIs(t, sut.SetQuantity(context.Background(), "1", 2), ErrNotAuthenticated)
	assert.ErrorIs(t, sut.RemoveItem(context.Background(), "1"), ErrNotAuthenticated)
	assert.ErrorIs(t, sut.SetNotes("1", "x"), ErrNotAuthenticated)
	assert.ErrorIs(t, sut.Clear(context.Background()), ErrNotAuthenticated)
	assert.Equal(t, 0, store.totalCalls())
}

func TestSetNotes_DebounceCollapses(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))

	require.NoError(t, sut.SetNotes(id, "a"))
	require.NoError(t, sut.SetNotes(id, "ab"))
	require.NoError(t, sut.SetNotes(id, "abc"))

	draft, ok := sut.NoteDraft(id)
	assert.True(t, ok)
	assert.Equal(t, "abc", draft)

	require.Eventually(t, func() bool {
		line, _ := sut.Snapshot().Line(id)
		return line.NotesText() == "abc"
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []notesCall{{lineID: id, notes: "abc"}}, store.getNotesCalls())
	require.Eventually(t, func() bool {
		_, ok := sut.NoteDraft(id)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestSetNotes_SeparateLinesSeparateWrites(t *testing.T) {
	store := newFakeStore()
	a := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	b := store.seed("u1", store.addProduct("p2", "Hat", "10", ""), 1)
	sut := newSync(t, store)
	sut.Bind("u1")

	require.NoError(t, sut.SetNotes(a, "for mum"))
	require.NoError(t, sut.SetNotes(b, "for dad"))

	require.Eventually(t, func() bool {
		return len(store.getNotesCalls()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []notesCall{{a, "for mum"}, {b, "for dad"}}, store.getNotesCalls())
}

func TestSetNotes_FailureKeepsDraftAndReports(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)

	var (
		mu       sync.Mutex
		reported []error
	)
	sut := newSync(t, store, WithErrorHandler(func(op string, err error) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "set notes", op)
		reported = append(reported, err)
	}))
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))

	store.setErr("notes", errStoreDown)
	require.NoError(t, sut.SetNotes(id, "blue please"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reported) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.ErrorIs(t, reported[0], errStoreDown)
	mu.Unlock()

	draft, ok := sut.NoteDraft(id)
	assert.True(t, ok)
	assert.Equal(t, "blue please", draft)
	line, _ := sut.Snapshot().Line(id)
	assert.Equal(t, "", line.NotesText())
}

func TestSetNotes_DraftSurvivesFailedRefresh(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)

	var reported []error
	sut := newSync(t, store, WithErrorHandler(func(_ string, err error) {
		reported = append(reported, err)
	}))
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))

	store.setErr("fetch", errStoreDown)
	require.NoError(t, sut.SetNotes(id, "blue please"))
	sut.FlushNotes()

	assert.Equal(t, []notesCall{{id, "blue please"}}, store.getNotesCalls())
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], ErrStale)
	draft, ok := sut.NoteDraft(id)
	assert.True(t, ok, "typed notes must stay visible until the store shows them")
	assert.Equal(t, "blue please", draft)

	store.setErr("fetch", nil)
	require.NoError(t, sut.Refresh(context.Background()))

	_, ok = sut.NoteDraft(id)
	assert.False(t, ok)
	line, _ := sut.Snapshot().Line(id)
	assert.Equal(t, "blue please", line.NotesText())
}

func TestSetNotes_NewerDraftKeptAcrossRefresh(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	sut := NewCartSynchronizer(store, zap.NewNop(), WithNotesDelay(time.Hour))
	defer sut.Close()
	sut.Bind("u1")

	require.NoError(t, sut.SetNotes(id, "ab"))
	sut.FlushNotes()
	require.NoError(t, sut.SetNotes(id, "abc"))
	require.NoError(t, sut.Refresh(context.Background()))

	draft, ok := sut.NoteDraft(id)
	assert.True(t, ok)
	assert.Equal(t, "abc", draft)
}

func TestSaveNotes_ReturnsOutcome(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	sut := NewCartSynchronizer(store, zap.NewNop(), WithNotesDelay(time.Hour))
	defer sut.Close()
	sut.Bind("u1")

	require.NoError(t, sut.SetNotes(id, "pending"))
	require.NoError(t, sut.SaveNotes(context.Background(), id, "final"))

	assert.Zero(t, sut.PendingNotes())
	assert.Equal(t, []notesCall{{id, "final"}}, store.getNotesCalls())
	line, _ := sut.Snapshot().Line(id)
	assert.Equal(t, "final", line.NotesText())
	_, ok := sut.NoteDraft(id)
	assert.False(t, ok)

	store.setErr("notes", errStoreDown)
	err := sut.SaveNotes(context.Background(), id, "rejected")
	assert.ErrorIs(t, err, errStoreDown)
	draft, _ := sut.NoteDraft(id)
	assert.Equal(t, "rejected", draft)

	assert.ErrorIs(t, NewCartSynchronizer(store, nil).SaveNotes(context.Background(), id, "x"), ErrNotAuthenticated)
}

func TestSetNotes_FlushSendsImmediately(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	sut := NewCartSynchronizer(store, zap.NewNop(), WithNotesDelay(time.Hour))
	defer sut.Close()
	sut.Bind("u1")

	require.NoError(t, sut.SetNotes(id, "now"))
	assert.Equal(t, 1, sut.PendingNotes())
	sut.FlushNotes()

	assert.Equal(t, 0, sut.PendingNotes())
	assert.Equal(t, []notesCall{{id, "now"}}, store.getNotesCalls())
	line, _ := sut.Snapshot().Line(id)
	assert.Equal(t, "now", line.NotesText())
}

func TestRemoveItem_CancelsPendingNotes(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	sut := newSync(t, store)
	sut.Bind("u1")

	require.NoError(t, sut.SetNotes(id, "never sent"))
	require.NoError(t, sut.RemoveItem(context.Background(), id))

	time.Sleep(3 * testDelay)
	assert.Empty(t, store.getNotesCalls())
	_, ok := sut.NoteDraft(id)
	assert.False(t, ok)
	assert.True(t, sut.Snapshot().IsEmpty())
}

func TestRemoveItem_FailurePreservesState(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))

	store.setErr("remove", errStoreDown)
	err := sut.RemoveItem(context.Background(), id)

	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 1, sut.Snapshot().Len())
}

func TestIdentitySwitch_ClearsBeforeRefresh(t *testing.T) {
	store := newFakeStore()
	store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))
	require.Equal(t, 1, sut.Snapshot().Len())

	sut.Bind("u2")

	snap := sut.Snapshot()
	assert.Equal(t, "u2", snap.UserID)
	assert.True(t, snap.IsEmpty())

	sut.Unbind()
	assert.True(t, sut.Snapshot().IsEmpty())
	assert.Equal(t, "", sut.Snapshot().UserID)
}

func TestIdentitySwitch_DiscardsInFlightFetch(t *testing.T) {
	store := newFakeStore()
	store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	gate := make(chan struct{})
	started := make(chan string, 2)
	store.fetchGate = gate
	store.fetchStarted = started

	sut := newSync(t, store)
	sut.Bind("u1")

	done := make(chan error)
	go func() { done <- sut.Refresh(context.Background()) }()
	assert.Equal(t, "u1", <-started)

	sut.Bind("u2")
	close(gate)
	require.NoError(t, <-done)

	snap := sut.Snapshot()
	assert.Equal(t, "u2", snap.UserID)
	assert.True(t, snap.IsEmpty(), "u1 lines must never show under u2")
}

func TestIdentitySwitch_DropsPendingNotes(t *testing.T) {
	store := newFakeStore()
	id := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	sut := newSync(t, store)
	sut.Bind("u1")

	require.NoError(t, sut.SetNotes(id, "typed by u1"))
	sut.Bind("u2")

	time.Sleep(3 * testDelay)
	assert.Empty(t, store.getNotesCalls())
	assert.Empty(t, sut.Drafts())
}

func TestWatch_FollowsSession(t *testing.T) {
	store := newFakeStore()
	store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	store.seed("u2", store.addProduct("p2", "Hat", "10", ""), 3)
	session := identity.NewSession()
	sut := newSync(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sut.Watch(ctx, session)
		close(done)
	}()

	session.SignIn("u1")
	require.Eventually(t, func() bool {
		s := sut.Snapshot()
		return s.UserID == "u1" && s.Len() == 1
	}, time.Second, 5*time.Millisecond)

	session.SignIn("u2")
	require.Eventually(t, func() bool {
		s := sut.Snapshot()
		return s.UserID == "u2" && s.Len() == 1 && s.Lines[0].Quantity == 3
	}, time.Second, 5*time.Millisecond)

	session.SignOut()
	require.Eventually(t, func() bool {
		s := sut.Snapshot()
		return s.UserID == "" && s.IsEmpty()
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestWatch_RebindsWhileFetchBlocked(t *testing.T) {
	store := newFakeStore()
	store.seed("u3", store.addProduct("p1", "Mug", "4.50", ""), 1)
	hat := store.addProduct("p2", "Hat", "10", "")
	gate := make(chan struct{})
	started := make(chan string, 8)
	store.fetchGate = gate
	store.fetchStarted = started
	session := identity.NewSession()
	sut := newSync(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sut.Watch(ctx, session)
		close(done)
	}()

	session.SignIn("u3")
	require.Equal(t, "u3", <-started)

	session.SignIn("u2")
	userID, ok := sut.UserID()
	assert.True(t, ok)
	assert.Equal(t, "u2", userID)
	assert.Equal(t, "u2", sut.Snapshot().UserID)

	added := make(chan error, 1)
	go func() { added <- sut.AddItem(context.Background(), hat, nil) }()
	require.Eventually(t, func() bool { return store.lineCount("u2") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, store.lineCount("u3"))

	close(gate)
	require.NoError(t, <-added)
	require.Eventually(t, func() bool {
		s := sut.Snapshot()
		return s.UserID == "u2" && s.Len() == 1 && s.Lines[0].ProductID == "p2"
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestWatch_PicksUpExistingSession(t *testing.T) {
	store := newFakeStore()
	store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	session := identity.NewSession()
	session.SignIn("u1")
	sut := newSync(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sut.Watch(ctx, session)

	require.Eventually(t, func() bool {
		return sut.Snapshot().Len() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestClear_RemovesEveryLine(t *testing.T) {
	store := newFakeStore()
	store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	store.seed("u1", store.addProduct("p2", "Hat", "10", ""), 2)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))

	require.NoError(t, sut.Clear(context.Background()))

	assert.True(t, sut.Snapshot().IsEmpty())
	assert.Equal(t, 2, store.callCount("remove"))
}

func TestClear_PartialFailureMatchesStore(t *testing.T) {
	store := newFakeStore()
	a := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	b := store.seed("u1", store.addProduct("p2", "Hat", "10", ""), 2)
	store.removeErrs[b] = errStoreDown
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))

	err := sut.Clear(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Contains(t, err.Error(), "remove line "+b.String())
	snap := sut.Snapshot()
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, b, snap.Lines[0].ID)
	_, ok := snap.Line(a)
	assert.False(t, ok)

	require.NoError(t, sut.Refresh(context.Background()))
	assert.Equal(t, snap, sut.Snapshot())
}

func TestClear_RefreshFailureIsStale(t *testing.T) {
	store := newFakeStore()
	store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))
	store.setErr("fetch", errStoreDown)

	err := sut.Clear(context.Background())

	require.ErrorIs(t, err, ErrStale)
	assert.Equal(t, 1, store.callCount("remove"))
	// the store is empty but the mirror has not seen it yet
	assert.Equal(t, 1, sut.Snapshot().Len())
}

func TestClear_PartialFailureIsNotStale(t *testing.T) {
	store := newFakeStore()
	b := store.seed("u1", store.addProduct("p1", "Mug", "4.50", ""), 1)
	store.removeErrs[b] = errStoreDown
	sut := newSync(t, store)
	sut.Bind("u1")
	require.NoError(t, sut.Refresh(context.Background()))
	store.setErr("fetch", errors.New("fetch down"))

	err := sut.Clear(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStale)
	assert.Contains(t, err.Error(), "fetch down")
}
