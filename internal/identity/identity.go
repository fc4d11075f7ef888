// Package identity exposes who is signed in. Sign-in itself happens at an
// external identity provider; Session only mirrors its outcome.
package identity

import "sync"

// Change is delivered to subscribers whenever the signed-in user changes.
// SignedIn is false after sign-out.
type Change struct {
	UserID   string
	SignedIn bool
}

type Provider interface {
	Current() (userID string, ok bool)
	// Subscribe returns a channel of changes and a function that ends the subscription.
	Subscribe() (<-chan Change, func())
}

type Session struct {
	mu      sync.Mutex
	current Change
	subs    map[int]chan Change
	nextID  int
}

var _ Provider = (*Session)(nil)

func NewSession() *Session {
	return &Session{subs: make(map[int]chan Change)}
}

func (s *Session) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.UserID, s.current.SignedIn
}

// SignIn records userID as the current user. An empty id signs out.
func (s *Session) SignIn(userID string) {
	if userID == "" {
		s.SignOut()
		return
	}
	s.set(Change{UserID: userID, SignedIn: true})
}

func (s *Session) SignOut() {
	s.set(Change{})
}

func (s *Session) set(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == s.current {
		return
	}
	s.current = c
	for _, ch := range s.subs {
		publish(ch, c)
	}
}

// publish keeps at most one pending change per subscriber. A subscriber that
// falls behind sees the latest identity, never a stale one.
func publish(ch chan Change, c Change) {
	select {
	case ch <- c:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- c:
	default:
	}
}

func (s *Session) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Change, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}
