package hackhub

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLoginFailed is returned by AuthStore.Login for any rejected login.
var ErrLoginFailed = errors.New("login failed")

// SessionAPI is the part of the API the auth store needs. *Client
// implements it.
type SessionAPI interface {
	Login(ctx context.Context, email, password string) error
	Me(ctx context.Context) (*User, error)
	Logout(ctx context.Context) error
}

// State is a snapshot of the client's view of the session.
type State struct {
	CurrentUser *User
	// IsLoading is true until the first session lookup finishes.
	IsLoading bool
}

// IsAuthenticated reports whether a user is signed in.
func (s State) IsAuthenticated() bool {
	return s.CurrentUser != nil
}

// AuthStore holds the client's session state and tells subscribers when it
// changes. Create one per application and pass it to the views that need it.
//
// Session lookups may overlap. Whichever lookup applies last wins, except
// that a lookup started before a logout is dropped when it completes so it
// cannot resurrect the logged-out user.
type AuthStore struct {
	api SessionAPI

	mu          sync.Mutex
	state       State
	lookups     uint64 // lookups started so far
	logoutMark  uint64 // lookups numbered at or below this are stale
	subscribers map[int]func(State)
	nextSubID   int
}

// NewAuthStore returns a store in the loading state. Call Hydrate to resolve
// it.
func NewAuthStore(api SessionAPI) *AuthStore {
	return &AuthStore{
		api:         api,
		state:       State{IsLoading: true},
		subscribers: make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (s *AuthStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every state change and returns a
// function that removes it. fn runs on the goroutine that changed the state.
func (s *AuthStore) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Hydrate asks the server who is logged in. Any failure means nobody is.
// Loading ends here whether or not the lookup result is applied.
func (s *AuthStore) Hydrate(ctx context.Context) {
	ticket := s.startLookup()
	user, err := s.api.Me(ctx)
	if err != nil {
		user = nil
	}
	s.finishLookup(ticket, user, true)
}

// Login authenticates and then refreshes the current user from the server
// before returning, so callers see the new user as soon as Login returns.
// A rejected login leaves the state untouched.
func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	if err := s.api.Login(ctx, email, password); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	ticket := s.startLookup()
	user, err := s.api.Me(ctx)
	if err != nil {
		// Logged in but the refresh failed; keep the previous state.
		return nil
	}
	s.finishLookup(ticket, user, false)
	return nil
}

// Logout ends the session on the server and clears the current user. The
// local state is cleared even when the request fails; the error is returned
// for logging only.
func (s *AuthStore) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)

	s.mu.Lock()
	s.logoutMark = s.lookups
	s.state.CurrentUser = nil
	snapshot, subs := s.state, s.subscriberList()
	s.mu.Unlock()

	notify(subs, snapshot)
	return err
}

func (s *AuthStore) startLookup() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	return s.lookups
}

// finishLookup applies a lookup result unless a logout happened after the
// lookup started.
func (s *AuthStore) finishLookup(ticket uint64, user *User, endsLoading bool) {
	s.mu.Lock()
	changed := false
	if endsLoading && s.state.IsLoading {
		s.state.IsLoading = false
		changed = true
	}
	if ticket > s.logoutMark {
		s.state.CurrentUser = user
		changed = true
	}
	snapshot, subs := s.state, s.subscriberList()
	s.mu.Unlock()

	if changed {
		notify(subs, snapshot)
	}
}

// subscriberList must be called with s.mu held.
func (s *AuthStore) subscriberList() []func(State) {
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), state State) {
	for _, fn := range subs {
		fn(state)
	}
}
