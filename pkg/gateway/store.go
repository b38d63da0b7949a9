package gateway

import (
	"errors"
	"sync"
	"time"
)

// ErrCapacity is returned when the store is at its session ceiling. The
// gateway maps it to 503 with Retry-After so clients back off and retry.
var ErrCapacity = errors.New("session capacity reached")

// ErrDuplicateSession is returned when an identifier is already registered.
var ErrDuplicateSession = errors.New("session identifier already registered")

// Store is the in-memory registry of active sessions. All mutation happens
// inside its mutex; nothing in a critical section blocks or suspends.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	// pending counts reservations for sessions mid-create, so concurrent
	// creates cannot overshoot the capacity ceiling.
	pending  int
	capacity int
	clock    func() time.Time
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithClock injects the time source, for deterministic tests.
func WithClock(clock func() time.Time) StoreOption {
	return func(st *Store) { st.clock = clock }
}

// NewStore creates a store bounded at capacity sessions. capacity <= 0 means
// unbounded.
func NewStore(capacity int, opts ...StoreOption) *Store {
	st := &Store{
		sessions: make(map[string]*Session),
		capacity: capacity,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Reserve claims a capacity slot for a session in its pending-create state.
// Every Reserve must be paired with exactly one Register or Release.
func (st *Store) Reserve() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.capacity > 0 && len(st.sessions)+st.pending >= st.capacity {
		return ErrCapacity
	}
	st.pending++
	return nil
}

// Release returns an unused reservation, after a create that never produced
// an identifier.
func (st *Store) Release() {
	st.mu.Lock()
	if st.pending > 0 {
		st.pending--
	}
	st.mu.Unlock()
}

// Register makes the session visible under its identifier, consuming the
// caller's reservation. The duplicate check is re-validated here, inside the
// lock: two interleaved create flows can both have observed a free slot.
func (st *Store) Register(s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.pending > 0 {
		st.pending--
	}
	if _, exists := st.sessions[s.id]; exists {
		return ErrDuplicateSession
	}
	s.touch(st.clock())
	st.sessions[s.id] = s
	return nil
}

// Get returns the session for the identifier and marks it active.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		s.touch(st.clock())
	}
	return s, ok
}

// Remove takes the identifier out of visibility and returns the session for
// the caller to close. Removal happens strictly before close, so no new
// request can be routed to a session mid-teardown.
func (st *Store) Remove(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	return s, ok
}

// Sweep removes every session idle longer than threshold and returns them for
// closing.
func (st *Store) Sweep(threshold time.Duration) []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.clock()
	var evicted []*Session
	for id, s := range st.sessions {
		if now.Sub(s.LastActive()) > threshold {
			delete(st.sessions, id)
			evicted = append(evicted, s)
		}
	}
	return evicted
}

// Drain empties the store and returns every session, for shutdown.
func (st *Store) Drain() []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	drained := make([]*Session, 0, len(st.sessions))
	for id, s := range st.sessions {
		delete(st.sessions, id)
		drained = append(drained, s)
	}
	return drained
}

// Len reports the number of registered sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
