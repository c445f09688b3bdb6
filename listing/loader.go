package listing

import (
	"context"
	"sync"
	"time"
)

// Loader orders the fetches of one view. Every fetch takes a generation
// number and only the newest generation issued may commit, so a slow earlier
// request never counts as the view's current result once a later request has
// started. Each caller still gets back exactly what its own fetch returned.
type Loader[T any] struct {
	mu        sync.Mutex
	issued    uint64
	committed uint64
}

// Begin issues a new generation.
func (l *Loader[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	return l.issued
}

// Commit marks gen as the view's current result if it is still the newest
// generation issued. It reports whether gen was accepted.
func (l *Loader[T]) Commit(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.issued || gen <= l.committed {
		return false
	}
	l.committed = gen
	return true
}

// Committed returns the generation of the view's current result, 0 if none.
func (l *Loader[T]) Committed() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.committed
}

// Load runs fetch under a fresh generation and returns its result. stale is
// true when a newer Load started while this one was in flight.
func (l *Loader[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) (value T, stale bool, err error) {
	gen := l.Begin()
	value, err = fetch(ctx)
	if err != nil {
		return value, false, err
	}
	return value, !l.Commit(gen), nil
}

type sessionLoaders[T any] struct {
	views    map[string]*Loader[T]
	lastUsed time.Time
}

// Registry hands out one Loader per session and view. Sessions unused for
// longer than idle are swept on access.
type Registry[T any] struct {
	mu        sync.Mutex
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	sessions  map[string]*sessionLoaders[T]
}

// NewRegistry returns a registry that drops sessions idle for longer than
// idle. Zero disables sweeping.
func NewRegistry[T any](idle time.Duration) *Registry[T] {
	return &Registry[T]{idle: idle, now: time.Now, sessions: make(map[string]*sessionLoaders[T])}
}

func (r *Registry[T]) For(sessionID, view string) *Loader[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	s, ok := r.sessions[sessionID]
	if !ok {
		s = &sessionLoaders[T]{views: make(map[string]*Loader[T])}
		r.sessions[sessionID] = s
	}
	s.lastUsed = now

	l, ok := s.views[view]
	if !ok {
		l = &Loader[T]{}
		s.views[view] = l
	}
	return l
}

func (r *Registry[T]) sweep(now time.Time) {
	if r.idle <= 0 || now.Sub(r.lastSweep) < r.idle/2 {
		return
	}
	r.lastSweep = now
	for id, s := range r.sessions {
		if now.Sub(s.lastUsed) > r.idle {
			delete(r.sessions, id)
		}
	}
}

// Forget drops every loader of a session, e.g. on logout.
func (r *Registry[T]) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len is the number of sessions currently tracked.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
