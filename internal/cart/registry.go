package cart

import (
	"context"
	"fmt"
	"sync"

	"bloom-shop/internal/notify"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMaxSessions bounds the number of carts held in memory
const DefaultMaxSessions = 10000

type session struct {
	mu   sync.Mutex
	cart *Cart
}

// Registry keeps one cart per session. The least recently used session is
// evicted once the registry is full.
type Registry struct {
	mu       sync.Mutex
	sessions *lru.Cache
	notifier notify.Notifier
}

// NewRegistry creates a registry that holds at most maxSessions carts. Every
// cart reports to notifier in addition to the request's own notifier.
func NewRegistry(maxSessions int, notifier notify.Notifier) (*Registry, error) {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	cache, err := lru.New(maxSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &Registry{sessions: cache, notifier: notifier}, nil
}

// Do runs fn with exclusive access to the cart of sessionID, creating an empty
// cart on first use. Notifications raised inside fn go to the registry's
// notifier and to the notifier carried by ctx.
func (r *Registry) Do(ctx context.Context, sessionID string, fn func(c *Cart)) {
	s := r.session(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.SetNotifier(notify.Multi(r.notifier, notify.FromContext(ctx)))
	defer s.cart.SetNotifier(r.notifier)

	fn(s.cart)
}

// Snapshot returns the state of the session's cart
func (r *Registry) Snapshot(ctx context.Context, sessionID string) State {
	var state State
	r.Do(ctx, sessionID, func(c *Cart) {
		state = c.Snapshot()
	})
	return state
}

// Drop forgets the cart of sessionID
func (r *Registry) Drop(sessionID string) {
	r.sessions.Remove(sessionID)
}

// Len is the number of carts currently held
func (r *Registry) Len() int {
	return r.sessions.Len()
}

func (r *Registry) session(sessionID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.sessions.Get(sessionID); ok {
		return v.(*session)
	}

	s := &session{cart: New(r.notifier)}
	r.sessions.Add(sessionID, s)
	return s
}
