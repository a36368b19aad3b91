package service

import (
	"context"
	"sync"
	"time"

	"github.com/gridarena/server/pkg/arena"
)

// DefaultLockTimeout bounds how long a request waits for a match lock before
// failing with busy.
const DefaultLockTimeout = 5 * time.Second

// Registry serializes access per match. Requests for the same match queue on
// a buffered channel; requests for different matches run in parallel. This is
// the only place a lock is held across I/O.
type Registry struct {
	mu      sync.Mutex
	locks   map[int64]chan struct{}
	timeout time.Duration
}

// NewRegistry creates a Registry with the given lock-wait timeout. A zero
// timeout uses DefaultLockTimeout.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &Registry{locks: make(map[int64]chan struct{}), timeout: timeout}
}

func (r *Registry) lock(matchID int64) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.locks[matchID]
	if !ok {
		ch = make(chan struct{}, 1)
		r.locks[matchID] = ch
	}
	return ch
}

// Acquire takes the match lock, waiting up to the configured timeout. It
// returns a release func on success and a busy refusal when the wait expires.
func (r *Registry) Acquire(ctx context.Context, matchID int64) (func(), error) {
	ch := r.lock(matchID)
	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, &arena.Refusal{Kind: arena.KindBusy, Msg: "match is busy, try again"}
	case <-ctx.Done():
		return nil, &arena.Refusal{Kind: arena.KindBusy, Msg: "request cancelled while waiting for the match"}
	}
}
