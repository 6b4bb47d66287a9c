package adapter

import (
	"context"
	"sync"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/pubsub/port"
)

// LocalRelay is an in-process bus. A single api node uses it with RELAY_BACKEND=none;
// tests share one instance between several hubs to simulate a cluster.
type LocalRelay struct {
	mu   sync.RWMutex
	subs map[int]func(port.Envelope)
	next int
}

func NewLocalRelay() *LocalRelay {
	return &LocalRelay{subs: make(map[int]func(port.Envelope))}
}

var _ port.Relay = (*LocalRelay)(nil)

func (r *LocalRelay) Publish(_ context.Context, env port.Envelope) error {
	r.mu.RLock()
	fns := make([]func(port.Envelope), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()
	for _, fn := range fns {
		fn(env)
	}
	return nil
}

func (r *LocalRelay) Subscribe(ctx context.Context, fn func(port.Envelope)) error {
	r.mu.Lock()
	id := r.next
	r.next++
	r.subs[id] = fn
	r.mu.Unlock()

	<-ctx.Done()

	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
	return nil
}

// Subscribers returns the number of active subscriptions.
func (r *LocalRelay) Subscribers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

func (r *LocalRelay) Close() error { return nil }
