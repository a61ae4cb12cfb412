package newton

import (
	"context"
	"sync"
)

// Bridge hands snapshots from the event loop to a Sink running elsewhere.
// It holds at most one pending snapshot: a newer Request replaces an older
// one that has not been pushed yet.
type Bridge struct {
	mu      sync.Mutex
	latest  Uniforms
	pending bool

	notify chan struct{}
}

func NewBridge() *Bridge {
	return &Bridge{notify: make(chan struct{}, 1)}
}

// Request schedules u to be pushed. It never blocks.
func (b *Bridge) Request(u Uniforms) {
	b.mu.Lock()
	b.latest = u
	b.pending = true
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Pending reports whether a snapshot is waiting to be pushed.
func (b *Bridge) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

func (b *Bridge) take() (Uniforms, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.pending {
		return Uniforms{}, false
	}
	b.pending = false
	return b.latest, true
}

// Run pushes the latest snapshot to sink every time one is requested, until
// ctx is done or sink fails.
func (b *Bridge) Run(ctx context.Context, sink Sink) error {
	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-b.notify:
		}
		u, ok := b.take()
		if !ok {
			continue
		}
		if err := sink.Push(ctx, u); err != nil {
			return err
		}
	}
}
