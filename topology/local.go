package topology

import (
	"context"
	"sync"

	"github.com/arloliu/plexus"
)

// Local provides an in-memory topology watcher and invalidator for testing.
//
// Unlike NATS, this implementation allows programmatic control of
// invalidation, making it ideal for unit tests and demos. It implements
// both TopologyWatcher (for observing) and TopologyInvalidator (for
// signaling).
type Local struct {
	generation uint64
	mu         sync.Mutex

	updates       chan plexus.TopologyUpdate
	done          chan struct{}
	closed        bool
	updatesClosed bool
}

var (
	_ plexus.TopologyWatcher     = (*Local)(nil)
	_ plexus.TopologyInvalidator = (*Local)(nil)
)

// NewLocal creates a new in-memory topology watcher/invalidator.
//
// Returns:
//   - *Local: A new local topology instance
func NewLocal() *Local {
	return &Local{
		updates: make(chan plexus.TopologyUpdate, 10),
		done:    make(chan struct{}),
	}
}

// Watch returns a channel that receives topology updates.
//
// Updates are emitted when Invalidate is called. The channel is closed
// when Close() is called or the context is cancelled.
//
// Multiple calls to Watch return the same channel; only the first call's
// context controls the watch lifecycle.
//
// Parameters:
//   - ctx: Context for cancellation (only used on first call)
//
// Returns:
//   - <-chan plexus.TopologyUpdate: Channel of topology change signals
func (l *Local) Watch(ctx context.Context) <-chan plexus.TopologyUpdate {
	go l.waitForClose(ctx)
	return l.updates
}

// Invalidate signals that the current routing table is stale.
//
// Each call bumps the generation counter and emits one update.
//
// Parameters:
//   - ctx: Context for cancellation. For the local in-memory
//     implementation, this parameter is accepted for interface
//     compliance but not used.
//   - reason: Human-readable reason for the invalidation
//
// Returns:
//   - error: Always nil for local implementation
func (l *Local) Invalidate(_ context.Context, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.updatesClosed {
		return nil
	}

	l.generation++

	// Emit update (non-blocking)
	select {
	case l.updates <- plexus.TopologyUpdate{
		Generation: l.generation,
		Reason:     reason,
	}:
	default:
		// Channel full, skip update
	}

	return nil
}

// Generation returns the number of invalidations signaled so far.
//
// Returns:
//   - uint64: The current generation counter
func (l *Local) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.generation
}

// Close stops the watcher and releases resources.
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	close(l.done)

	return nil
}

// waitForClose waits for context cancellation or close signal.
func (l *Local) waitForClose(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-l.done:
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.updatesClosed {
		l.updatesClosed = true
		close(l.updates)
	}
}
