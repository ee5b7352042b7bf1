package topology

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/plexus"
)

// NATS monitors a NATS KV bucket for topology invalidation documents.
//
// It watches a configurable key and emits a TopologyUpdate whenever the
// stored InvalidateConfig's generation advances. This enables operations
// teams to force clients to re-discover cluster topology before the
// routing table TTL expires, e.g. ahead of planned maintenance.
//
// Watch() should be called once per instance. Subsequent calls return
// the same channel. The channel is closed when Close() is called or the
// context is cancelled.
type NATS struct {
	kv     jetstream.KeyValue
	config WatcherConfig

	// Last processed invalidation
	generation uint64
	seeded     bool
	reason     string
	mu         sync.RWMutex

	// Lifecycle
	updates      chan plexus.TopologyUpdate
	done         chan struct{}
	closed       bool
	watchStarted bool
	closeOnce    sync.Once
}

var _ plexus.TopologyWatcher = (*NATS)(nil)

// NewNATS creates a new NATS KV topology watcher.
//
// The watcher will begin monitoring the KV bucket for invalidation
// documents when Watch() is called.
//
// Parameters:
//   - kv: A NATS JetStream KeyValue store
//   - opts: Optional configuration options
//
// Returns:
//   - *NATS: A new watcher instance
//   - error: Error if kv is nil
//
// Example:
//
//	nc, _ := nats.Connect("nats://localhost:4222")
//	js, _ := jetstream.New(nc)
//	kv, _ := js.KeyValue(ctx, "plexus-config")
//
//	watcher, _ := topology.NewNATS(kv,
//	    topology.WithKey("routing.invalidate"),
//	    topology.WithPollInterval(10*time.Second),
//	)
func NewNATS(kv jetstream.KeyValue, opts ...WatcherOption) (*NATS, error) {
	if kv == nil {
		return nil, errors.New("plexus/topology: KeyValue store is nil")
	}

	config := DefaultWatcherConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &NATS{
		kv:      kv,
		config:  config,
		updates: make(chan plexus.TopologyUpdate, 10),
		done:    make(chan struct{}),
	}, nil
}

// Watch returns a channel that receives topology updates.
//
// The watcher spawns a background goroutine that monitors the NATS KV
// key. When the stored generation advances, it emits one
// TopologyUpdate. The document present when watching starts only seeds
// the baseline; it does not trigger an update.
//
// The channel is closed when Close() is called or the context is
// cancelled. Multiple calls to Watch return the same channel; only the
// first call's context controls the watch lifecycle.
//
// Parameters:
//   - ctx: Context for cancellation (only used on first call)
//
// Returns:
//   - <-chan plexus.TopologyUpdate: Channel of topology change signals
func (n *NATS) Watch(ctx context.Context) <-chan plexus.TopologyUpdate {
	n.mu.Lock()
	if n.watchStarted {
		n.mu.Unlock()

		return n.updates
	}
	n.watchStarted = true
	n.mu.Unlock()

	go n.watchLoop(ctx)

	return n.updates
}

// Close stops the watcher and releases resources.
//
// This method is safe to call multiple times.
func (n *NATS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}

	n.closed = true
	close(n.done)

	return nil
}

// Config returns the watcher configuration.
//
// This method is primarily useful for testing to verify configuration options.
//
// Returns:
//   - WatcherConfig: The current watcher configuration
func (n *NATS) Config() WatcherConfig {
	return n.config
}

// Generation returns the generation of the last processed invalidation.
//
// Returns:
//   - uint64: The last observed generation, 0 if none yet
func (n *NATS) Generation() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.generation
}

// Reason returns the reason of the last processed invalidation, if any.
//
// This returns the cached reason from the last processed KV entry.
// It does not perform a live KV fetch.
//
// Returns:
//   - string: The invalidation reason, or empty if none yet
func (n *NATS) Reason() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.reason
}

// watchLoop is the main watch loop that monitors the NATS KV key.
func (n *NATS) watchLoop(ctx context.Context) {
	defer n.closeOnce.Do(func() { close(n.updates) })

	// Initial fetch seeds the baseline generation.
	n.fetch(ctx)

	watcher, err := n.kv.Watch(ctx, n.config.Key)
	if err != nil {
		// Fall back to polling if watch fails
		n.pollLoop(ctx)
		return
	}
	defer func() { _ = watcher.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-n.done:
			return
		case entry, ok := <-watcher.Updates():
			if !ok {
				// Watcher channel closed, fall back to polling
				n.pollLoop(ctx)
				return
			}
			if entry == nil {
				// Initial nil entry, skip
				continue
			}
			n.processEntry(entry)
		}
	}
}

// pollLoop is a fallback polling loop when watch fails.
func (n *NATS) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(n.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-n.done:
			return
		case <-ticker.C:
			n.fetch(ctx)
		}
	}
}

// fetch reads the current KV value and processes it.
func (n *NATS) fetch(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, n.config.InitialFetchTimeout)
	defer cancel()

	entry, err := n.kv.Get(fetchCtx, n.config.Key)
	if err != nil {
		// Key doesn't exist or error - nothing to invalidate
		return
	}

	n.processEntry(entry)
}

// processEntry parses a KV entry and emits an update when the
// generation advances.
func (n *NATS) processEntry(entry jetstream.KeyValueEntry) {
	// Deleting the key does not invalidate anything.
	if entry.Operation() == jetstream.KeyValueDelete || entry.Operation() == jetstream.KeyValuePurge {
		return
	}

	var config InvalidateConfig
	if err := json.Unmarshal(entry.Value(), &config); err != nil {
		// Invalid JSON - ignore
		return
	}

	n.mu.Lock()

	// The first observed document only seeds the baseline: a stale
	// invalidation from before this watcher started must not force a
	// refresh.
	if !n.seeded {
		n.seeded = true
		n.generation = config.Generation
		n.reason = config.Reason
		n.mu.Unlock()

		return
	}

	if config.Generation <= n.generation {
		n.mu.Unlock()

		return
	}

	n.generation = config.Generation
	n.reason = config.Reason
	n.mu.Unlock()

	// Emit update (non-blocking)
	select {
	case n.updates <- plexus.TopologyUpdate{
		Generation: config.Generation,
		Reason:     config.Reason,
	}:
	default:
		// Channel full, skip update (a pending update already forces a refresh)
	}
}
