package plexus

import "context"

// TopologyWatcher monitors external topology change signals.
//
// A watcher lets operators invalidate the cached routing table ahead of
// its TTL, e.g. before taking cluster members down for maintenance. The
// session refreshes the table on the next routed call after an update
// is received.
//
// Implementations include topology.Local (in-memory) and topology.NATS
// (NATS KV backed).
type TopologyWatcher interface {
	// Watch returns a channel that receives topology updates.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//
	// Returns:
	//   - <-chan TopologyUpdate: Channel of topology change signals
	Watch(ctx context.Context) <-chan TopologyUpdate
}

// TopologyInvalidator allows signaling topology changes.
//
// This interface is typically used by operations tools and tests to
// force an early routing table refresh. Implementations include
// topology.Local (in-memory).
type TopologyInvalidator interface {
	// Invalidate signals that the current routing table is stale.
	//
	// Parameters:
	//   - ctx: Context for cancellation/timeout
	//   - reason: Human-readable reason for the invalidation
	//
	// Returns:
	//   - error: nil on success, error if the operation fails
	Invalidate(ctx context.Context, reason string) error
}

// TopologyUpdate signals that the cached routing table should be
// discarded before its TTL expires.
type TopologyUpdate struct {
	// Generation is a monotonically increasing change counter.
	Generation uint64

	// Reason is a human-readable explanation for the invalidation.
	Reason string
}
