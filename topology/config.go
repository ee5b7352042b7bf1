package topology

import "time"

// InvalidateConfig is the invalidation document stored in NATS KV.
//
// This is the JSON structure that operations teams PUT to the KV store
// to force clients to re-discover cluster topology.
type InvalidateConfig struct {
	// Generation is a monotonically increasing change counter. Clients
	// refresh whenever they observe a generation newer than the one
	// they last processed.
	Generation uint64 `json:"generation"`

	// Reason is a human-readable explanation for the invalidation.
	// Example: "OS Patching", "Leader election", "Scaling out"
	Reason string `json:"reason,omitempty"`
}

// WatcherConfig holds configuration for topology watchers.
type WatcherConfig struct {
	// Key is the NATS KV key to watch for invalidation documents.
	// Default: "plexus.topology.invalidate"
	Key string

	// PollInterval is the fallback polling interval if watch fails.
	// Default: 5 seconds
	PollInterval time.Duration

	// InitialFetchTimeout is the timeout for the initial KV fetch.
	// Default: 10 seconds
	InitialFetchTimeout time.Duration
}

// DefaultWatcherConfig returns a WatcherConfig with sensible defaults.
//
// Returns:
//   - WatcherConfig: Default configuration
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Key:                 "plexus.topology.invalidate",
		PollInterval:        5 * time.Second,
		InitialFetchTimeout: 10 * time.Second,
	}
}

// WatcherOption configures a topology watcher.
type WatcherOption func(*WatcherConfig)

// WithKey sets the NATS KV key to watch.
//
// Parameters:
//   - key: The key name (e.g., "routing.invalidate")
//
// Returns:
//   - WatcherOption: Configuration option
func WithKey(key string) WatcherOption {
	return func(c *WatcherConfig) {
		c.Key = key
	}
}

// WithPollInterval sets the fallback polling interval.
//
// If the NATS watch fails or disconnects, the watcher falls back to
// polling at this interval.
//
// Parameters:
//   - d: Polling interval duration
//
// Returns:
//   - WatcherOption: Configuration option
func WithPollInterval(d time.Duration) WatcherOption {
	return func(c *WatcherConfig) {
		c.PollInterval = d
	}
}

// WithInitialFetchTimeout sets the timeout for the initial KV fetch.
//
// Parameters:
//   - d: Timeout duration
//
// Returns:
//   - WatcherOption: Configuration option
func WithInitialFetchTimeout(d time.Duration) WatcherOption {
	return func(c *WatcherConfig) {
		c.InitialFetchTimeout = d
	}
}
