package plexus

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/arloliu/plexus/internal/logging"
	"github.com/arloliu/plexus/internal/metrics"
	"github.com/arloliu/plexus/types"
)

// IndexPicker selects a pool index uniformly at random from [0, n).
//
// The default picker uses crypto/rand. Tests inject a deterministic
// picker to pin alias selection.
type IndexPicker func(n int) int

// DefaultIndexPicker returns a uniformly random index in [0, n).
//
// Uniform random selection is chosen over round-robin for statelessness:
// there is no shared counter to protect across concurrent callers.
func DefaultIndexPicker(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}

	return int(v.Int64())
}

// Clock returns the current time. Tests inject a fake clock to drive
// routing table expiry deterministically.
type Clock func() time.Time

// ClientConfig holds configuration for routed sessions.
type ClientConfig struct {
	Database        string
	TopologyWatcher TopologyWatcher
	IndexPicker     IndexPicker
	Clock           Clock
	Metrics         types.MetricsCollector
	Logger          types.Logger
}

// DefaultConfig returns a ClientConfig with sensible defaults.
//
// Defaults:
//   - Database: "graph"
//   - IndexPicker: DefaultIndexPicker (crypto/rand uniform)
//   - Clock: time.Now
//   - Metrics/Logger: no-op implementations
//
// Returns:
//   - *ClientConfig: Configuration with default settings
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Database:    "graph",
		IndexPicker: DefaultIndexPicker,
		Clock:       time.Now,
		Metrics:     metrics.NewNopMetrics(),
		Logger:      logging.NewNopLogger(),
	}
}

// Option configures a ClientConfig.
type Option func(*ClientConfig)

// WithDatabase sets the target database name used in discovery calls.
//
// Parameters:
//   - name: The database name passed to the routing table procedure
//
// Returns:
//   - Option: Configuration option
func WithDatabase(name string) Option {
	return func(c *ClientConfig) {
		c.Database = name
	}
}

// WithTopologyWatcher sets the topology watcher for early invalidation.
//
// When the watcher emits an update, the cached routing table is
// refreshed on the next routed call regardless of its TTL.
//
// Parameters:
//   - watcher: The topology watcher implementation
//
// Returns:
//   - Option: Configuration option
func WithTopologyWatcher(watcher TopologyWatcher) Option {
	return func(c *ClientConfig) {
		c.TopologyWatcher = watcher
	}
}

// WithIndexPicker sets the random index picker used for connection selection.
//
// Parameters:
//   - picker: Function returning a uniform index in [0, n)
//
// Returns:
//   - Option: Configuration option
func WithIndexPicker(picker IndexPicker) Option {
	return func(c *ClientConfig) {
		c.IndexPicker = picker
	}
}

// WithClock sets the time source used for routing table expiry checks.
//
// Parameters:
//   - clock: Function returning the current time
//
// Returns:
//   - Option: Configuration option
func WithClock(clock Clock) Option {
	return func(c *ClientConfig) {
		c.Clock = clock
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	import vmmetrics "github.com/arloliu/plexus/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	session, _ := plexus.NewRoutedSession(bootstrap, connector, baseURL,
//	    plexus.WithMetrics(collector),
//	)
func WithMetrics(collector types.MetricsCollector) Option {
	return func(c *ClientConfig) {
		c.Metrics = collector
	}
}

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// The logger interface is compatible with zap.SugaredLogger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	logger, _ := zap.NewProduction()
//	session, _ := plexus.NewRoutedSession(bootstrap, connector, baseURL,
//	    plexus.WithLogger(logger.Sugar()),
//	)
func WithLogger(logger types.Logger) Option {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}
