package vm

import (
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	"github.com/arloliu/plexus/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "plexus"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// All metrics are pre-created at initialization time for optimal performance.
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Discovery metrics
	discoveryTotal      *metrics.Counter
	discoveryErrors     *metrics.Counter
	discoveryDuration   *metrics.Histogram
	topologyInvalidated *metrics.Counter
	poolSizeLeader      atomic.Int64
	poolSizeFollower    atomic.Int64

	// Dispatch metrics
	dispatchTotalLeader      *metrics.Counter
	dispatchTotalFollower    *metrics.Counter
	dispatchErrorsLeader     *metrics.Counter
	dispatchErrorsFollower   *metrics.Counter
	dispatchDurationLeader   *metrics.Histogram
	dispatchDurationFollower *metrics.Histogram

	// Transaction metrics
	txOpened     *metrics.Counter
	txCommitted  *metrics.Counter
	txRolledBack *metrics.Counter
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally.
// All metrics are pre-created at initialization for optimal performance.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	session, _ := plexus.NewRoutedSession(bootstrap, connector, baseURL,
//	    plexus.WithMetrics(collector),
//	)
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "plexus",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates all metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix
	leader := types.RoleLeader.String()
	follower := types.RoleFollower.String()

	// Discovery metrics
	c.discoveryTotal = c.set.NewCounter(fmt.Sprintf(`%s_discovery_total`, p))
	c.discoveryErrors = c.set.NewCounter(fmt.Sprintf(`%s_discovery_errors_total`, p))
	c.discoveryDuration = c.set.NewHistogram(fmt.Sprintf(`%s_discovery_duration_seconds`, p))
	c.topologyInvalidated = c.set.NewCounter(fmt.Sprintf(`%s_topology_invalidated_total`, p))
	c.set.NewGauge(fmt.Sprintf(`%s_pool_size{role="%s"}`, p, leader), func() float64 {
		return float64(c.poolSizeLeader.Load())
	})
	c.set.NewGauge(fmt.Sprintf(`%s_pool_size{role="%s"}`, p, follower), func() float64 {
		return float64(c.poolSizeFollower.Load())
	})

	// Dispatch metrics
	c.dispatchTotalLeader = c.set.NewCounter(fmt.Sprintf(`%s_dispatch_total{role="%s"}`, p, leader))
	c.dispatchTotalFollower = c.set.NewCounter(fmt.Sprintf(`%s_dispatch_total{role="%s"}`, p, follower))
	c.dispatchErrorsLeader = c.set.NewCounter(fmt.Sprintf(`%s_dispatch_errors_total{role="%s"}`, p, leader))
	c.dispatchErrorsFollower = c.set.NewCounter(fmt.Sprintf(`%s_dispatch_errors_total{role="%s"}`, p, follower))
	c.dispatchDurationLeader = c.set.NewHistogram(fmt.Sprintf(`%s_dispatch_duration_seconds{role="%s"}`, p, leader))
	c.dispatchDurationFollower = c.set.NewHistogram(fmt.Sprintf(`%s_dispatch_duration_seconds{role="%s"}`, p, follower))

	// Transaction metrics
	c.txOpened = c.set.NewCounter(fmt.Sprintf(`%s_tx_opened_total`, p))
	c.txCommitted = c.set.NewCounter(fmt.Sprintf(`%s_tx_committed_total`, p))
	c.txRolledBack = c.set.NewCounter(fmt.Sprintf(`%s_tx_rolled_back_total`, p))
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// ----------------------
// Topology Discovery
// ----------------------

// IncDiscoveryTotal increments the discovery attempt counter.
func (c *Collector) IncDiscoveryTotal() {
	c.discoveryTotal.Inc()
}

// IncDiscoveryError increments the discovery failure counter.
func (c *Collector) IncDiscoveryError() {
	c.discoveryErrors.Inc()
}

// ObserveDiscoveryDuration records a discovery duration in seconds.
func (c *Collector) ObserveDiscoveryDuration(seconds float64) {
	c.discoveryDuration.Update(seconds)
}

// SetPoolSize sets the connection pool size gauge for a role.
func (c *Collector) SetPoolSize(role types.Role, size int) {
	if role == types.RoleLeader {
		c.poolSizeLeader.Store(int64(size))
	} else {
		c.poolSizeFollower.Store(int64(size))
	}
}

// IncTopologyInvalidated increments the topology invalidation counter.
func (c *Collector) IncTopologyInvalidated() {
	c.topologyInvalidated.Inc()
}

// ----------------------
// Routed Dispatch
// ----------------------

// IncDispatchTotal increments the dispatch counter for a role.
func (c *Collector) IncDispatchTotal(role types.Role) {
	if role == types.RoleLeader {
		c.dispatchTotalLeader.Inc()
	} else {
		c.dispatchTotalFollower.Inc()
	}
}

// IncDispatchError increments the dispatch error counter for a role.
func (c *Collector) IncDispatchError(role types.Role) {
	if role == types.RoleLeader {
		c.dispatchErrorsLeader.Inc()
	} else {
		c.dispatchErrorsFollower.Inc()
	}
}

// ObserveDispatchDuration records a dispatch duration in seconds.
func (c *Collector) ObserveDispatchDuration(role types.Role, seconds float64) {
	if role == types.RoleLeader {
		c.dispatchDurationLeader.Update(seconds)
	} else {
		c.dispatchDurationFollower.Update(seconds)
	}
}

// ----------------------
// Transactions
// ----------------------

// IncTxOpened increments the counter of opened transactions.
func (c *Collector) IncTxOpened() {
	c.txOpened.Inc()
}

// IncTxCommitted increments the counter of committed transactions.
func (c *Collector) IncTxCommitted() {
	c.txCommitted.Inc()
}

// IncTxRolledBack increments the counter of rolled back transactions.
func (c *Collector) IncTxRolledBack() {
	c.txRolledBack.Inc()
}
