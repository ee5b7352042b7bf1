package types

// MetricsCollector defines methods for collecting operational metrics.
//
// Role-scoped methods accept a Role parameter for labeling.
// Implementations should be thread-safe as methods may be called concurrently.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/plexus/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	session, _ := plexus.NewRoutedSession(bootstrap, connector, baseURL,
//	    plexus.WithMetrics(collector),
//	)
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Topology Discovery
	// ----------------------

	// IncDiscoveryTotal increments the discovery attempt counter.
	IncDiscoveryTotal()

	// IncDiscoveryError increments the discovery failure counter.
	IncDiscoveryError()

	// ObserveDiscoveryDuration records a discovery duration in seconds.
	ObserveDiscoveryDuration(seconds float64)

	// SetPoolSize sets the connection pool size gauge for a role.
	// Updated after every successful routing table refresh.
	SetPoolSize(role Role, size int)

	// IncTopologyInvalidated increments the counter when a topology
	// watcher forces an early routing table refresh.
	IncTopologyInvalidated()

	// ----------------------
	// Routed Dispatch
	// ----------------------

	// IncDispatchTotal increments the dispatch counter for a role.
	// One dispatch covers the whole read or write set of a Run call.
	IncDispatchTotal(role Role)

	// IncDispatchError increments the dispatch error counter for a role.
	IncDispatchError(role Role)

	// ObserveDispatchDuration records a dispatch duration in seconds.
	ObserveDispatchDuration(role Role, seconds float64)

	// ----------------------
	// Transactions
	// ----------------------

	// IncTxOpened increments the counter of opened transactions.
	IncTxOpened()

	// IncTxCommitted increments the counter of committed transactions.
	IncTxCommitted()

	// IncTxRolledBack increments the counter of rolled back transactions.
	IncTxRolledBack()
}
