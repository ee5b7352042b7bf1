// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// high-performance Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "plexus":
//
//	collector := vm.New()
//	session, _ := plexus.NewRoutedSession(bootstrap, connector, baseURL,
//	    plexus.WithMetrics(collector),
//	)
//
// # Custom Prefix
//
// Use WithPrefix to customize the metric name prefix:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//
// This produces metrics like:
//   - myapp_discovery_total
//   - myapp_dispatch_duration_seconds{role="LEADER"}
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// Or use WritePrometheus to write metrics to a custom writer:
//
//	collector.WritePrometheus(w)
//
// # Metrics Provided
//
// Topology discovery:
//   - {prefix}_discovery_total - Counter of discovery attempts
//   - {prefix}_discovery_errors_total - Counter of discovery failures
//   - {prefix}_discovery_duration_seconds - Histogram of discovery latencies
//   - {prefix}_topology_invalidated_total - Counter of watcher-forced refreshes
//   - {prefix}_pool_size{role} - Gauge of pool size per role
//
// Routed dispatch:
//   - {prefix}_dispatch_total{role} - Counter of dispatches per role
//   - {prefix}_dispatch_errors_total{role} - Counter of failed dispatches
//   - {prefix}_dispatch_duration_seconds{role} - Histogram of dispatch latencies
//
// Transactions:
//   - {prefix}_tx_opened_total - Counter of opened transactions
//   - {prefix}_tx_committed_total - Counter of committed transactions
//   - {prefix}_tx_rolled_back_total - Counter of rolled back transactions
//
// # Performance Notes
//
// This implementation pre-creates all metrics at initialization time
// using the NewXXX pattern (instead of GetOrCreateXXX) for optimal
// performance in hot paths, as recommended by the VictoriaMetrics documentation.
//
// The metrics are registered with a dedicated Set that is registered
// globally, allowing standard Prometheus scraping.
package vm
