// Package metrics provides internal metrics utilities for Plexus.
package metrics

import "github.com/arloliu/plexus/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is configured,
// avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Topology Discovery
// ----------------------

// IncDiscoveryTotal discards the metric.
func (m *NopMetrics) IncDiscoveryTotal() {}

// IncDiscoveryError discards the metric.
func (m *NopMetrics) IncDiscoveryError() {}

// ObserveDiscoveryDuration discards the metric.
func (m *NopMetrics) ObserveDiscoveryDuration(_ float64) {}

// SetPoolSize discards the metric.
func (m *NopMetrics) SetPoolSize(_ types.Role, _ int) {}

// IncTopologyInvalidated discards the metric.
func (m *NopMetrics) IncTopologyInvalidated() {}

// ----------------------
// Routed Dispatch
// ----------------------

// IncDispatchTotal discards the metric.
func (m *NopMetrics) IncDispatchTotal(_ types.Role) {}

// IncDispatchError discards the metric.
func (m *NopMetrics) IncDispatchError(_ types.Role) {}

// ObserveDispatchDuration discards the metric.
func (m *NopMetrics) ObserveDispatchDuration(_ types.Role, _ float64) {}

// ----------------------
// Transactions
// ----------------------

// IncTxOpened discards the metric.
func (m *NopMetrics) IncTxOpened() {}

// IncTxCommitted discards the metric.
func (m *NopMetrics) IncTxCommitted() {}

// IncTxRolledBack discards the metric.
func (m *NopMetrics) IncTxRolledBack() {}
