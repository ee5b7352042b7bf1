package types

import (
	"errors"
	"time"
)

// Role identifies the responsibility of a cluster member.
//
// The values match the role strings returned by the cluster's routing
// table discovery procedure.
type Role string

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

const (
	// RoleLeader marks a node that accepts write statements.
	RoleLeader Role = "LEADER"

	// RoleFollower marks a node that accepts only read statements.
	RoleFollower Role = "FOLLOWER"
)

// Statement is a single query to run against the cluster.
//
// A Statement is immutable once constructed and owned by the caller;
// plexus only reads it.
type Statement struct {
	// Text is the opaque query text. Plexus does not parse the query
	// language; routing decisions use substring keyword matching only.
	Text string

	// Parameters maps named parameters to their bound values.
	Parameters map[string]any
}

// Record is a single row of a statement result, keyed by field name.
type Record map[string]any

// Result holds the structured outcome of running one statement.
type Result struct {
	// Records are the rows returned by the statement, in server order.
	Records []Record
}

// RoutingTable is an immutable snapshot of cluster topology.
//
// A stale table is never mutated; it is replaced wholesale by the next
// successful discovery.
type RoutingTable struct {
	// Servers groups server addresses by role. Only RoleLeader and
	// RoleFollower entries are retained; other roles present in
	// discovery responses are dropped.
	Servers map[Role][]string

	// ExpiresAt is the absolute instant after which the table must be
	// refreshed before the next routed dispatch.
	ExpiresAt time.Time
}

// Expired reports whether the table must be refreshed at the given instant.
//
// A table expires at ExpiresAt exactly: Expired returns true when
// now >= ExpiresAt.
func (t *RoutingTable) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Count returns the number of servers known for the given role.
func (t *RoutingTable) Count(role Role) int {
	return len(t.Servers[role])
}

// Sentinel errors for common failure scenarios.
var (
	// ErrDiscoveryFailed indicates the routing table discovery call
	// failed: a transport error, an empty result, or a malformed
	// servers/ttl field. The previously cached table, if any, remains
	// usable and discovery is retried on the next routed call.
	ErrDiscoveryFailed = errors.New("plexus: routing discovery failed")

	// ErrNoAvailableRole indicates the last successful discovery
	// returned zero servers for the requested role, so no connection
	// can be selected for it.
	ErrNoAvailableRole = errors.New("plexus: no server available for role")

	// ErrResultCountMismatch indicates a connection returned a result
	// sequence whose length differs from the number of dispatched
	// statements. Results cannot be woven back into caller order.
	ErrResultCountMismatch = errors.New("plexus: result count does not match statement count")

	// ErrSessionClosed indicates an operation was attempted on a closed session.
	ErrSessionClosed = errors.New("plexus: session is closed")

	// ErrNilSession indicates that a nil bootstrap session was provided.
	ErrNilSession = errors.New("plexus: bootstrap session cannot be nil")

	// ErrNilConnector indicates that a nil connector was provided.
	ErrNilConnector = errors.New("plexus: connector cannot be nil")
)

// DiscoveryError describes a failed routing table discovery attempt.
//
// It wraps the underlying cause, if any, and always matches
// ErrDiscoveryFailed via errors.Is.
type DiscoveryError struct {
	// Reason describes what went wrong, e.g. "missing ttl field".
	Reason string

	// Cause is the underlying transport error, or nil for a malformed
	// response.
	Cause error
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	msg := "plexus: routing discovery failed: " + e.Reason
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap returns the wrapped errors for errors.Is/As compatibility.
func (e *DiscoveryError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDiscoveryFailed}
	}

	return []error{ErrDiscoveryFailed, e.Cause}
}

// NoRoleError indicates a selection was requested for a role with zero
// known servers.
//
// It always matches ErrNoAvailableRole via errors.Is.
type NoRoleError struct {
	// Role is the role that had no servers.
	Role Role
}

// Error implements the error interface.
func (e *NoRoleError) Error() string {
	return "plexus: no " + string(e.Role) + " server available"
}

// Unwrap returns the sentinel for errors.Is compatibility.
func (e *NoRoleError) Unwrap() error {
	return ErrNoAvailableRole
}

// Logger defines the structured logging interface used by plexus.
//
// The interface is compatible with zap.SugaredLogger and accepts
// alternating key-value pairs after the message.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, keysAndValues ...any)

	// Info logs an info-level message.
	Info(msg string, keysAndValues ...any)

	// Warn logs a warning-level message.
	Warn(msg string, keysAndValues ...any)

	// Error logs an error-level message.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a fatal-level message.
	Fatal(msg string, keysAndValues ...any)
}
