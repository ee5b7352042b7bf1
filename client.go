package plexus

import "github.com/arloliu/plexus/types"

// Type aliases for convenience - re-export from types package.
type (
	Role             = types.Role
	Statement        = types.Statement
	Record           = types.Record
	Result           = types.Result
	RoutingTable     = types.RoutingTable
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export role constants for convenience.
const (
	RoleLeader   = types.RoleLeader
	RoleFollower = types.RoleFollower
)
