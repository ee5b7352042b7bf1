// Package types provides shared types and error definitions for the plexus library.
//
// This is a leaf package with zero plexus imports to prevent import cycles.
// All packages in plexus can safely import this package.
//
// # Types
//
// Role identifies the responsibility of a cluster member as reported by
// routing table discovery:
//
//	const (
//	    RoleLeader   Role = "LEADER"
//	    RoleFollower Role = "FOLLOWER"
//	)
//
// Statement, Record and Result describe the query and result shapes
// exchanged with the session collaborator. RoutingTable is the
// timestamped topology snapshot cached between discoveries.
//
// # Errors
//
// Sentinel errors (ErrDiscoveryFailed, ErrNoAvailableRole, ...) support
// errors.Is checks. Structured errors (DiscoveryError, NoRoleError)
// carry context and unwrap to their sentinel.
package types
