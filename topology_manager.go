package plexus

import (
	"context"
	"time"

	"github.com/arloliu/plexus/types"
)

// discoveryStatement is the bootstrap query used to fetch the current
// routing table from any reachable cluster member.
const discoveryStatement = "CALL dbms.cluster.routing.getRoutingTable($context, $database)"

// topologyState is an immutable snapshot pairing a routing table with
// the connection pool built from it. The table and pool always come
// from the same discovery response; the whole state is replaced, never
// patched, on refresh.
type topologyState struct {
	table *types.RoutingTable
	pool  map[string]Session
}

// ensureFresh guarantees a valid, unexpired routing table and matching
// connection pool exist, refreshing both when the table is missing,
// expired, or invalidated by the topology watcher.
//
// The returned state is the snapshot the caller must dispatch against;
// a concurrent refresh never swaps a pool out from under a call that
// captured its state here.
func (s *RoutedSession) ensureFresh(ctx context.Context) (*topologyState, error) {
	if st := s.state.Load(); st != nil && !st.table.Expired(s.config.Clock()) && !s.invalidated.Load() {
		return st, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another caller may have refreshed while this one waited for the lock.
	if st := s.state.Load(); st != nil && !st.table.Expired(s.config.Clock()) && !s.invalidated.Load() {
		return st, nil
	}

	st, err := s.refresh(ctx)
	if err != nil {
		// The previous state, if any, stays published; discovery is
		// retried on the next routed call.
		return nil, err
	}

	s.state.Store(st)
	s.invalidated.Store(false)

	return st, nil
}

// refresh performs one discovery round trip and builds the replacement
// state fully off to the side. The caller publishes it under refreshMu.
func (s *RoutedSession) refresh(ctx context.Context) (*topologyState, error) {
	start := time.Now()
	s.config.Metrics.IncDiscoveryTotal()

	results, err := s.bootstrap.Run(ctx, []types.Statement{{
		Text: discoveryStatement,
		Parameters: map[string]any{
			"context":  map[string]any{},
			"database": s.config.Database,
		},
	}})

	s.config.Metrics.ObserveDiscoveryDuration(time.Since(start).Seconds())

	if err != nil {
		s.config.Metrics.IncDiscoveryError()
		s.config.Logger.Error("routing table discovery failed", "error", err.Error())

		return nil, &types.DiscoveryError{Reason: "discovery call failed", Cause: err}
	}

	table, derr := parseRoutingTable(results, s.config.Clock)
	if derr != nil {
		s.config.Metrics.IncDiscoveryError()
		s.config.Logger.Error("routing table discovery returned malformed response", "error", derr.Error())

		return nil, derr
	}

	pool, err := s.buildPool(ctx, table)
	if err != nil {
		s.config.Metrics.IncDiscoveryError()

		return nil, err
	}

	s.config.Metrics.SetPoolSize(types.RoleLeader, table.Count(types.RoleLeader))
	s.config.Metrics.SetPoolSize(types.RoleFollower, table.Count(types.RoleFollower))
	s.config.Logger.Info("routing table refreshed",
		"leaders", table.Count(types.RoleLeader),
		"followers", table.Count(types.RoleFollower),
		"expiresAt", table.ExpiresAt,
	)

	return &topologyState{table: table, pool: pool}, nil
}

// buildPool reconstructs the connection pool from scratch for the given
// table. Every connection is a leaf: routing is disabled so a pooled
// connection never performs its own topology resolution.
//
// Connection establishment errors propagate unchanged; the refresh
// fails as a whole and the previous pool stays published. Superseded
// pool connections are discarded, not closed; reclaiming them is the
// connector's responsibility.
func (s *RoutedSession) buildPool(ctx context.Context, table *types.RoutingTable) (map[string]Session, error) {
	pool := make(map[string]Session, table.Count(types.RoleLeader)+table.Count(types.RoleFollower))

	for i, address := range table.Servers[types.RoleLeader] {
		if err := s.connectInto(ctx, pool, leaderAlias(i), address); err != nil {
			return nil, err
		}
	}
	for i, address := range table.Servers[types.RoleFollower] {
		if err := s.connectInto(ctx, pool, followerAlias(i), address); err != nil {
			return nil, err
		}
	}

	return pool, nil
}

// connectInto rebuilds the full connection URL for a discovered address
// and registers the resulting session under the given alias.
func (s *RoutedSession) connectInto(ctx context.Context, pool map[string]Session, alias, address string) error {
	rawURL, err := rebuildURL(s.baseURL, address)
	if err != nil {
		return &types.DiscoveryError{Reason: "invalid server address " + address, Cause: err}
	}

	sess, err := s.connector.Connect(ctx, rawURL, ConnectConfig{
		Alias:          alias,
		DisableRouting: true,
	})
	if err != nil {
		return err
	}

	pool[alias] = sess

	return nil
}

// parseRoutingTable validates the discovery response and builds an
// immutable routing table from it.
//
// The first record must expose a "servers" field (sequence of
// {addresses, role}) and a "ttl" field (integer seconds). Roles other
// than LEADER and FOLLOWER are dropped.
func parseRoutingTable(results []types.Result, clock Clock) (*types.RoutingTable, *types.DiscoveryError) {
	if len(results) == 0 || len(results[0].Records) == 0 {
		return nil, &types.DiscoveryError{Reason: "empty discovery result"}
	}

	record := results[0].Records[0]

	ttl, ok := asSeconds(record["ttl"])
	if !ok {
		return nil, &types.DiscoveryError{Reason: "missing or malformed ttl field"}
	}

	rawServers, ok := asSlice(record["servers"])
	if !ok {
		return nil, &types.DiscoveryError{Reason: "missing or malformed servers field"}
	}

	servers := map[types.Role][]string{}
	for _, raw := range rawServers {
		entry, ok := asRecord(raw)
		if !ok {
			return nil, &types.DiscoveryError{Reason: "malformed servers entry"}
		}

		role, ok := entry["role"].(string)
		if !ok {
			return nil, &types.DiscoveryError{Reason: "servers entry missing role"}
		}

		addresses, ok := asStringSlice(entry["addresses"])
		if !ok {
			return nil, &types.DiscoveryError{Reason: "servers entry missing addresses"}
		}

		switch types.Role(role) {
		case types.RoleLeader, types.RoleFollower:
			servers[types.Role(role)] = append(servers[types.Role(role)], addresses...)
		default:
			// Read replicas and other roles are not routed to.
		}
	}

	return &types.RoutingTable{
		Servers:   servers,
		ExpiresAt: clock().Add(time.Duration(ttl) * time.Second),
	}, nil
}

// asSeconds coerces the numeric types a transport may decode ttl into.
func asSeconds(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// asSlice coerces the sequence shapes a transport may decode servers into.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []types.Record:
		out := make([]any, len(s))
		for i, r := range s {
			out[i] = r
		}

		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, r := range s {
			out[i] = r
		}

		return out, true
	default:
		return nil, false
	}
}

// asRecord coerces a single servers entry to a record.
func asRecord(v any) (types.Record, bool) {
	switch r := v.(type) {
	case types.Record:
		return r, true
	case map[string]any:
		return types.Record(r), true
	default:
		return nil, false
	}
}

// asStringSlice coerces an addresses field to a string slice.
func asStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, len(s))
		for i, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = str
		}

		return out, true
	default:
		return nil, false
	}
}
