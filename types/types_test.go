package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleString(t *testing.T) {
	assert.Equal(t, "LEADER", RoleLeader.String())
	assert.Equal(t, "FOLLOWER", RoleFollower.String())
}

func TestRoutingTableExpired(t *testing.T) {
	now := time.Now()
	table := &RoutingTable{ExpiresAt: now}

	assert.False(t, table.Expired(now.Add(-time.Nanosecond)))
	assert.True(t, table.Expired(now))
	assert.True(t, table.Expired(now.Add(time.Hour)))
}

func TestRoutingTableCount(t *testing.T) {
	table := &RoutingTable{Servers: map[Role][]string{
		RoleLeader: {"a:7687", "b:7687"},
	}}

	assert.Equal(t, 2, table.Count(RoleLeader))
	assert.Equal(t, 0, table.Count(RoleFollower))
}

func TestDiscoveryError(t *testing.T) {
	cause := errors.New("connection refused")

	err := &DiscoveryError{Reason: "discovery call failed", Cause: cause}
	require.ErrorIs(t, err, ErrDiscoveryFailed)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "discovery call failed")
	assert.Contains(t, err.Error(), "connection refused")

	// Malformed responses carry no cause.
	err = &DiscoveryError{Reason: "missing ttl field"}
	require.ErrorIs(t, err, ErrDiscoveryFailed)
	assert.Contains(t, err.Error(), "missing ttl field")
}

func TestNoRoleError(t *testing.T) {
	err := &NoRoleError{Role: RoleFollower}
	require.ErrorIs(t, err, ErrNoAvailableRole)
	assert.Contains(t, err.Error(), "FOLLOWER")

	var nre *NoRoleError
	require.ErrorAs(t, error(err), &nre)
	assert.Equal(t, RoleFollower, nre.Role)
}
