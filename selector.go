package plexus

import (
	"strconv"

	"github.com/arloliu/plexus/types"
)

// leaderAlias returns the pool alias for the i-th leader connection.
func leaderAlias(i int) string {
	return "leader-" + strconv.Itoa(i)
}

// followerAlias returns the pool alias for the i-th follower connection.
func followerAlias(i int) string {
	return "follower-" + strconv.Itoa(i)
}

// pickWriteAlias selects a leader connection alias uniformly at random.
//
// Returns a NoRoleError when the last discovery reported zero leaders.
func (st *topologyState) pickWriteAlias(pick IndexPicker) (string, error) {
	n := st.table.Count(types.RoleLeader)
	if n == 0 {
		return "", &types.NoRoleError{Role: types.RoleLeader}
	}

	return leaderAlias(pick(n)), nil
}

// pickReadAlias selects a follower connection alias uniformly at random.
//
// Returns a NoRoleError when the last discovery reported zero followers.
func (st *topologyState) pickReadAlias(pick IndexPicker) (string, error) {
	n := st.table.Count(types.RoleFollower)
	if n == 0 {
		return "", &types.NoRoleError{Role: types.RoleFollower}
	}

	return followerAlias(pick(n)), nil
}
