package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rolesByRank = []Role{
	RoleAdmin,
	RoleCentralPresident,
	RoleStatePresident,
	RoleDistrictPresident,
	RoleBlockCoordinator,
	RolePrerak,
	RoleVolunteer,
	RoleDonor,
}

func TestRankOf_TotalOverClosedSet(t *testing.T) {
	for i, role := range rolesByRank {
		rank, err := RankOf(role)
		require.NoError(t, err, "role %s", role)
		assert.Equal(t, i, rank)
	}

	_, err := RankOf(Role("super_admin"))
	assert.ErrorIs(t, err, ErrUnknownRole)
	_, err = RankOf(Role(""))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestIsStrictlyAbove(t *testing.T) {
	for i, higher := range rolesByRank {
		for j, lower := range rolesByRank {
			want := i < j
			assert.Equal(t, want, IsStrictlyAbove(higher, lower),
				"%s above %s", higher, lower)
		}
	}

	// Unknown roles never outrank anything, in either position
	assert.False(t, IsStrictlyAbove(Role("mystery"), RoleDonor))
	assert.False(t, IsStrictlyAbove(RoleAdmin, Role("mystery")))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("block_coordinator")
	require.NoError(t, err)
	assert.Equal(t, RoleBlockCoordinator, role)

	_, err = ParseRole("Block_Coordinator")
	assert.ErrorIs(t, err, ErrUnknownRole)
	_, err = ParseRole("")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestIsCoordinator(t *testing.T) {
	assert.True(t, RoleAdmin.IsCoordinator())
	assert.True(t, RoleBlockCoordinator.IsCoordinator())
	assert.True(t, RolePrerak.IsCoordinator())
	assert.False(t, RoleVolunteer.IsCoordinator())
	assert.False(t, RoleDonor.IsCoordinator())
	assert.False(t, Role("mystery").IsCoordinator())
}

func TestCodeTypeForRole(t *testing.T) {
	assert.Equal(t, CodeTypeCoordinator, CodeTypeForRole(RoleBlockCoordinator))
	assert.Equal(t, CodeTypeCoordinator, CodeTypeForRole(RoleStatePresident))
	assert.Equal(t, CodeTypeSubCoordinator, CodeTypeForRole(RolePrerak))
	assert.Equal(t, CodeTypeSubCoordinator, CodeTypeForRole(RoleVolunteer))
	assert.Equal(t, CodeTypeSubCoordinator, CodeTypeForRole(RoleDonor))
}
