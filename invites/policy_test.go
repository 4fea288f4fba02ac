package invites

import (
	"context"
	"testing"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	memberID = discord.UserID(100)
	roleID   = discord.RoleID(200)
)

func newPolicy() (*Policy, *fakeMappings, *fakeRoles, *fakeGranter, *fakeReporter) {
	m := &fakeMappings{roles: map[string]discord.RoleID{"abcdef": roleID}}
	r := &fakeRoles{
		roles:      map[discord.RoleID]discord.Role{roleID: {ID: roleID, Name: "Friends"}},
		assignable: map[discord.RoleID]bool{roleID: true},
	}
	g := &fakeGranter{}
	rep := &fakeReporter{}

	return &Policy{Mappings: m, Roles: r, Granter: g, Reporter: rep}, m, r, g, rep
}

func TestPolicyApply(t *testing.T) {
	ctx := context.Background()

	t.Run("no mapping is a no-op", func(t *testing.T) {
		p, m, _, g, rep := newPolicy()

		outcome, err := p.Apply(ctx, guildID, "other", memberID)
		require.NoError(t, err)
		assert.Equal(t, NoMapping, outcome)
		assert.Empty(t, g.grants)
		assert.Empty(t, m.removed)
		assert.Len(t, m.roles, 1)
		assert.Empty(t, rep.warnings)
	})

	t.Run("granted with a redacted reason", func(t *testing.T) {
		p, m, _, g, rep := newPolicy()

		outcome, err := p.Apply(ctx, guildID, "abcdef", memberID)
		require.NoError(t, err)
		assert.Equal(t, Granted, outcome)
		require.Len(t, g.grants, 1)
		assert.Equal(t, grant{memberID, roleID, "Invite role (ab****)"}, g.grants[0])
		assert.NotContains(t, g.grants[0].Reason, "abcdef")
		assert.Empty(t, m.removed)
		assert.Empty(t, rep.warnings)
	})

	t.Run("missing role removes the mapping without granting", func(t *testing.T) {
		p, m, r, g, rep := newPolicy()
		delete(r.roles, roleID)

		outcome, err := p.Apply(ctx, guildID, "abcdef", memberID)
		assert.Equal(t, RoleMissing, outcome)
		assert.ErrorIs(t, err, ErrStaleMapping)

		assert.Empty(t, g.grants)
		assert.Equal(t, []string{"abcdef"}, m.removed)
		require.Len(t, rep.warnings, 1)
		assert.Contains(t, rep.warnings[0], "role doesn't exist")
		assert.NotContains(t, rep.warnings[0], "abcdef")
	})

	t.Run("role the bot can't assign removes the mapping", func(t *testing.T) {
		p, m, r, g, rep := newPolicy()
		r.assignable[roleID] = false

		outcome, err := p.Apply(ctx, guildID, "abcdef", memberID)
		assert.Equal(t, InsufficientPrivilege, outcome)

		var staleErr *StaleMappingError
		require.ErrorAs(t, err, &staleErr)
		assert.Equal(t, roleID, staleErr.RoleID)
		assert.NotContains(t, staleErr.Error(), "abcdef")

		assert.Empty(t, g.grants)
		assert.Equal(t, []string{"abcdef"}, m.removed)
		require.Len(t, rep.warnings, 1)
		assert.Contains(t, rep.warnings[0], "insufficient permissions")
		assert.Contains(t, rep.warnings[0], "Friends")
	})

	t.Run("failed grant keeps the mapping", func(t *testing.T) {
		p, m, _, g, rep := newPolicy()
		g.err = errors.New("500 Internal Server Error")

		outcome, err := p.Apply(ctx, guildID, "abcdef", memberID)
		assert.Equal(t, GrantFailed, outcome)

		var grantErr *GrantError
		require.ErrorAs(t, err, &grantErr)
		assert.Equal(t, memberID, grantErr.UserID)

		assert.Empty(t, m.removed)
		assert.Len(t, m.roles, 1)
		assert.Len(t, rep.warnings, 1)
	})
}

func TestPruneRole(t *testing.T) {
	ctx := context.Background()

	m := &fakeMappings{roles: map[string]discord.RoleID{
		"abc": roleID,
		"xyz": roleID + 1,
	}}

	code, removed, err := PruneRole(ctx, m, guildID, roleID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "abc", code)

	for _, id := range m.roles {
		assert.NotEqual(t, roleID, id)
	}
	assert.Len(t, m.roles, 1)

	_, removed, err = PruneRole(ctx, m, guildID, roleID+5)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, m.roles, 1)
}
