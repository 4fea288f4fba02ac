package memory

import (
	"context"
	"testing"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoles(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SetRoles(ctx, 1, []discord.Role{{ID: 10, Position: 1}, {ID: 11, Position: 2}}))
	require.NoError(t, s.SetRoles(ctx, 2, []discord.Role{{ID: 20}}))

	r, err := s.Role(ctx, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Position)

	_, err = s.Role(ctx, 1, 20)
	assert.ErrorIs(t, err, store.ErrNotFound, "role from another guild")

	require.NoError(t, s.SetRole(ctx, 1, discord.Role{ID: 11, Position: 5}))
	r, err = s.Role(ctx, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Position)

	require.NoError(t, s.RemoveRole(ctx, 1, 10))
	_, err = s.Role(ctx, 1, 10)
	assert.ErrorIs(t, err, store.ErrNotFound)

	rls, err := s.Roles(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rls, 1)

	// replacing drops roles that are gone
	require.NoError(t, s.SetRoles(ctx, 1, []discord.Role{{ID: 12}}))
	_, err = s.Role(ctx, 1, 11)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.RemoveRoles(ctx, 1))
	_, err = s.Roles(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Role(ctx, 2, 20)
	assert.NoError(t, err)
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Snapshot(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	uses := map[string]int{"abc": 1}
	require.NoError(t, s.SetSnapshot(ctx, 1, uses))
	uses["abc"] = 5

	snap, err := s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"abc": 1}, snap)

	snap["xyz"] = 1
	snap, err = s.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, snap, 1)

	require.NoError(t, s.RemoveSnapshot(ctx, 1))
	_, err = s.Snapshot(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGuildsAndMembers(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.GuildSet(ctx, discord.Guild{ID: 1, OwnerID: 5}))
	g, err := s.Guild(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, discord.UserID(5), g.OwnerID)

	require.NoError(t, s.GuildRemove(ctx, 1))
	_, err = s.Guild(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SetMember(ctx, 1, discord.Member{User: discord.User{ID: 7}, RoleIDs: []discord.RoleID{10}}))
	m, err := s.Member(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, []discord.RoleID{10}, m.RoleIDs)

	require.NoError(t, s.RemoveMembers(ctx, 1))
	_, err = s.Member(ctx, 1, 7)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
