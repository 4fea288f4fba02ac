package bot

import (
	"testing"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/stretchr/testify/assert"
)

func TestCanAssign(t *testing.T) {
	const (
		guildID = discord.GuildID(1)
		selfID  = discord.UserID(2)
		ownerID = discord.UserID(3)
	)

	everyone := discord.Role{ID: discord.RoleID(guildID), Position: 0}
	botRole := discord.Role{ID: 10, Position: 5, Permissions: discord.PermissionManageRoles}
	admin := discord.Role{ID: 11, Position: 5, Permissions: discord.PermissionAdministrator}
	plain := discord.Role{ID: 12, Position: 5}
	low := discord.Role{ID: 20, Position: 2}
	same := discord.Role{ID: 21, Position: 5}
	high := discord.Role{ID: 22, Position: 8}
	managed := discord.Role{ID: 23, Position: 1, Managed: true}

	rls := []discord.Role{everyone, botRole, admin, plain, low, same, high, managed}

	member := func(ids ...discord.RoleID) discord.Member {
		return discord.Member{User: discord.User{ID: selfID}, RoleIDs: ids}
	}

	tests := []struct {
		name   string
		self   discord.Member
		target discord.Role
		want   bool
	}{
		{"lower role with manage roles", member(botRole.ID), low, true},
		{"lower role with administrator", member(admin.ID), low, true},
		{"lower role without permission", member(plain.ID), low, false},
		{"permission from one role, position from another", member(plain.ID, botRole.ID), low, true},
		{"same position", member(botRole.ID), same, false},
		{"higher role", member(botRole.ID), high, false},
		{"managed role", member(botRole.ID), managed, false},
		{"everyone role", member(botRole.ID), everyone, false},
		{"no roles", member(), low, false},
		{"owner ignores hierarchy", discord.Member{User: discord.User{ID: ownerID}}, high, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canAssign(guildID, ownerID, tt.self, rls, tt.target))
		})
	}

	t.Run("everyone permissions apply", func(t *testing.T) {
		rls := []discord.Role{{ID: discord.RoleID(guildID), Permissions: discord.PermissionManageRoles}, low, plain}
		assert.True(t, canAssign(guildID, ownerID, member(plain.ID), rls, low))
	})
}
