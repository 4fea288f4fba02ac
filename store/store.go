// Package store defines interfaces for the bot's caches.
// Guilds, roles and the bot's own member are kept up to date from gateway events;
// invite snapshots are refreshed on every member join and may be persisted so they survive restarts.
package store

import (
	"context"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
)

const ErrNotFound = errors.Sentinel("value not found in store")

// Cabinet combines all stores.
type Cabinet struct {
	GuildStore
	RoleStore
	MemberStore
	SnapshotStore
}

type GuildStore interface {
	Guild(ctx context.Context, id discord.GuildID) (discord.Guild, error)
	GuildSet(ctx context.Context, g discord.Guild) error
	GuildRemove(ctx context.Context, id discord.GuildID) error
}

type RoleStore interface {
	Role(ctx context.Context, guildID discord.GuildID, roleID discord.RoleID) (discord.Role, error)
	Roles(ctx context.Context, guildID discord.GuildID) ([]discord.Role, error)
	SetRole(ctx context.Context, guildID discord.GuildID, r discord.Role) error
	SetRoles(ctx context.Context, guildID discord.GuildID, rls []discord.Role) error
	RemoveRole(ctx context.Context, guildID discord.GuildID, roleID discord.RoleID) error
	RemoveRoles(ctx context.Context, guildID discord.GuildID) error
}

// MemberStore only ever holds the bot's own member in each guild,
// which is needed to check the role hierarchy.
type MemberStore interface {
	Member(ctx context.Context, guildID discord.GuildID, userID discord.UserID) (discord.Member, error)
	SetMember(ctx context.Context, guildID discord.GuildID, m discord.Member) error
	RemoveMembers(ctx context.Context, guildID discord.GuildID) error
}

// SnapshotStore holds the last known use count of every invite in a guild.
// Snapshots are only ever replaced as a whole, never merged.
type SnapshotStore interface {
	Snapshot(ctx context.Context, guildID discord.GuildID) (map[string]int, error)
	SetSnapshot(ctx context.Context, guildID discord.GuildID, uses map[string]int) error
	RemoveSnapshot(ctx context.Context, guildID discord.GuildID) error
}
