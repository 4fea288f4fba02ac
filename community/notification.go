// Package community runs one serialized worker per guild.
// Notifications for the same guild are handled one at a time, in the order they were submitted;
// different guilds are handled in parallel.
package community

import (
	"context"

	"github.com/diamondburned/arikawa/v3/discord"
)

// Kind is the type of a notification, used as the dispatch key.
type Kind int

const (
	KindGuildJoined Kind = iota
	KindMemberJoined
	KindRoleDeleted
	KindGuildLeft
)

func (k Kind) String() string {
	switch k {
	case KindGuildJoined:
		return "guild_joined"
	case KindMemberJoined:
		return "member_joined"
	case KindRoleDeleted:
		return "role_deleted"
	case KindGuildLeft:
		return "guild_left"
	}
	return "unknown"
}

// Notification is a single event routed to a guild's worker.
type Notification interface {
	Guild() discord.GuildID
	Kind() Kind
}

// GuildJoined is queued when a worker is created.
type GuildJoined struct {
	GuildID discord.GuildID
}

func (n GuildJoined) Guild() discord.GuildID { return n.GuildID }
func (GuildJoined) Kind() Kind               { return KindGuildJoined }

// GuildLeft is the last notification a worker handles.
type GuildLeft struct {
	GuildID discord.GuildID
}

func (n GuildLeft) Guild() discord.GuildID { return n.GuildID }
func (GuildLeft) Kind() Kind               { return KindGuildLeft }

type MemberJoined struct {
	GuildID discord.GuildID
	UserID  discord.UserID
	IsBot   bool
}

func (n MemberJoined) Guild() discord.GuildID { return n.GuildID }
func (MemberJoined) Kind() Kind               { return KindMemberJoined }

type RoleDeleted struct {
	GuildID discord.GuildID
	RoleID  discord.RoleID
}

func (n RoleDeleted) Guild() discord.GuildID { return n.GuildID }
func (RoleDeleted) Kind() Kind               { return KindRoleDeleted }

// HandlerFunc handles a single notification.
type HandlerFunc func(ctx context.Context, n Notification) error

// Dispatcher maps notification kinds to their handlers.
type Dispatcher map[Kind]HandlerFunc
