// Package memory provides an in-memory store.
package memory

import (
	"sync"

	"github.com/diamondburned/arikawa/v3/discord"
)

type Store struct {
	guilds   map[discord.GuildID]*discord.Guild
	guildsMu sync.RWMutex

	roles      map[discord.RoleID]*discord.Role
	guildRoles map[discord.GuildID][]discord.RoleID
	rolesMu    sync.RWMutex

	members   map[discord.GuildID]map[discord.UserID]discord.Member
	membersMu sync.RWMutex

	snapshots   map[discord.GuildID]map[string]int
	snapshotsMu sync.RWMutex
}

func New() *Store {
	return &Store{
		guilds:     make(map[discord.GuildID]*discord.Guild),
		roles:      make(map[discord.RoleID]*discord.Role),
		guildRoles: make(map[discord.GuildID][]discord.RoleID),
		members:    make(map[discord.GuildID]map[discord.UserID]discord.Member),
		snapshots:  make(map[discord.GuildID]map[string]int),
	}
}

// remove removes the given value in slice.
func remove[T comparable](slice []T, val T) []T {
	for i := range slice {
		if slice[i] == val {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}

// contains returns true if slice contains val.
func contains[T comparable](slice []T, val T) bool {
	for i := range slice {
		if slice[i] == val {
			return true
		}
	}
	return false
}
