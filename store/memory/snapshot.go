package memory

import (
	"context"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/store"
)

var _ store.SnapshotStore = (*Store)(nil)

func (s *Store) Snapshot(_ context.Context, guildID discord.GuildID) (map[string]int, error) {
	s.snapshotsMu.RLock()
	defer s.snapshotsMu.RUnlock()

	snap, ok := s.snapshots[guildID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyUses(snap), nil
}

func (s *Store) SetSnapshot(_ context.Context, guildID discord.GuildID, uses map[string]int) error {
	// copy outside the lock, the caller may keep using its map
	snap := copyUses(uses)

	s.snapshotsMu.Lock()
	s.snapshots[guildID] = snap
	s.snapshotsMu.Unlock()
	return nil
}

func (s *Store) RemoveSnapshot(_ context.Context, guildID discord.GuildID) error {
	s.snapshotsMu.Lock()
	delete(s.snapshots, guildID)
	s.snapshotsMu.Unlock()
	return nil
}

func copyUses(uses map[string]int) map[string]int {
	out := make(map[string]int, len(uses))
	for k, v := range uses {
		out[k] = v
	}
	return out
}
