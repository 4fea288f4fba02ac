package redis

import (
	"context"
	"encoding/json"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/mediocregopher/radix/v4"
	"github.com/starshine-sys/inviteroles/store"
)

func snapshotKey(guildID discord.GuildID) string {
	return "inviteUses:" + guildID.String()
}

// Snapshot returns the stored invite uses for a guild.
// The whole snapshot is stored as a single value, so a read never sees a partial replacement.
func (s *Store) Snapshot(ctx context.Context, guildID discord.GuildID) (uses map[string]int, err error) {
	var raw []byte

	err = s.client.Do(ctx, radix.Cmd(&raw, "GET", snapshotKey(guildID)))
	if err != nil {
		return nil, errors.Wrap(err, "getting snapshot")
	}

	if raw == nil {
		return nil, store.ErrNotFound
	}

	uses = make(map[string]int)
	return uses, json.Unmarshal(raw, &uses)
}

func (s *Store) SetSnapshot(ctx context.Context, guildID discord.GuildID, uses map[string]int) error {
	if uses == nil {
		uses = map[string]int{}
	}

	b, err := json.Marshal(uses)
	if err != nil {
		return err
	}

	return s.client.Do(ctx, radix.Cmd(nil, "SET", snapshotKey(guildID), string(b)))
}

func (s *Store) RemoveSnapshot(ctx context.Context, guildID discord.GuildID) error {
	return s.client.Do(ctx, radix.Cmd(nil, "DEL", snapshotKey(guildID)))
}
