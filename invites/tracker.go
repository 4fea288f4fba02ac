package invites

import (
	"context"
	"sync"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/common"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/starshine-sys/inviteroles/store"
)

// InviteFetcher fetches the current use count of every invite in a guild, including the vanity invite.
type InviteFetcher interface {
	InviteUses(ctx context.Context, guildID discord.GuildID) (map[string]int, error)
}

// Tracker keeps the last known invite snapshot per guild and diffs it against fresh ones.
type Tracker struct {
	fetcher InviteFetcher
	store   store.SnapshotStore

	locks *common.Map[discord.GuildID, *sync.Mutex]
}

func NewTracker(fetcher InviteFetcher, s store.SnapshotStore) *Tracker {
	return &Tracker{
		fetcher: fetcher,
		store:   s,
		locks:   common.NewMap[discord.GuildID, *sync.Mutex](),
	}
}

func (t *Tracker) lock(guildID discord.GuildID) *sync.Mutex {
	return t.locks.LoadOrStore(guildID, func() *sync.Mutex { return &sync.Mutex{} })
}

// Prime fetches the guild's invites and stores them as the new baseline, discarding any earlier snapshot.
func (t *Tracker) Prime(ctx context.Context, guildID discord.GuildID) error {
	mu := t.lock(guildID)
	mu.Lock()
	defer mu.Unlock()

	cur, err := t.fetcher.InviteUses(ctx, guildID)
	if err != nil {
		return &FetchError{GuildID: guildID, Err: err}
	}

	err = t.store.SetSnapshot(ctx, guildID, cur)
	if err != nil {
		return errors.Wrap(err, "storing snapshot")
	}

	log.Debugf("primed invite snapshot for %v with %d invites", guildID, len(cur))
	return nil
}

// RefreshAndDiff fetches the guild's invites, diffs them against the stored snapshot, and replaces the stored snapshot.
// The diff and the replacement happen under a per-guild lock.
//
// If the fetch fails a *FetchError is returned and the stored snapshot is not changed.
// If there is no stored snapshot, the fresh one is stored and ErrNoBaseline is returned.
func (t *Tracker) RefreshAndDiff(ctx context.Context, guildID discord.GuildID) (Delta, error) {
	mu := t.lock(guildID)
	mu.Lock()
	defer mu.Unlock()

	cur, err := t.fetcher.InviteUses(ctx, guildID)
	if err != nil {
		return nil, &FetchError{GuildID: guildID, Err: err}
	}

	old, err := t.store.Snapshot(ctx, guildID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrap(err, "getting snapshot")
		}

		err = t.store.SetSnapshot(ctx, guildID, cur)
		if err != nil {
			return nil, errors.Wrap(err, "storing snapshot")
		}
		return nil, ErrNoBaseline
	}

	delta := Diff(old, cur)

	err = t.store.SetSnapshot(ctx, guildID, cur)
	if err != nil {
		return nil, errors.Wrap(err, "storing snapshot")
	}

	return delta, nil
}

// Forget removes the guild's snapshot.
func (t *Tracker) Forget(ctx context.Context, guildID discord.GuildID) error {
	// the lock is kept, a rejoin may already hold it
	mu := t.lock(guildID)
	mu.Lock()
	defer mu.Unlock()

	return t.store.RemoveSnapshot(ctx, guildID)
}
