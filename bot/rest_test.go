package bot

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/invites"
	"github.com/starshine-sys/inviteroles/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryGrant(t *testing.T) {
	ctx := context.Background()

	t.Run("persistent failure is tried twice", func(t *testing.T) {
		var calls atomic.Int32
		err := retryGrant(ctx, time.Millisecond, time.Second, func(context.Context) error {
			calls.Add(1)
			return errors.New("500 internal server error")
		})
		assert.Error(t, err)
		assert.EqualValues(t, grantAttempts, calls.Load())
	})

	t.Run("second attempt succeeds", func(t *testing.T) {
		var calls atomic.Int32
		err := retryGrant(ctx, time.Millisecond, time.Second, func(context.Context) error {
			if calls.Add(1) == 1 {
				return errors.New("502 bad gateway")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.EqualValues(t, 2, calls.Load())
	})

	t.Run("slow grant counts as failure", func(t *testing.T) {
		var calls atomic.Int32
		start := time.Now()
		err := retryGrant(ctx, time.Millisecond, 10*time.Millisecond, func(ctx context.Context) error {
			calls.Add(1)
			<-ctx.Done()
			return ctx.Err()
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.EqualValues(t, grantAttempts, calls.Load())
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestTimedFetcher(t *testing.T) {
	ctx := context.Background()
	guildID := discord.GuildID(1)

	t.Run("fetch within the deadline", func(t *testing.T) {
		f := &timedFetcher{
			timeout: time.Second,
			fetch: func(context.Context, discord.GuildID) (map[string]int, error) {
				return map[string]int{"abc": 1}, nil
			},
		}

		uses, err := f.InviteUses(ctx, guildID)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"abc": 1}, uses)
	})

	t.Run("slow fetch is a fetch error", func(t *testing.T) {
		f := &timedFetcher{
			timeout: 10 * time.Millisecond,
			fetch: func(ctx context.Context, _ discord.GuildID) (map[string]int, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Second):
					return map[string]int{"abc": 1}, nil
				}
			},
		}

		s := memory.New()
		tr := invites.NewTracker(f, s)

		err := tr.Prime(ctx, guildID)
		var fetchErr *invites.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		_, err = s.Snapshot(ctx, guildID)
		assert.Error(t, err, "no snapshot is stored after a failed fetch")
	})
}
