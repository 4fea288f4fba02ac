package bot

import (
	"context"
	"time"

	"github.com/ReneKroon/ttlcache/v2"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/common"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/starshine-sys/inviteroles/invites"
)

var _ invites.Reporter = (*Warner)(nil)

// Warner sends invite role warnings to a guild's warning channel.
// The same warning is only sent once per cooldown.
type Warner struct {
	bot    *Bot
	recent *cooldown
}

func newWarner(bot *Bot, d time.Duration) *Warner {
	return &Warner{bot: bot, recent: newCooldown(d)}
}

func (w *Warner) Warn(ctx context.Context, guildID discord.GuildID, msg string) {
	if !w.recent.allow(guildID.String() + ":" + msg) {
		log.Debugf("not repeating warning in %v", guildID)
		return
	}

	log.Infof("warning in %v: %v", guildID, msg)

	if !w.bot.ShouldAct() {
		return
	}

	channelID, err := w.bot.DB.WarningChannel(ctx, guildID)
	if err != nil {
		log.Errorf("getting warning channel for %v: %v", guildID, err)
		return
	}
	if !channelID.IsValid() {
		return
	}

	_, err = w.bot.Rest.WithContext(ctx).SendEmbeds(channelID, discord.Embed{
		Title:       "Invite roles",
		Description: msg,
		Color:       common.ColourOrange,
		Timestamp:   discord.NowTimestamp(),
	})
	if err != nil {
		log.Errorf("sending warning to %v in %v: %v", channelID, guildID, err)
	}
}

func (w *Warner) Close() {
	w.recent.close()
}

type cooldown struct {
	cache *ttlcache.Cache
}

func newCooldown(d time.Duration) *cooldown {
	c := ttlcache.NewCache()
	_ = c.SetTTL(d)
	c.SkipTTLExtensionOnHit(true)
	return &cooldown{cache: c}
}

// allow returns true if key wasn't seen within the cooldown, and starts a new cooldown for it.
func (c *cooldown) allow(key string) bool {
	if _, err := c.cache.Get(key); err == nil {
		return false
	}

	_ = c.cache.Set(key, struct{}{})
	return true
}

func (c *cooldown) close() {
	_ = c.cache.Close()
}
