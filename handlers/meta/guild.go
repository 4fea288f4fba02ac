package meta

import (
	"context"
	"time"

	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/starshine-sys/inviteroles/community"
)

func (bot *Bot) ready(ev *gateway.ReadyEvent) {
	log.Infof("Shard %d/%d is ready as %v", ev.Shard.ShardID(), ev.Shard.NumShards(), ev.User.Tag())
}

func (bot *Bot) guildCreate(ev *gateway.GuildCreateEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := bot.DB.CreateGuild(ctx, ev.ID)
	if err != nil {
		log.Errorf("creating guild %v (%v) in database: %v", ev.ID, ev.Name, err)
	}

	if !bot.Registry.Join(ev.ID) {
		// the guild came back after an outage, joins may have been missed
		err = bot.Registry.Submit(community.GuildJoined{GuildID: ev.ID})
		if err != nil {
			log.Errorf("queueing invite refresh for %v: %v", ev.ID, err)
		}
		return
	}

	// settings aren't deleted when the bot leaves a guild,
	// so a guild joined more than a minute ago was already known
	if exists && ev.Joined.Time().Before(time.Now().Add(-time.Minute)) {
		log.Debugf("Tracking invites in %v (%v)", ev.ID, ev.Name)
		return
	}

	log.Infof("Joined new guild %v (%v)", ev.ID, ev.Name)
}

func (bot *Bot) guildDelete(ev *gateway.GuildDeleteEvent) {
	if ev.Unavailable {
		log.Infof("Guild %v is unavailable", ev.ID)
		return
	}

	if bot.Registry.Leave(ev.ID) {
		log.Infof("Left guild %v", ev.ID)
	}
}
