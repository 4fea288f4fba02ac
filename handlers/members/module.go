// Package members queues member joins for invite attribution.
package members

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/starshine-sys/inviteroles/bot"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/starshine-sys/inviteroles/community"
)

type Bot struct {
	*bot.Bot
}

func Setup(root *bot.Bot) {
	log.Debug("Adding member handlers")

	bot := &Bot{Bot: root}

	bot.AddHandler(bot.memberAdd)
}

func (bot *Bot) memberAdd(ev *gateway.GuildMemberAddEvent) {
	err := bot.Registry.Submit(community.MemberJoined{
		GuildID: ev.GuildID,
		UserID:  ev.User.ID,
		IsBot:   ev.User.Bot,
	})
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, community.ErrUnknownGuild):
		log.Errorf("member %v joined %v, which has no invite tracker", ev.User.ID, ev.GuildID)
	case errors.Is(err, community.ErrMailboxFull):
		// don't hold up the shard while warning
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			bot.Service.JoinDropped(ctx, ev.GuildID, ev.User.ID)
		}()
	default:
		log.Errorf("queueing join of %v in %v: %v", ev.User.ID, ev.GuildID, err)
	}
}
