// Package roles prunes invite roles when their role is deleted.
package roles

import (
	"context"
	"time"

	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/starshine-sys/inviteroles/bot"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/starshine-sys/inviteroles/community"
)

type Bot struct {
	*bot.Bot
}

func Setup(root *bot.Bot) {
	log.Debug("Adding role handlers")

	bot := &Bot{Bot: root}

	bot.AddHandler(bot.roleDelete)
}

func (bot *Bot) roleDelete(ev *gateway.GuildRoleDeleteEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := bot.Cabinet.RemoveRole(ctx, ev.GuildID, ev.RoleID)
	if err != nil {
		log.Errorf("removing role %v from cache: %v", ev.RoleID, err)
	}

	// a dropped deletion leaves a stale mapping, which is removed on its next use
	err = bot.Registry.Submit(community.RoleDeleted{GuildID: ev.GuildID, RoleID: ev.RoleID})
	if err != nil {
		log.Errorf("queueing deletion of role %v in %v: %v", ev.RoleID, ev.GuildID, err)
	}
}
