// Package cache keeps the guild, role and own member caches up to date.
package cache

import (
	"github.com/starshine-sys/inviteroles/bot"
	"github.com/starshine-sys/inviteroles/common/log"
)

type Bot struct {
	*bot.Bot
}

func Setup(root *bot.Bot) {
	log.Debug("Adding cache handlers")

	bot := &Bot{Bot: root}

	bot.AddHandler(
		bot.guildCreate,
		bot.guildUpdate,
		bot.guildDelete,
		bot.roleCreate,
		bot.roleUpdate,
		bot.memberUpdate,
	)
}
