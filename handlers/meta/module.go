// Package meta creates and tears down guild workers as the bot joins and leaves guilds.
package meta

import (
	"github.com/starshine-sys/inviteroles/bot"
	"github.com/starshine-sys/inviteroles/common/log"
)

type Bot struct {
	*bot.Bot
}

func Setup(root *bot.Bot) {
	log.Debug("Adding meta handlers")

	bot := &Bot{Bot: root}

	bot.AddHandler(
		bot.ready,
		bot.guildCreate,
		bot.guildDelete,
	)
}
