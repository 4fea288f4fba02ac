package cache

import (
	"context"
	"time"

	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/starshine-sys/inviteroles/common/log"
)

func (bot *Bot) roleCreate(ev *gateway.GuildRoleCreateEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := bot.Cabinet.SetRole(ctx, ev.GuildID, ev.Role)
	if err != nil {
		log.Errorf("setting role %v in %v: %v", ev.Role.ID, ev.GuildID, err)
	}
}

func (bot *Bot) roleUpdate(ev *gateway.GuildRoleUpdateEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := bot.Cabinet.SetRole(ctx, ev.GuildID, ev.Role)
	if err != nil {
		log.Errorf("setting role %v in %v: %v", ev.Role.ID, ev.GuildID, err)
	}
}

// memberUpdate keeps the bot's own roles current, everyone else is ignored.
func (bot *Bot) memberUpdate(ev *gateway.GuildMemberUpdateEvent) {
	if ev.User.ID != bot.User().ID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	m, err := bot.Cabinet.Member(ctx, ev.GuildID, ev.User.ID)
	if err != nil {
		log.Debugf("own member in %v wasn't cached", ev.GuildID)
	}
	m.User = ev.User
	m.RoleIDs = ev.RoleIDs
	m.Nick = ev.Nick

	err = bot.Cabinet.SetMember(ctx, ev.GuildID, m)
	if err != nil {
		log.Errorf("setting own member in %v: %v", ev.GuildID, err)
	}
}
