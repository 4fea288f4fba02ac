package cache

import (
	"context"
	"time"

	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/starshine-sys/inviteroles/common/log"
)

func (bot *Bot) guildCreate(ev *gateway.GuildCreateEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := bot.Cabinet.GuildSet(ctx, ev.Guild)
	if err != nil {
		log.Errorf("setting guild %v: %v", ev.ID, err)
		return
	}

	err = bot.Cabinet.SetRoles(ctx, ev.ID, ev.Roles)
	if err != nil {
		log.Errorf("setting roles for %v: %v", ev.ID, err)
		return
	}

	self := bot.User().ID
	for _, m := range ev.Members {
		if m.User.ID != self {
			continue
		}

		err = bot.Cabinet.SetMember(ctx, ev.ID, m)
		if err != nil {
			log.Errorf("setting own member in %v: %v", ev.ID, err)
		}
		break
	}
}

func (bot *Bot) guildUpdate(ev *gateway.GuildUpdateEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := bot.Cabinet.GuildSet(ctx, ev.Guild)
	if err != nil {
		log.Errorf("setting guild %v: %v", ev.ID, err)
	}
}

func (bot *Bot) guildDelete(ev *gateway.GuildDeleteEvent) {
	// outages don't mean we left the guild, keep the cache around
	if ev.Unavailable {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := bot.Cabinet.GuildRemove(ctx, ev.ID)
	if err != nil {
		log.Errorf("removing guild %v: %v", ev.ID, err)
	}

	err = bot.Cabinet.RemoveRoles(ctx, ev.ID)
	if err != nil {
		log.Errorf("removing roles for %v: %v", ev.ID, err)
	}

	err = bot.Cabinet.RemoveMembers(ctx, ev.ID)
	if err != nil {
		log.Errorf("removing members for %v: %v", ev.ID, err)
	}
}
