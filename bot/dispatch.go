package bot

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/starshine-sys/inviteroles/community"
	"github.com/starshine-sys/inviteroles/invites"
)

// dispatcher maps guild worker notifications to the invite service.
func (bot *Bot) dispatcher() community.Dispatcher {
	return community.Dispatcher{
		community.KindGuildJoined: func(ctx context.Context, n community.Notification) error {
			ctx, cancel := bot.handlerContext(ctx)
			defer cancel()

			return bot.Service.GuildJoined(ctx, n.Guild())
		},
		community.KindMemberJoined: func(ctx context.Context, n community.Notification) error {
			ctx, cancel := bot.handlerContext(ctx)
			defer cancel()

			ev := n.(community.MemberJoined)
			return bot.Service.MemberJoined(ctx, ev.GuildID, ev.UserID, ev.IsBot)
		},
		community.KindRoleDeleted: func(ctx context.Context, n community.Notification) error {
			ctx, cancel := bot.handlerContext(ctx)
			defer cancel()

			ev := n.(community.RoleDeleted)
			return bot.Service.RoleDeleted(ctx, ev.GuildID, ev.RoleID)
		},
		community.KindGuildLeft: func(ctx context.Context, n community.Notification) error {
			ctx, cancel := bot.handlerContext(ctx)
			defer cancel()

			return bot.Service.GuildLeft(ctx, n.Guild())
		},
	}
}

// handlerContext bounds a single notification: one invite fetch, two grant attempts, and the database calls around them.
func (bot *Bot) handlerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	d := bot.Config.Bot.FetchTimeout.Duration + 2*bot.Config.Bot.GrantTimeout.Duration + 10*time.Second
	return context.WithTimeout(ctx, d)
}

// reportNotification sends unexpected handler errors to Sentry.
// Failed invite fetches are expected (missing permissions, Discord outages) and only logged.
func (bot *Bot) reportNotification(n community.Notification, err error) {
	var fetchErr *invites.FetchError
	if errors.As(err, &fetchErr) {
		return
	}

	bot.Report(n.Guild(), n.Kind().String(), err)
}
