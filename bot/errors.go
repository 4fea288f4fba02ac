package bot

import (
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/starshine-sys/inviteroles/common/log"
)

// Report sends an error to Sentry, if it's configured, and returns the event ID.
func (bot *Bot) Report(guildID discord.GuildID, event string, err error) string {
	if bot.Config.Auth.Sentry == "" {
		id := uuid.New().String()
		log.Errorf("error %v handling %v in %v: %v", id, event, guildID, err)
		return id
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("guild", guildID.String())
		scope.SetTag("event", event)
	})

	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category: "event",
		Data: map[string]any{
			"guild": guildID,
			"event": event,
		},
		Level:     sentry.LevelError,
		Timestamp: time.Now().UTC(),
	}, nil)

	id := hub.CaptureException(err)
	if id == nil {
		uid := uuid.New().String()
		id = (*sentry.EventID)(&uid)
	}
	return string(*id)
}
