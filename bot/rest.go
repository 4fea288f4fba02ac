package bot

import (
	"context"
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/httputil"
	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/starshine-sys/inviteroles/invites"
)

var _ invites.InviteFetcher = (*timedFetcher)(nil)
var _ invites.RoleGranter = (*Bot)(nil)

// grantAttempts is how often a role grant is tried before giving up.
const grantAttempts = 2

// timedFetcher bounds every invite fetch by a deadline.
type timedFetcher struct {
	timeout time.Duration
	fetch   func(context.Context, discord.GuildID) (map[string]int, error)
}

// InviteUses returns the use count of every invite in the guild, including the vanity invite.
func (f *timedFetcher) InviteUses(ctx context.Context, guildID discord.GuildID) (map[string]int, error) {
	t := timeout.New[map[string]int](timeout.Config{
		DefaultTimeout: f.timeout,
	})

	return t.Execute(ctx, f.timeout, func(ctx context.Context) (map[string]int, error) {
		return f.fetch(ctx, guildID)
	})
}

func (bot *Bot) fetchInviteUses(ctx context.Context, guildID discord.GuildID) (map[string]int, error) {
	client := bot.Rest.WithContext(ctx)

	invs, err := client.GuildInvites(guildID)
	if err != nil {
		return nil, errors.Wrap(err, "getting invite list")
	}

	uses := make(map[string]int, len(invs)+1)
	for _, inv := range invs {
		uses[inv.Code] = inv.Uses
	}

	g, err := bot.Cabinet.Guild(ctx, guildID)
	if err != nil || g.VanityURLCode == "" {
		return uses, nil
	}

	vanity, err := client.GuildVanityInvite(guildID)
	if err != nil {
		// the vanity invite may have been removed since the guild was cached
		if isStatus(err, http.StatusForbidden, http.StatusNotFound) {
			log.Debugf("no vanity invite for %v: %v", guildID, err)
			return uses, nil
		}
		return nil, errors.Wrap(err, "getting vanity invite")
	}

	if vanity.Code != "" {
		uses[vanity.Code] = vanity.Uses
	}
	return uses, nil
}

// GrantRole adds a role to a member, retrying once on failure.
// In test mode, the grant is only logged.
func (bot *Bot) GrantRole(ctx context.Context, guildID discord.GuildID, userID discord.UserID, roleID discord.RoleID, reason string) error {
	if !bot.ShouldAct() {
		log.Infof("test mode: not granting role %v to %v in %v", roleID, userID, guildID)
		return nil
	}

	return retryGrant(ctx, time.Second, bot.Config.Bot.GrantTimeout.Duration, func(ctx context.Context) error {
		err := bot.Rest.WithContext(ctx).AddRole(guildID, userID, roleID, api.AddRoleData{
			AuditLogReason: api.AuditLogReason(reason),
		})
		if err != nil {
			log.Debugf("adding role %v to %v in %v: %v", roleID, userID, guildID, err)
		}
		return err
	})
}

// retryGrant calls grant up to grantAttempts times, each call bounded by timeout.
func retryGrant(ctx context.Context, delay, timeout time.Duration, grant func(context.Context) error) error {
	r := retry.New[struct{}](retry.Config{
		MaxAttempts:   grantAttempts,
		InitialDelay:  delay,
		BackoffPolicy: retry.BackoffExponential,
	})

	_, err := r.Do(ctx, func(ctx context.Context) (struct{}, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return struct{}{}, grant(ctx)
	})
	return err
}

func isStatus(err error, statuses ...int) bool {
	var httpErr *httputil.HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}

	for _, s := range statuses {
		if httpErr.Status == s {
			return true
		}
	}
	return false
}
