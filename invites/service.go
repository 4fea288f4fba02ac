package invites

import (
	"context"
	"fmt"
	"strings"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/common"
	"github.com/starshine-sys/inviteroles/common/log"
	"go.uber.org/zap"
)

// Recorder counts events for metrics.
type Recorder interface {
	RegisterEvent(name string)
}

// Event names passed to the Recorder.
const (
	EventAttributed    = "attributed"
	EventAmbiguous     = "ambiguous"
	EventNoSignal      = "no_signal"
	EventNoBaseline    = "no_baseline"
	EventFetchFailed   = "fetch_failed"
	EventGranted       = "granted"
	EventHealed        = "healed"
	EventGrantFailed   = "grant_failed"
	EventMappingPruned = "mapping_pruned"
	EventJoinDropped   = "join_dropped"
)

const ambiguousWarning = "%v joined at the same time as someone else! " +
	"Unfortunately Discord doesn't tell which invite was used by whom, " +
	"so no invite role was granted and you should do this manually.\nPossible invites: %v"

// Service ties the tracker, resolver and policy together for a single guild event.
// Calls for the same guild must not run concurrently.
type Service struct {
	Tracker  *Tracker
	Policy   *Policy
	Reporter Reporter
	Recorder Recorder
}

func (s *Service) record(name string) {
	if s.Recorder != nil {
		s.Recorder.RegisterEvent(name)
	}
}

// GuildJoined creates the guild's first snapshot.
func (s *Service) GuildJoined(ctx context.Context, guildID discord.GuildID) error {
	err := s.Tracker.Prime(ctx, guildID)
	if err != nil {
		s.record(EventFetchFailed)
		return err
	}
	return nil
}

// GuildLeft destroys the guild's snapshot.
func (s *Service) GuildLeft(ctx context.Context, guildID discord.GuildID) error {
	return s.Tracker.Forget(ctx, guildID)
}

// MemberJoined attributes a join to an invite and grants the mapped role, if any.
func (s *Service) MemberJoined(ctx context.Context, guildID discord.GuildID, userID discord.UserID, isBot bool) error {
	delta, err := s.Tracker.RefreshAndDiff(ctx, guildID)
	if err != nil {
		if errors.Is(err, ErrNoBaseline) {
			s.record(EventNoBaseline)
			log.Infof("no invite snapshot for %v yet, can't attribute join of %v", guildID, userID)
			return nil
		}

		s.record(EventFetchFailed)
		return err
	}

	res := Resolve(delta, isBot)

	log.Logger.Debug("resolved join",
		zap.Uint64("guild", uint64(guildID)), zap.Uint64("member", uint64(userID)),
		zap.Bool("bot", isBot), zap.Stringer("result", res.Kind), zap.Int("delta", len(delta)))

	switch res.Kind {
	case NoSignal:
		s.record(EventNoSignal)
		if !res.Anomaly {
			log.Debugf("bot %v joined %v, no invite delta as expected", userID, guildID)
			return nil
		}

		log.Errorf("no invite delta found after user %v joined %v", userID, guildID)
		s.Reporter.Warn(ctx, guildID, fmt.Sprintf("%v joined, but Discord didn't record an invite use for them, so no invite role was granted.", userID.Mention()))
		return nil

	case Ambiguous:
		s.record(EventAmbiguous)
		redacted := make([]string, len(res.Candidates))
		for i, c := range res.Candidates {
			redacted[i] = common.RedactInvite(c)
		}

		log.Infof("not attributing join of %v in %v: %v (%v)", userID, guildID, res.Err(), strings.Join(redacted, ", "))
		s.Reporter.Warn(ctx, guildID, fmt.Sprintf(ambiguousWarning, userID.Mention(), strings.Join(redacted, ", ")))
		return nil
	}

	s.record(EventAttributed)

	outcome, err := s.Policy.Apply(ctx, guildID, res.Code, userID)
	switch outcome {
	case Granted:
		s.record(EventGranted)
	case RoleMissing, InsufficientPrivilege:
		s.record(EventHealed)
		if errors.Is(err, ErrStaleMapping) {
			// already reported to the guild
			log.Infof("removed stale invite role in %v: %v", guildID, err)
			return nil
		}
	case GrantFailed:
		s.record(EventGrantFailed)
	}
	return err
}

// JoinDropped reports a member join that was never queued for attribution.
// The next join's delta will include this member's invite use and be ambiguous.
func (s *Service) JoinDropped(ctx context.Context, guildID discord.GuildID, userID discord.UserID) {
	s.record(EventJoinDropped)
	log.Errorf("dropped join of %v in %v, too many joins queued", userID, guildID)
	s.Reporter.Warn(ctx, guildID, fmt.Sprintf("%v joined while too many other joins were waiting, so no invite role was granted and you should do this manually.", userID.Mention()))
}

// RoleDeleted removes the invite role mapped to a deleted role.
func (s *Service) RoleDeleted(ctx context.Context, guildID discord.GuildID, roleID discord.RoleID) error {
	code, removed, err := PruneRole(ctx, s.Policy.Mappings, guildID, roleID)
	if err != nil {
		return err
	}

	if removed {
		s.record(EventMappingPruned)
		log.Logger.Debug("invite role removed because the role was deleted",
			zap.Uint64("guild", uint64(guildID)), zap.Uint64("role", uint64(roleID)),
			zap.String("code", common.RedactInvite(code)))
	}
	return nil
}
