package invites

import (
	"context"
	"fmt"
	"sort"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/common"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/starshine-sys/inviteroles/store"
	"go.uber.org/zap"
)

// MappingStore stores which role is granted for which invite.
type MappingStore interface {
	InviteRole(ctx context.Context, guildID discord.GuildID, code string) (roleID discord.RoleID, ok bool, err error)
	InviteRoles(ctx context.Context, guildID discord.GuildID) (map[string]discord.RoleID, error)
	RemoveInviteRole(ctx context.Context, guildID discord.GuildID, code string) error
}

// RoleChecker looks up roles and checks if the bot can assign them.
// Role returns store.ErrNotFound if the role doesn't exist.
type RoleChecker interface {
	Role(ctx context.Context, guildID discord.GuildID, roleID discord.RoleID) (discord.Role, error)
	CanAssign(ctx context.Context, guildID discord.GuildID, role discord.Role) (bool, error)
}

// RoleGranter adds a role to a member.
type RoleGranter interface {
	GrantRole(ctx context.Context, guildID discord.GuildID, userID discord.UserID, roleID discord.RoleID, reason string) error
}

// Reporter delivers a warning to the guild's operators.
type Reporter interface {
	Warn(ctx context.Context, guildID discord.GuildID, msg string)
}

// Outcome is the result of applying an invite role.
type Outcome int

const (
	NoMapping Outcome = iota
	RoleMissing
	InsufficientPrivilege
	Granted
	GrantFailed
)

func (o Outcome) String() string {
	switch o {
	case NoMapping:
		return "no mapping"
	case RoleMissing:
		return "role missing"
	case InsufficientPrivilege:
		return "insufficient privilege"
	case Granted:
		return "granted"
	case GrantFailed:
		return "grant failed"
	}
	return "unknown"
}

// Policy grants invite roles, removing mappings that can't be honoured anymore.
type Policy struct {
	Mappings MappingStore
	Roles    RoleChecker
	Granter  RoleGranter
	Reporter Reporter
}

// Apply grants the role mapped to code to the given member.
//
// A mapping whose role was deleted, or which the bot isn't allowed to assign, is removed and reported,
// and a *StaleMappingError is returned. A failed grant returns a *GrantError and keeps the mapping.
func (p *Policy) Apply(ctx context.Context, guildID discord.GuildID, code string, userID discord.UserID) (Outcome, error) {
	redacted := common.RedactInvite(code)

	roleID, ok, err := p.Mappings.InviteRole(ctx, guildID, code)
	if err != nil {
		return NoMapping, errors.Wrap(err, "getting invite role")
	}
	if !ok {
		log.Logger.Debug("no invite role for invite",
			zap.Uint64("guild", uint64(guildID)), zap.Uint64("member", uint64(userID)), zap.String("code", redacted))
		return NoMapping, nil
	}

	role, err := p.Roles.Role(ctx, guildID, roleID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return NoMapping, errors.Wrap(err, "getting role")
		}

		return RoleMissing, p.heal(ctx, guildID, code, roleID, RoleMissing,
			fmt.Sprintf("Can't grant invite role `I:%v/R:n/a (%v)`: role doesn't exist. Invite role is removed.", redacted, roleID))
	}

	canAssign, err := p.Roles.CanAssign(ctx, guildID, role)
	if err != nil {
		return NoMapping, errors.Wrap(err, "checking role permissions")
	}
	if !canAssign {
		return InsufficientPrivilege, p.heal(ctx, guildID, code, roleID, InsufficientPrivilege,
			fmt.Sprintf("Can't grant invite role `I:%v/R:%v (%v)`: insufficient permissions. Invite role is removed.", redacted, role.Name, roleID))
	}

	err = p.Granter.GrantRole(ctx, guildID, userID, roleID, "Invite role ("+redacted+")")
	if err != nil {
		p.Reporter.Warn(ctx, guildID, fmt.Sprintf("Couldn't grant invite role `I:%v/R:%v (%v)` to %v. You may have to grant it manually.",
			redacted, role.Name, roleID, userID.Mention()))
		return GrantFailed, &GrantError{UserID: userID, RoleID: roleID, Err: err}
	}

	log.Logger.Debug("granted invite role",
		zap.Uint64("guild", uint64(guildID)), zap.Uint64("member", uint64(userID)),
		zap.Uint64("role", uint64(roleID)), zap.String("code", redacted))
	return Granted, nil
}

func (p *Policy) heal(ctx context.Context, guildID discord.GuildID, code string, roleID discord.RoleID, outcome Outcome, warning string) error {
	err := p.Mappings.RemoveInviteRole(ctx, guildID, code)
	if err != nil {
		return errors.Wrap(err, "removing invite role")
	}

	p.Reporter.Warn(ctx, guildID, warning)

	log.Logger.Debug("removed invite role",
		zap.Uint64("guild", uint64(guildID)), zap.Uint64("role", uint64(roleID)),
		zap.String("code", common.RedactInvite(code)), zap.Stringer("outcome", outcome))
	return &StaleMappingError{Code: code, RoleID: roleID, Outcome: outcome}
}

// PruneRole removes the invite role mapped to a deleted role.
// At most one invite maps to any role, so the first match is the only one.
func PruneRole(ctx context.Context, m MappingStore, guildID discord.GuildID, roleID discord.RoleID) (code string, removed bool, err error) {
	mappings, err := m.InviteRoles(ctx, guildID)
	if err != nil {
		return "", false, errors.Wrap(err, "getting invite roles")
	}

	codes := make([]string, 0, len(mappings))
	for c := range mappings {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	for _, c := range codes {
		if mappings[c] != roleID {
			continue
		}

		err = m.RemoveInviteRole(ctx, guildID, c)
		if err != nil {
			return "", false, errors.Wrap(err, "removing invite role")
		}
		return c, true, nil
	}
	return "", false, nil
}
