package bot

import (
	"context"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/starshine-sys/inviteroles/invites"
	"github.com/starshine-sys/inviteroles/store"
)

var _ invites.RoleChecker = (*roleChecker)(nil)

// roleChecker checks roles against the cache, falling back to Discord's API.
type roleChecker struct {
	bot *Bot
}

func (r *roleChecker) Role(ctx context.Context, guildID discord.GuildID, roleID discord.RoleID) (discord.Role, error) {
	role, err := r.bot.Cabinet.Role(ctx, guildID, roleID)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return role, err
	}

	// the cache might be behind, so check with Discord before declaring the role gone
	rls, err := r.bot.Rest.WithContext(ctx).Roles(guildID)
	if err != nil {
		return discord.Role{}, errors.Wrap(err, "getting roles")
	}

	err = r.bot.Cabinet.SetRoles(ctx, guildID, rls)
	if err != nil {
		log.Errorf("setting roles for %v: %v", guildID, err)
	}

	for _, role := range rls {
		if role.ID == roleID {
			return role, nil
		}
	}
	return discord.Role{}, store.ErrNotFound
}

func (r *roleChecker) CanAssign(ctx context.Context, guildID discord.GuildID, role discord.Role) (bool, error) {
	g, err := r.guild(ctx, guildID)
	if err != nil {
		return false, err
	}

	self, err := r.selfMember(ctx, guildID)
	if err != nil {
		return false, err
	}

	rls, err := r.bot.Cabinet.Roles(ctx, guildID)
	if err != nil {
		return false, errors.Wrap(err, "getting roles")
	}

	return canAssign(guildID, g.OwnerID, self, rls, role), nil
}

func (r *roleChecker) guild(ctx context.Context, guildID discord.GuildID) (discord.Guild, error) {
	g, err := r.bot.Cabinet.Guild(ctx, guildID)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return g, err
	}

	gp, err := r.bot.Rest.WithContext(ctx).Guild(guildID)
	if err != nil {
		return discord.Guild{}, errors.Wrap(err, "getting guild")
	}

	err = r.bot.Cabinet.GuildSet(ctx, *gp)
	if err != nil {
		log.Errorf("setting guild %v: %v", guildID, err)
	}
	return *gp, nil
}

func (r *roleChecker) selfMember(ctx context.Context, guildID discord.GuildID) (discord.Member, error) {
	u := r.bot.User()

	m, err := r.bot.Cabinet.Member(ctx, guildID, u.ID)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return m, err
	}

	mp, err := r.bot.Rest.WithContext(ctx).Member(guildID, u.ID)
	if err != nil {
		return discord.Member{}, errors.Wrap(err, "getting own member")
	}

	err = r.bot.Cabinet.SetMember(ctx, guildID, *mp)
	if err != nil {
		log.Errorf("setting own member in %v: %v", guildID, err)
	}
	return *mp, nil
}

// canAssign returns true if self can add target to other members.
func canAssign(guildID discord.GuildID, ownerID discord.UserID, self discord.Member, rls []discord.Role, target discord.Role) bool {
	// @everyone and integration roles can't be added by anyone
	if target.ID == discord.RoleID(guildID) || target.Managed {
		return false
	}

	if self.User.ID == ownerID {
		return true
	}

	byID := make(map[discord.RoleID]discord.Role, len(rls))
	for _, r := range rls {
		byID[r.ID] = r
	}

	perms := byID[discord.RoleID(guildID)].Permissions
	highest := 0
	for _, id := range self.RoleIDs {
		r, ok := byID[id]
		if !ok {
			continue
		}

		perms |= r.Permissions
		if r.Position > highest {
			highest = r.Position
		}
	}

	if !perms.Has(discord.PermissionAdministrator) && !perms.Has(discord.PermissionManageRoles) {
		return false
	}
	return highest > target.Position
}
