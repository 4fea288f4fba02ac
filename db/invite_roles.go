package db

import (
	"context"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// ErrRoleAlreadyMapped is returned when setting an invite role for a role another invite already grants.
const ErrRoleAlreadyMapped = errors.Sentinel("role is already granted by another invite")

const uniqueViolation = "23505"

type inviteRole struct {
	Code   string
	RoleID int64
}

// InviteRole returns the role granted for an invite.
func (db *DB) InviteRole(ctx context.Context, guildID discord.GuildID, code string) (roleID discord.RoleID, ok bool, err error) {
	sql, args, err := sq.Select("role_id").From("invite_roles").
		Where("guild_id = ?", guildID).Where("code = ?", code).ToSql()
	if err != nil {
		return 0, false, errors.Wrap(err, "building sql")
	}

	var id int64
	err = db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "executing query")
	}
	return discord.RoleID(id), true, nil
}

// InviteRoles returns all invite roles in a guild.
func (db *DB) InviteRoles(ctx context.Context, guildID discord.GuildID) (map[string]discord.RoleID, error) {
	sql, args, err := sq.Select("code", "role_id").From("invite_roles").
		Where("guild_id = ?", guildID).OrderBy("code").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building sql")
	}

	var rows []inviteRole
	err = pgxscan.Select(ctx, db, &rows, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "executing query")
	}

	out := make(map[string]discord.RoleID, len(rows))
	for _, r := range rows {
		out[r.Code] = discord.RoleID(r.RoleID)
	}
	return out, nil
}

// SetInviteRole sets the role granted for an invite, replacing any role the invite already granted.
// Returns ErrRoleAlreadyMapped if another invite grants the role.
func (db *DB) SetInviteRole(ctx context.Context, guildID discord.GuildID, code string, roleID discord.RoleID) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sql, args, err := sq.Select("code").From("invite_roles").
		Where("guild_id = ?", guildID).Where("role_id = ?", roleID).ToSql()
	if err != nil {
		return errors.Wrap(err, "building sql")
	}

	var existing string
	err = tx.QueryRow(ctx, sql, args...).Scan(&existing)
	if err == nil && existing != code {
		return ErrRoleAlreadyMapped
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return errors.Wrap(err, "checking existing invite role")
	}

	sql, args, err = sq.Insert("guilds").Columns("id").Values(guildID).Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return errors.Wrap(err, "building sql")
	}
	_, err = tx.Exec(ctx, sql, args...)
	if err != nil {
		return errors.Wrap(err, "creating guild")
	}

	sql, args, err = sq.Insert("invite_roles").
		Columns("guild_id", "code", "role_id").
		Values(guildID, code, roleID).
		Suffix("ON CONFLICT (guild_id, code) DO UPDATE SET role_id = EXCLUDED.role_id").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building sql")
	}

	_, err = tx.Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrRoleAlreadyMapped
		}
		return errors.Wrap(err, "executing query")
	}

	return errors.Wrap(tx.Commit(ctx), "committing transaction")
}

// RemoveInviteRole removes the role for an invite. Removing an invite without a role is not an error.
func (db *DB) RemoveInviteRole(ctx context.Context, guildID discord.GuildID, code string) error {
	sql, args, err := sq.Delete("invite_roles").
		Where("guild_id = ?", guildID).Where("code = ?", code).ToSql()
	if err != nil {
		return errors.Wrap(err, "building sql")
	}

	_, err = db.Exec(ctx, sql, args...)
	if err != nil {
		return errors.Wrap(err, "executing query")
	}
	return nil
}
