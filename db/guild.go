package db

import (
	"context"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/jackc/pgx/v4"
)

// CreateGuild adds a guild to the database, if it isn't in it already.
func (db *DB) CreateGuild(ctx context.Context, id discord.GuildID) (alreadyExists bool, err error) {
	sql, args, err := sq.Insert("guilds").
		Columns("id").
		Values(id).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, "building sql")
	}

	ct, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return false, errors.Wrap(err, "executing query")
	}

	return ct.RowsAffected() == 0, nil
}

// WarningChannel returns the channel warnings for the guild are sent to.
// If no channel is set, the returned ID is not valid.
func (db *DB) WarningChannel(ctx context.Context, guildID discord.GuildID) (discord.ChannelID, error) {
	sql, args, err := sq.Select("warning_channel").From("guilds").Where("id = ?", guildID).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building sql")
	}

	var id int64
	err = db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "executing query")
	}
	return discord.ChannelID(id), nil
}

// SetWarningChannel sets the guild's warning channel. A zero ID disables warnings.
func (db *DB) SetWarningChannel(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) error {
	sql, args, err := sq.Insert("guilds").
		Columns("id", "warning_channel").
		Values(guildID, channelID).
		Suffix("ON CONFLICT (id) DO UPDATE SET warning_channel = EXCLUDED.warning_channel").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building sql")
	}

	_, err = db.Exec(ctx, sql, args...)
	if err != nil {
		return errors.Wrap(err, "executing query")
	}
	return nil
}
