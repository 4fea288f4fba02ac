// Package mapping is the operator tool for managing invite roles.
package mapping

import (
	"context"
	"fmt"
	"sort"
	"time"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/inviteroles/bot"
	"github.com/starshine-sys/inviteroles/common"
	"github.com/starshine-sys/inviteroles/db"
	"github.com/urfave/cli/v2"
)

var Command = &cli.Command{
	Name:  "map",
	Usage: "Manage invite roles",
	Subcommands: []*cli.Command{
		{
			Name:      "set",
			Usage:     "Grant a role to members joining with an invite",
			ArgsUsage: "<guild ID> <invite code> <role ID>",
			Action:    set,
		},
		{
			Name:      "remove",
			Usage:     "Stop granting a role for an invite",
			ArgsUsage: "<guild ID> <invite code>",
			Action:    remove,
		},
		{
			Name:      "list",
			Usage:     "List a guild's invite roles",
			ArgsUsage: "<guild ID>",
			Action:    list,
		},
		{
			Name:      "warnings",
			Usage:     "Set the channel invite role warnings are sent to, or 0 to disable them",
			ArgsUsage: "<guild ID> <channel ID>",
			Action:    warnings,
		},
	},
}

func connect(c *cli.Context) (*db.DB, error) {
	conf, err := bot.ReadConfig(c.String("config"))
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	if conf.Auth.Postgres == "" {
		return nil, cli.Exit("No database url set in the config file.", 1)
	}

	return db.New(c.Context, conf.Auth.Postgres, !conf.Bot.NoAutoMigrate)
}

// parseIDs parses the first n arguments as snowflakes, skipping the argument at index skip (-1 for none).
func parseIDs(args cli.Args, n, skip int) ([]discord.Snowflake, error) {
	if args.Len() != n {
		return nil, cli.Exit(fmt.Sprintf("Expected %d arguments, got %d.", n, args.Len()), 1)
	}

	ids := make([]discord.Snowflake, n)
	for i := 0; i < n; i++ {
		if i == skip {
			continue
		}

		sf, err := discord.ParseSnowflake(args.Get(i))
		if err != nil {
			return nil, cli.Exit(fmt.Sprintf("%q is not a valid ID.", args.Get(i)), 1)
		}
		ids[i] = sf
	}
	return ids, nil
}

func set(c *cli.Context) error {
	ids, err := parseIDs(c.Args(), 3, 1)
	if err != nil {
		return err
	}
	guildID, code, roleID := discord.GuildID(ids[0]), c.Args().Get(1), discord.RoleID(ids[2])

	d, err := connect(c)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	err = d.SetInviteRole(ctx, guildID, code, roleID)
	if err != nil {
		if errors.Is(err, db.ErrRoleAlreadyMapped) {
			return cli.Exit("That role is already granted by another invite.", 1)
		}
		return errors.Wrap(err, "setting invite role")
	}

	fmt.Fprintf(c.App.Writer, "Members joining with %v will now get role %v.\n", common.RedactInvite(code), roleID)
	return nil
}

func remove(c *cli.Context) error {
	ids, err := parseIDs(c.Args(), 2, 1)
	if err != nil {
		return err
	}
	guildID, code := discord.GuildID(ids[0]), c.Args().Get(1)

	d, err := connect(c)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	err = d.RemoveInviteRole(ctx, guildID, code)
	if err != nil {
		return errors.Wrap(err, "removing invite role")
	}

	fmt.Fprintf(c.App.Writer, "Removed the invite role for %v.\n", common.RedactInvite(code))
	return nil
}

func list(c *cli.Context) error {
	ids, err := parseIDs(c.Args(), 1, -1)
	if err != nil {
		return err
	}
	guildID := discord.GuildID(ids[0])

	d, err := connect(c)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	mappings, err := d.InviteRoles(ctx, guildID)
	if err != nil {
		return errors.Wrap(err, "getting invite roles")
	}

	if len(mappings) == 0 {
		fmt.Fprintln(c.App.Writer, "This guild has no invite roles.")
		return nil
	}

	for _, line := range formatMappings(mappings) {
		fmt.Fprintln(c.App.Writer, line)
	}
	return nil
}

func warnings(c *cli.Context) error {
	ids, err := parseIDs(c.Args(), 2, -1)
	if err != nil {
		return err
	}
	guildID, channelID := discord.GuildID(ids[0]), discord.ChannelID(ids[1])

	d, err := connect(c)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()

	err = d.SetWarningChannel(ctx, guildID, channelID)
	if err != nil {
		return errors.Wrap(err, "setting warning channel")
	}

	if !channelID.IsValid() {
		fmt.Fprintln(c.App.Writer, "Warnings are now only logged.")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Warnings will be sent to %v.\n", channelID)
	return nil
}

// formatMappings lists mappings sorted by code. Codes are shown in full, this is an operator tool.
func formatMappings(mappings map[string]discord.RoleID) []string {
	codes := make([]string, 0, len(mappings))
	for code := range mappings {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	lines := make([]string, len(codes))
	for i, code := range codes {
		lines[i] = fmt.Sprintf("%v\t%v", code, mappings[code])
	}
	return lines
}
