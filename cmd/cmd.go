// Package cmd is the inviteroles command-line application.
package cmd

import (
	"os"

	"github.com/starshine-sys/inviteroles/bot"
	botcmd "github.com/starshine-sys/inviteroles/cmd/bot"
	"github.com/starshine-sys/inviteroles/cmd/mapping"
	"github.com/starshine-sys/inviteroles/cmd/migrate"
	"github.com/starshine-sys/inviteroles/common"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/urfave/cli/v2"
)

var app = &cli.App{
	Name:    "inviteroles",
	Usage:   "Grant roles based on the invite a member joined with",
	Version: common.Version(),

	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the configuration file",
			EnvVars: []string{"CONFIG"},
			Value:   "config.toml",
		},
	},

	Before: func(c *cli.Context) error {
		// only the bot command needs a valid configuration
		conf, err := bot.ReadConfig(c.String("config"))
		if err == nil {
			log.SetDebug(conf.Bot.Debug)
		}
		return nil
	},

	Commands: []*cli.Command{
		botcmd.Command,
		migrate.Command,
		mapping.Command,
	},
}

func Run() error {
	defer log.Sync()

	return app.Run(os.Args)
}
