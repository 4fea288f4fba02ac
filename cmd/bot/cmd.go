package bot

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"emperror.dev/errors"
	"github.com/getsentry/sentry-go"
	"github.com/starshine-sys/inviteroles/bot"
	"github.com/starshine-sys/inviteroles/common"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/starshine-sys/inviteroles/handlers/cache"
	"github.com/starshine-sys/inviteroles/handlers/members"
	"github.com/starshine-sys/inviteroles/handlers/meta"
	"github.com/starshine-sys/inviteroles/handlers/roles"
	"github.com/starshine-sys/inviteroles/web/server"
	"github.com/urfave/cli/v2"
)

var Command = &cli.Command{
	Name:   "bot",
	Usage:  "Run the bot",
	Action: run,
}

func run(c *cli.Context) error {
	conf, err := bot.ReadConfig(c.String("config"))
	if err != nil {
		return errors.Wrap(err, "reading config")
	}

	if conf.Bot.TestMode {
		log.Info("Test mode is enabled, no roles will be granted and no warnings will be sent")
	}

	// set up sentry
	if conf.Auth.Sentry != "" {
		log.Debug("setting up sentry")
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     conf.Auth.Sentry,
			Release: common.Version(),
		})
		if err != nil {
			log.Fatalf("setting up sentry: %v", err)
		}

		log.Debug("set up sentry")
	} else {
		log.Debugf("sentry DSN was not provided, not setting it up")
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := bot.New(ctx, conf)
	if err != nil {
		return errors.Wrap(err, "creating bot")
	}

	// cache handlers first, so guilds and roles are cached before workers use them
	cache.Setup(b)
	meta.Setup(b)
	members.Setup(b)
	roles.Setup(b)

	if conf.Status.Port != "" {
		srv := server.New(b.Registry, b.Stats)
		go func() {
			err := srv.Listen(ctx, conf.Status.Port)
			if err != nil {
				log.Errorf("status server: %v", err)
			}
		}()
	}

	err = b.Open(ctx)
	if err != nil {
		return errors.Wrap(err, "opening gateway connection")
	}

	defer func() {
		err = b.Close()
		if err != nil {
			log.Errorf("closing bot: %v", err)
		}
		sentry.Flush(sentryFlushTimeout)
	}()

	log.Info("Connected to Discord. Press Ctrl-C or send an interrupt signal to stop.")

	<-ctx.Done()
	log.Info("Interrupt signal received. Shutting down...")
	return nil
}

const sentryFlushTimeout = 2 * time.Second
