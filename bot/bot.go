// Package bot wires the Discord gateway and REST API to the invite tracker.
package bot

import (
	"context"
	"sync"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session/shard"
	"github.com/diamondburned/arikawa/v3/state"
	arikawastore "github.com/diamondburned/arikawa/v3/state/store"
	"github.com/diamondburned/arikawa/v3/utils/ws"
	"github.com/starshine-sys/inviteroles/common/log"
	"github.com/starshine-sys/inviteroles/community"
	"github.com/starshine-sys/inviteroles/db"
	"github.com/starshine-sys/inviteroles/invites"
	"github.com/starshine-sys/inviteroles/stats"
	"github.com/starshine-sys/inviteroles/store"
	"github.com/starshine-sys/inviteroles/store/memory"
	"github.com/starshine-sys/inviteroles/store/redis"
)

const Intents = gateway.IntentGuilds |
	gateway.IntentGuildInvites |
	gateway.IntentGuildMembers

type Bot struct {
	Manager *shard.Manager
	Rest    *api.Client
	DB      *db.DB

	Config Config

	Cabinet  store.Cabinet
	Registry *community.Registry
	Service  *invites.Service
	Stats    *stats.Client
	Warner   *Warner

	redis *redis.Store

	user   discord.User
	userMu sync.RWMutex
}

// New creates a new Bot. ctx is the bot's lifetime, and is passed to every guild worker.
func New(ctx context.Context, c Config) (*Bot, error) {
	ws.WSDebug = log.Debug
	ws.WSError = func(err error) {
		log.SugaredLogger.Error("ws error: ", err)
	}

	mgr, err := shard.NewManager("Bot "+c.Auth.Discord, state.NewShardFunc(func(m *shard.Manager, s *state.State) {
		s.AddIntents(Intents)

		// events for a guild must be handled in the order they arrive
		s.Handler.Synchronous = true

		// guilds, roles and our own member are cached by us, everything else is unused
		s.Cabinet.ChannelStore = arikawastore.Noop
		s.Cabinet.EmojiStore = arikawastore.Noop
		s.Cabinet.GuildStore = arikawastore.Noop
		s.Cabinet.MemberStore = arikawastore.Noop
		s.Cabinet.MessageStore = arikawastore.Noop
		s.Cabinet.PresenceStore = arikawastore.Noop
		s.Cabinet.RoleStore = arikawastore.Noop
		s.Cabinet.VoiceStateStore = arikawastore.Noop
	}))
	if err != nil {
		return nil, errors.Wrap(err, "creating shard manager")
	}

	bot := &Bot{
		Manager: mgr,
		Rest:    api.NewClient("Bot " + c.Auth.Discord),
		Config:  c,
	}
	bot.Rest.OnResponse = append(bot.Rest.OnResponse, bot.onResponse)

	bot.DB, err = db.New(ctx, c.Auth.Postgres, !c.Bot.NoAutoMigrate)
	if err != nil {
		return nil, errors.Wrap(err, "creating database")
	}

	memoryStore := memory.New()
	bot.Cabinet = store.Cabinet{
		GuildStore:    memoryStore,
		RoleStore:     memoryStore,
		MemberStore:   memoryStore,
		SnapshotStore: memoryStore,
	}

	if c.Bot.SnapshotStore == SnapshotStoreRedis {
		bot.redis, err = redis.New(ctx, c.Auth.Redis)
		if err != nil {
			bot.DB.Close()
			return nil, errors.Wrap(err, "creating redis store")
		}
		bot.Cabinet.SnapshotStore = bot.redis
	}

	if c.Auth.Influx.URL != "" {
		bot.Stats = stats.NewInflux(ctx, c.Auth.Influx.URL, c.Auth.Influx.Token, c.Auth.Influx.Organization, c.Auth.Influx.Database)
	} else {
		bot.Stats = stats.New()
	}

	bot.Warner = newWarner(bot, c.Bot.WarningCooldown.Duration)

	bot.Service = &invites.Service{
		Tracker: invites.NewTracker(&timedFetcher{
			timeout: c.Bot.FetchTimeout.Duration,
			fetch:   bot.fetchInviteUses,
		}, bot.Cabinet.SnapshotStore),
		Policy: &invites.Policy{
			Mappings: bot.DB,
			Roles:    &roleChecker{bot: bot},
			Granter:  bot,
			Reporter: bot.Warner,
		},
		Reporter: bot.Warner,
		Recorder: bot.Stats,
	}

	bot.Registry = community.NewRegistry(ctx, bot.dispatcher(), c.Bot.MailboxSize)
	bot.Registry.OnError = bot.reportNotification

	bot.AddHandler(bot.ready)

	return bot, nil
}

func (bot *Bot) Open(ctx context.Context) error {
	log.Debug("opening gateway connection")

	return bot.Manager.Open(ctx)
}

// Close disconnects from Discord, then waits for all guild workers to finish.
func (bot *Bot) Close() (err error) {
	err = bot.Manager.Close()

	bot.Registry.Close()
	bot.Warner.Close()
	bot.DB.Close()

	if bot.redis != nil {
		if rerr := bot.redis.Close(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

// AddHandler adds handlers to all states.
func (bot *Bot) AddHandler(i ...any) {
	bot.Manager.ForEach(func(shard shard.Shard) {
		s := shard.(*state.State)
		for _, hn := range i {
			s.AddHandler(hn)
		}
	})
}

// User returns the bot user.
func (bot *Bot) User() discord.User {
	bot.userMu.RLock()
	defer bot.userMu.RUnlock()
	return bot.user
}

func (bot *Bot) ready(ev *gateway.ReadyEvent) {
	bot.userMu.Lock()
	bot.user = ev.User
	bot.userMu.Unlock()
}
