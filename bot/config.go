package bot

import (
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/BurntSushi/toml"
)

type Config struct {
	Auth   AuthConfig   `toml:"auth"`
	Bot    BotConfig    `toml:"bot"`
	Status StatusConfig `toml:"status"`
}

type AuthConfig struct {
	Discord  string `toml:"discord"`
	Postgres string `toml:"postgres"`
	Redis    string `toml:"redis"`
	Sentry   string `toml:"sentry"`

	Influx AuthInfluxConfig `toml:"influx"`
}

type AuthInfluxConfig struct {
	URL          string `toml:"url"`
	Token        string `toml:"token"`
	Organization string `toml:"organization"`
	Database     string `toml:"database"`
}

// Snapshot store backends.
const (
	SnapshotStoreMemory = "memory"
	SnapshotStoreRedis  = "redis"
)

type BotConfig struct {
	Debug bool `toml:"debug"`

	// TestMode tracks invites and resolves joins, but never grants roles or sends warnings.
	TestMode bool `toml:"test_mode"`

	// NoAutoMigrate specifies if migrations should be done automatically when the bot starts.
	// If this is set to true, migrations must be done manually by running the `migrate` command.
	NoAutoMigrate bool `toml:"no_auto_migrate"`

	FetchTimeout    Duration `toml:"fetch_timeout"`
	GrantTimeout    Duration `toml:"grant_timeout"`
	WarningCooldown Duration `toml:"warning_cooldown"`

	// SnapshotStore is either "memory" or "redis".
	// Redis snapshots survive restarts, but are overwritten when the bot receives the guild again.
	SnapshotStore string `toml:"snapshot_store"`
	MailboxSize   int    `toml:"mailbox_size"`
}

type StatusConfig struct {
	// Port the status server listens on. The server is disabled if this is empty.
	Port string `toml:"port"`
}

// Duration is a time.Duration read from a string such as "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

const (
	defaultFetchTimeout    = 10 * time.Second
	defaultGrantTimeout    = 10 * time.Second
	defaultWarningCooldown = time.Minute
	defaultMailboxSize     = 64
)

// ShouldAct returns true if test mode is not enabled.
func (bot *Bot) ShouldAct() bool {
	return !bot.Config.Bot.TestMode
}

func ReadConfig(path string) (c Config, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "read config file")
	}

	err = toml.Unmarshal(b, &c)
	if err != nil {
		return c, errors.Wrap(err, "unmarshal config")
	}

	c.setDefaults()
	return c, c.validate()
}

func (c *Config) setDefaults() {
	if c.Bot.FetchTimeout.Duration <= 0 {
		c.Bot.FetchTimeout.Duration = defaultFetchTimeout
	}
	if c.Bot.GrantTimeout.Duration <= 0 {
		c.Bot.GrantTimeout.Duration = defaultGrantTimeout
	}
	if c.Bot.WarningCooldown.Duration <= 0 {
		c.Bot.WarningCooldown.Duration = defaultWarningCooldown
	}
	if c.Bot.MailboxSize <= 0 {
		c.Bot.MailboxSize = defaultMailboxSize
	}
	if c.Bot.SnapshotStore == "" {
		c.Bot.SnapshotStore = SnapshotStoreMemory
	}
}

func (c Config) validate() error {
	switch c.Bot.SnapshotStore {
	case SnapshotStoreMemory:
	case SnapshotStoreRedis:
		if c.Auth.Redis == "" {
			return errors.New("snapshot_store is redis, but no redis url is set")
		}
	default:
		return errors.Errorf("unknown snapshot_store %q", c.Bot.SnapshotStore)
	}
	return nil
}
