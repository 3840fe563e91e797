package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the guild configuration file
type AppConfig struct {
	Guilds []Guild `toml:"guild"`
}

// Guild binds a Discord guild to a subreddit
type Guild struct {
	ID             string     `toml:"id"`
	Name           string     `toml:"name"`
	Subreddit      string     `toml:"subreddit"`
	ModeratorRoles []string   `toml:"moderator_roles"`
	LogChannels    []string   `toml:"log_channels"`
	Relay          Relay      `toml:"relay"`
	Discussion     Discussion `toml:"discussion"`
}

// Relay configures new post relay. Relay is disabled without a channel.
type Relay struct {
	Channel  string `toml:"channel"`
	Schedule string `toml:"schedule"`
}

// Discussion configures discussion posts
type Discussion struct {
	FlairID       string `toml:"flair_id"`
	TitleTemplate string `toml:"title_template"`
	BodyTemplate  string `toml:"body_template"`
}

// Validate checks if the Guild is valid
func (g *Guild) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return goerr.Wrap(ErrMissingGuildID, "invalid guild", goerr.V("name", g.Name))
	}
	if strings.TrimSpace(g.Subreddit) == "" {
		return goerr.Wrap(ErrMissingSubreddit, "invalid guild", goerr.V(GuildIDKey, g.ID))
	}
	if len(g.ModeratorRoles) == 0 {
		return goerr.Wrap(ErrMissingModeratorRoles, "invalid guild", goerr.V(GuildIDKey, g.ID))
	}

	if g.Relay.Channel != "" {
		spec := g.toEntry().Relay.CronSpec()
		if _, err := cron.ParseStandard(spec); err != nil {
			return goerr.Wrap(ErrInvalidSchedule, "invalid guild",
				goerr.V(GuildIDKey, g.ID),
				goerr.V(ScheduleKey, spec),
				goerr.V("cause", err.Error()))
		}
	}

	if err := g.toEntry().Discussion.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidTemplate, "invalid guild",
			goerr.V(GuildIDKey, g.ID),
			goerr.V("cause", err.Error()))
	}

	return nil
}

func (g *Guild) toEntry() *model.GuildEntry {
	return &model.GuildEntry{
		ID:               g.ID,
		Name:             g.Name,
		Subreddit:        strings.TrimPrefix(g.Subreddit, "r/"),
		ModeratorRoleIDs: g.ModeratorRoles,
		LogChannelIDs:    g.LogChannels,
		Relay: model.RelayConfig{
			ChannelID: g.Relay.Channel,
			Schedule:  g.Relay.Schedule,
		},
		Discussion: model.DiscussionConfig{
			FlairID:       g.Discussion.FlairID,
			TitleTemplate: g.Discussion.TitleTemplate,
			BodyTemplate:  g.Discussion.BodyTemplate,
		},
	}
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if len(a.Guilds) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "at least one guild is required")
	}

	guildIDs := make(map[string]bool)
	for i := range a.Guilds {
		g := &a.Guilds[i]
		if err := g.Validate(); err != nil {
			return goerr.Wrap(err, "invalid guild", goerr.V(GuildIndexKey, i))
		}
		if guildIDs[g.ID] {
			return goerr.Wrap(ErrDuplicateGuildID, "invalid guild", goerr.V(GuildIDKey, g.ID))
		}
		guildIDs[g.ID] = true
	}

	return nil
}

// ToRegistry converts AppConfig to a guild registry
func (a *AppConfig) ToRegistry() *model.GuildRegistry {
	registry := model.NewGuildRegistry()
	for i := range a.Guilds {
		registry.Register(a.Guilds[i].toEntry())
	}
	return registry
}

// LoadAppConfiguration loads the guild configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// Guilds holds the CLI flag pointing at the guild configuration file
type Guilds struct {
	path string
}

func (x *Guilds) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the guild configuration TOML file",
			Value:       "modbridge.toml",
			Sources:     cli.EnvVars("MODBRIDGE_CONFIG"),
			Destination: &x.path,
		},
	}
}

func (x Guilds) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads and validates the configuration file
func (x *Guilds) Configure() (*AppConfig, *model.GuildRegistry, error) {
	cfg, err := LoadAppConfiguration(x.path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.ToRegistry(), nil
}
