package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound        = goerr.New("configuration file not found")
	ErrInvalidConfig         = goerr.New("invalid configuration")
	ErrMissingGuildID        = goerr.New("guild id is required")
	ErrDuplicateGuildID      = goerr.New("duplicate guild ID")
	ErrMissingSubreddit      = goerr.New("subreddit is required")
	ErrMissingModeratorRoles = goerr.New("at least one moderator role is required")
	ErrInvalidSchedule       = goerr.New("invalid relay schedule")
	ErrInvalidTemplate       = goerr.New("invalid discussion template")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	GuildIDKey    = "guild_id"
	GuildIndexKey = "guild_index"
	ScheduleKey   = "schedule"
)
