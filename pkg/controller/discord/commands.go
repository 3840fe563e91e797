package discord

import "github.com/bwmarrin/discordgo"

// Command and option names
const (
	CommandSchedule   = "schedule"
	CommandDiscussion = "create_discussion_post"

	SubcommandLock   = "lock"
	SubcommandUnlock = "unlock"
	SubcommandList   = "list"

	OptionPostLink   = "postlink"
	OptionTime       = "time"
	OptionPaper      = "paper"
	OptionUnlockTime = "unlocktime"
	OptionLock       = "lock"
)

func scheduleActionOptions(verb string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        OptionPostLink,
			Description: "Link of the post to " + verb,
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        OptionTime,
			Description: "Unix timestamp in seconds or milliseconds",
			Required:    true,
		},
	}
}

// Commands returns the slash commands registered in every configured guild
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandSchedule,
			Description: "Schedule lock and unlock of subreddit posts",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandLock,
					Description: "Lock a post at the given time",
					Options:     scheduleActionOptions("lock"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandUnlock,
					Description: "Unlock a post at the given time",
					Options:     scheduleActionOptions("unlock"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandList,
					Description: "List pending scheduled actions",
				},
			},
		},
		{
			Name:        CommandDiscussion,
			Description: "Create a discussion post that unlocks automatically",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionPaper,
					Description: "Name of the paper",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionUnlockTime,
					Description: "Unix timestamp in seconds or milliseconds",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        OptionLock,
					Description: "Lock the post until the unlock time (default true)",
				},
			},
		},
	}
}

// optionMap indexes command options by name
func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		if s, ok := opt.Value.(string); ok {
			return s
		}
	}
	return ""
}

func boolOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, fallback bool) bool {
	if opt, ok := opts[name]; ok {
		if b, ok := opt.Value.(bool); ok {
			return b
		}
	}
	return fallback
}
