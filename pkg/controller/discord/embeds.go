package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rigcse/modbridge/pkg/usecase"
)

const (
	// MaxFieldsPerEmbed is the Discord limit of fields in one embed
	MaxFieldsPerEmbed = 25

	maxTitleLength = 25
	unknownTitle   = "Unknown Post"
)

// BuildPendingEmbeds renders pending locks and unlocks. Each group is split
// into as many embeds as needed to respect the field limit.
func BuildPendingEmbeds(pending *usecase.PendingActions) []*discordgo.MessageEmbed {
	if pending == nil {
		return nil
	}
	var embeds []*discordgo.MessageEmbed
	embeds = append(embeds, groupEmbeds("Pending Locks", usecase.ColorLocks, pending.Locks)...)
	embeds = append(embeds, groupEmbeds("Pending Unlocks", usecase.ColorUnlocks, pending.Unlocks)...)
	return embeds
}

func groupEmbeds(title string, color int, entries []*usecase.PendingEntry) []*discordgo.MessageEmbed {
	var embeds []*discordgo.MessageEmbed
	for start := 0; start < len(entries); start += MaxFieldsPerEmbed {
		end := min(start+MaxFieldsPerEmbed, len(entries))

		fields := make([]*discordgo.MessageEmbedField, 0, end-start)
		for _, entry := range entries[start:end] {
			fields = append(fields, pendingField(entry))
		}
		embeds = append(embeds, &discordgo.MessageEmbed{
			Title:  title,
			Color:  color,
			Fields: fields,
		})
	}
	return embeds
}

func pendingField(entry *usecase.PendingEntry) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{
		Name: fieldTitle(entry.Title),
		Value: fmt.Sprintf("%s\n%s\nby %s",
			entry.Action.PostLink,
			usecase.DiscordTimestamp(entry.Action.DueAt),
			entry.Action.ScheduledBy),
	}
}

func fieldTitle(title string) string {
	if title == "" {
		return unknownTitle
	}
	if len([]rune(title)) > maxTitleLength {
		return usecase.Truncate(title, maxTitleLength) + "..."
	}
	return title
}
