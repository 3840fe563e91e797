package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/service/discord"
	"github.com/rigcse/modbridge/pkg/utils/errutil"
	"github.com/rigcse/modbridge/pkg/utils/logging"
)

// Embed colors
const (
	ColorSuccess = 0x00FF00
	ColorError   = 0xFF0000
	ColorLocks   = 0xFFA500
	ColorUnlocks = 0x00FFFF
	ColorRelay   = 0xE75318
)

// maxErrorTextLength bounds each text block of an error report
const maxErrorTextLength = 1000

// DiscordTimestamp renders t as absolute and relative Discord timestamps
func DiscordTimestamp(t time.Time) string {
	unix := t.Unix()
	return fmt.Sprintf("<t:%d:F> (<t:%d:R>)", unix, unix)
}

// Truncate shortens s to at most n runes
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Notifier sends scheduler events to Discord. Delivery failures are logged, never returned.
type Notifier struct {
	discord  discord.Service
	registry *model.GuildRegistry
	clock    Clock
}

func NewNotifier(discordService discord.Service, registry *model.GuildRegistry) *Notifier {
	if registry == nil {
		registry = model.NewGuildRegistry()
	}
	return &Notifier{
		discord:  discordService,
		registry: registry,
		clock:    defaultClock,
	}
}

func (n *Notifier) send(ctx context.Context, channelID, content string, embeds ...*discordgo.MessageEmbed) {
	if n.discord == nil || channelID == "" {
		logging.From(ctx).Debug("notification skipped", "channel_id", channelID)
		return
	}
	if err := n.discord.SendMessage(ctx, channelID, content, embeds...); err != nil {
		errutil.Handle(ctx, err, "failed to send notification")
	}
}

func (n *Notifier) timestamp() string {
	return n.clock().UTC().Format(time.RFC3339)
}

func actionFields(action *model.ScheduledAction) []*discordgo.MessageEmbedField {
	return []*discordgo.MessageEmbedField{
		{Name: "Post", Value: action.PostLink},
		{Name: "Time", Value: DiscordTimestamp(action.DueAt)},
		{Name: "Scheduled by", Value: action.ScheduledBy, Inline: true},
	}
}

// Scheduled announces a newly created action
func (n *Notifier) Scheduled(ctx context.Context, action *model.ScheduledAction) {
	n.send(ctx, action.ChannelID, "", &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Scheduled", action.Type.Title()),
		Description: fmt.Sprintf("The post will be %s at %s.", action.Type.PastTense(), DiscordTimestamp(action.DueAt)),
		Color:       ColorSuccess,
		Fields:      actionFields(action),
		Timestamp:   n.timestamp(),
	})
}

// Rescheduled announces that action replaced previous
func (n *Notifier) Rescheduled(ctx context.Context, previous, action *model.ScheduledAction) {
	fields := actionFields(action)
	fields = append(fields, &discordgo.MessageEmbedField{Name: "Previously", Value: DiscordTimestamp(previous.DueAt)})
	n.send(ctx, action.ChannelID, "", &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Rescheduled", action.Type.Title()),
		Description: fmt.Sprintf("The post will now be %s at %s.", action.Type.PastTense(), DiscordTimestamp(action.DueAt)),
		Color:       ColorSuccess,
		Fields:      fields,
		Timestamp:   n.timestamp(),
	})
}

// Executed announces that a scheduled action ran
func (n *Notifier) Executed(ctx context.Context, action *model.ScheduledAction) {
	n.send(ctx, action.ChannelID, "", &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Post %s", Titlecase(action.Type.PastTense())),
		Description: fmt.Sprintf("The post has been %s as scheduled by %s.", action.Type.PastTense(), action.ScheduledBy),
		Color:       ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Post", Value: action.PostLink},
		},
		Timestamp: n.timestamp(),
	})
}

// ExecutionFailed reports a failed attempt that will be retried
func (n *Notifier) ExecutionFailed(ctx context.Context, action *model.ScheduledAction, outcome *ExecutionOutcome) {
	n.send(ctx, action.ChannelID, "", &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Failed to %s post", action.Type),
		Description: "The action will be retried on the next run.",
		Color:       ColorError,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Post", Value: action.PostLink},
			{Name: "Error", Value: Truncate(outcome.Message, maxErrorTextLength)},
			{Name: "Attempts", Value: fmt.Sprintf("%d", action.AttemptCount), Inline: true},
		},
		Timestamp: n.timestamp(),
	})
}

// DeadLettered reports an action dropped after too many failures
func (n *Notifier) DeadLettered(ctx context.Context, action *model.ScheduledAction, outcome *ExecutionOutcome) {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Gave up on %s", action.Type),
		Description: fmt.Sprintf("The scheduled %s failed %d times and was removed. Please do it manually.", action.Type, action.AttemptCount),
		Color:       ColorError,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Post", Value: action.PostLink},
			{Name: "Last error", Value: Truncate(outcome.Message, maxErrorTextLength)},
			{Name: "Scheduled by", Value: action.ScheduledBy, Inline: true},
		},
		Timestamp: n.timestamp(),
	}
	n.send(ctx, action.ChannelID, "", embed)
	n.ReportError(ctx, action.GuildID, "Scheduled action dropped", outcome.Err)
}

// ReportError posts an error report to every log channel of the guild
func (n *Notifier) ReportError(ctx context.Context, guildID, title string, err error) {
	if err == nil {
		return
	}
	guild, gErr := n.registry.Get(guildID)
	if gErr != nil || len(guild.LogChannelIDs) == 0 {
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: ColorError,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Message", Value: Truncate(err.Error(), maxErrorTextLength)},
			{Name: "Detail", Value: "```" + Truncate(fmt.Sprintf("%+v", err), maxErrorTextLength) + "```"},
		},
		Timestamp: n.timestamp(),
	}
	for _, channelID := range guild.LogChannelIDs {
		n.send(ctx, channelID, "", embed)
	}
}

// Titlecase upper-cases the first ASCII letter of s
func Titlecase(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
