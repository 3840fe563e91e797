package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/domain/types"
	discordsvc "github.com/rigcse/modbridge/pkg/service/discord"
	"github.com/rigcse/modbridge/pkg/usecase"
	"github.com/rigcse/modbridge/pkg/utils/errutil"
	"github.com/rigcse/modbridge/pkg/utils/logging"
)

// User facing replies
const (
	msgNotInGuild        = "This command can only be used in a server."
	msgNotOverwritten    = "The action was not overwritten."
	msgPersistenceFailed = "Failed to schedule the action. Please try again later."
	msgRemoteFailed      = "Failed to reach Reddit. Please try again later."
	msgUnexpected        = "An unexpected error occurred. Please try again later."
	msgNoPending         = "There are no pending actions."
	msgConfirmExpired    = "This confirmation has expired."
	msgConfirmNotYours   = "This confirmation is not for you."
	msgProcessing        = "Processing..."
)

// Session is the subset of *discordgo.Session used to answer interactions
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Handler answers slash commands and overwrite buttons
type Handler struct {
	uc       *usecase.UseCases
	session  Session
	confirms *confirmRegistry
}

func NewHandler(uc *usecase.UseCases, session Session) *Handler {
	return &Handler{
		uc:       uc,
		session:  session,
		confirms: newConfirmRegistry(),
	}
}

// OnInteractionCreate is registered with discordgo.Session.AddHandler
func (h *Handler) OnInteractionCreate(_ *discordgo.Session, event *discordgo.InteractionCreate) {
	ctx := context.Background()
	h.Handle(ctx, event.Interaction)
}

// Handle dispatches a single interaction
func (h *Handler) Handle(ctx context.Context, i *discordgo.Interaction) {
	logger := logging.From(ctx).With(
		slog.String("interaction_id", i.ID),
		slog.String("guild_id", i.GuildID),
		slog.String("channel_id", i.ChannelID),
	)
	ctx = logging.With(ctx, logger)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(ctx, i)
	default:
		logger.Debug("ignoring interaction", slog.Int("type", int(i.Type)))
	}
}

type requester struct {
	id      string
	name    string
	roleIDs []string
}

func requesterOf(i *discordgo.Interaction) (*requester, bool) {
	if i.Member == nil || i.Member.User == nil || i.GuildID == "" {
		return nil, false
	}
	return &requester{
		id:      i.Member.User.ID,
		name:    i.Member.User.Username,
		roleIDs: i.Member.Roles,
	}, true
}

func (h *Handler) handleCommand(ctx context.Context, i *discordgo.Interaction) {
	if err := h.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx)); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to defer interaction response"), "interaction")
		return
	}

	user, ok := requesterOf(i)
	if !ok {
		h.reply(ctx, i, msgNotInGuild)
		return
	}

	if _, err := h.uc.Auth.Authorize(ctx, i.GuildID, user.id, user.roleIDs); err != nil {
		h.replyError(ctx, i, err)
		return
	}

	data := i.ApplicationCommandData()
	logging.From(ctx).Info("command received",
		slog.String("command", data.Name),
		slog.String("user_id", user.id))

	switch data.Name {
	case CommandSchedule:
		if len(data.Options) == 0 {
			h.reply(ctx, i, "Unknown subcommand.")
			return
		}
		sub := data.Options[0]
		switch sub.Name {
		case SubcommandLock:
			h.schedule(ctx, i, user, types.ActionTypeLock, optionMap(sub.Options))
		case SubcommandUnlock:
			h.schedule(ctx, i, user, types.ActionTypeUnlock, optionMap(sub.Options))
		case SubcommandList:
			h.list(ctx, i)
		default:
			h.reply(ctx, i, "Unknown subcommand.")
		}
	case CommandDiscussion:
		h.discussion(ctx, i, user, optionMap(data.Options))
	default:
		h.reply(ctx, i, "Unknown command.")
	}
}

func (h *Handler) schedule(ctx context.Context, i *discordgo.Interaction, user *requester, actionType types.ActionType, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	req := usecase.ScheduleRequest{
		GuildID:       i.GuildID,
		Type:          actionType,
		PostLink:      stringOption(opts, OptionPostLink),
		Time:          stringOption(opts, OptionTime),
		ChannelID:     i.ChannelID,
		RequestedBy:   user.name,
		RequestedByID: user.id,
	}

	result, err := h.uc.Action.Schedule(ctx, req, h.confirmFunc(i, user.id))
	if err != nil {
		h.replyError(ctx, i, err)
		return
	}

	switch result.Outcome {
	case usecase.OutcomeCreated:
		h.reply(ctx, i, fmt.Sprintf("Post will be %s at %s.",
			actionType.PastTense(), usecase.DiscordTimestamp(result.Action.DueAt)))
	case usecase.OutcomeReplaced:
		h.reply(ctx, i, fmt.Sprintf("The action was overwritten. Post will be %s at %s.",
			actionType.PastTense(), usecase.DiscordTimestamp(result.Action.DueAt)))
	default:
		h.reply(ctx, i, msgNotOverwritten)
	}
}

// confirmFunc asks the requester with Yes/No buttons on the deferred reply
func (h *Handler) confirmFunc(i *discordgo.Interaction, userID string) usecase.ConfirmFunc {
	return func(ctx context.Context, existing *model.ScheduledAction) (bool, error) {
		token, answer, release := h.confirms.register(userID)
		defer release()

		content := fmt.Sprintf("A %s is already scheduled for this post at %s by %s. Do you want to overwrite it?",
			existing.Type, usecase.DiscordTimestamp(existing.DueAt), existing.ScheduledBy)
		components := []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Yes", Style: discordgo.DangerButton, CustomID: overwriteYesPrefix + token},
					discordgo.Button{Label: "No", Style: discordgo.SecondaryButton, CustomID: overwriteNoPrefix + token},
				},
			},
		}
		if _, err := h.session.InteractionResponseEdit(i, &discordgo.WebhookEdit{
			Content:    &content,
			Components: &components,
		}, discordgo.WithContext(ctx)); err != nil {
			return false, goerr.Wrap(err, "failed to ask for overwrite confirmation")
		}

		select {
		case yes := <-answer:
			return yes, nil
		case <-ctx.Done():
			return false, nil
		}
	}
}

func (h *Handler) list(ctx context.Context, i *discordgo.Interaction) {
	pending, err := h.uc.Action.ListPending(ctx, i.GuildID)
	if err != nil {
		h.replyError(ctx, i, err)
		return
	}

	embeds := BuildPendingEmbeds(pending)
	if len(embeds) == 0 {
		h.reply(ctx, i, msgNoPending)
		return
	}

	for idx, chunk := range discordsvc.ChunkEmbeds(embeds) {
		if idx == 0 {
			h.edit(ctx, i, "", chunk)
			continue
		}
		if _, err := h.session.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
			Embeds: chunk,
			Flags:  discordgo.MessageFlagsEphemeral,
		}, discordgo.WithContext(ctx)); err != nil {
			errutil.Handle(ctx, goerr.Wrap(err, "failed to send follow-up message"), "interaction")
			return
		}
	}
}

func (h *Handler) discussion(ctx context.Context, i *discordgo.Interaction, user *requester, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	result, err := h.uc.Discussion.Create(ctx, usecase.DiscussionRequest{
		GuildID:       i.GuildID,
		Paper:         stringOption(opts, OptionPaper),
		UnlockTime:    stringOption(opts, OptionUnlockTime),
		Lock:          boolOption(opts, OptionLock, true),
		ChannelID:     i.ChannelID,
		RequestedBy:   user.name,
		RequestedByID: user.id,
	})
	if err != nil {
		h.replyError(ctx, i, err)
		return
	}

	h.reply(ctx, i, fmt.Sprintf("Discussion post created: %s\nIt will be unlocked at %s.",
		result.Post.Link(), usecase.DiscordTimestamp(result.Action.DueAt)))
}

func (h *Handler) handleComponent(ctx context.Context, i *discordgo.Interaction) {
	token, yes, ok := parseConfirmID(i.MessageComponentData().CustomID)
	if !ok {
		logging.From(ctx).Debug("ignoring component", slog.String("custom_id", i.MessageComponentData().CustomID))
		return
	}

	var userID string
	if i.Member != nil && i.Member.User != nil {
		userID = i.Member.User.ID
	} else if i.User != nil {
		userID = i.User.ID
	}

	err := h.confirms.resolve(token, userID, yes)
	switch {
	case err == nil:
		h.respondComponent(ctx, i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    msgProcessing,
				Components: []discordgo.MessageComponent{},
			},
		})
	case errors.Is(err, errConfirmWrongUser):
		h.respondComponent(ctx, i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: msgConfirmNotYours,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
	default:
		h.respondComponent(ctx, i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    msgConfirmExpired,
				Components: []discordgo.MessageComponent{},
			},
		})
	}
}

func (h *Handler) respondComponent(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) {
	if err := h.session.InteractionRespond(i, resp, discordgo.WithContext(ctx)); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to respond to component"), "interaction")
	}
}

// replyError maps err to a reply. Errors without a user message are reported to the log channels.
func (h *Handler) replyError(ctx context.Context, i *discordgo.Interaction, err error) {
	if msg := usecase.UserMessage(err); msg != "" {
		logging.From(ctx).Info("request rejected", slog.String("reason", msg))
		h.reply(ctx, i, msg)
		return
	}

	var msg, title string
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		msg, title = msgPersistenceFailed, "Failed to store scheduled action"
	case errors.Is(err, usecase.ErrRemoteOperation):
		msg, title = msgRemoteFailed, "Reddit request failed"
	default:
		msg, title = msgUnexpected, "Command failed"
	}

	errutil.Handle(ctx, err, title)
	h.uc.Notifier.ReportError(ctx, i.GuildID, title, err)
	h.reply(ctx, i, msg)
}

func (h *Handler) reply(ctx context.Context, i *discordgo.Interaction, content string) {
	h.edit(ctx, i, content, nil)
}

func (h *Handler) edit(ctx context.Context, i *discordgo.Interaction, content string, embeds []*discordgo.MessageEmbed) {
	components := []discordgo.MessageComponent{}
	edit := &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
	}
	if embeds != nil {
		edit.Embeds = &embeds
	}
	if _, err := h.session.InteractionResponseEdit(i, edit, discordgo.WithContext(ctx)); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to edit interaction response"), "interaction")
	}
}
