package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/domain/types"
	"github.com/rigcse/modbridge/pkg/service/reddit"
)

// DiscussionUseCase creates discussion posts that unlock automatically
type DiscussionUseCase struct {
	repo     interfaces.Repository
	registry *model.GuildRegistry
	reddit   reddit.Service
	notifier *Notifier
	clock    Clock
}

type DiscussionRequest struct {
	GuildID       string
	Paper         string
	UnlockTime    string // epoch seconds or milliseconds
	Lock          bool
	ChannelID     string
	RequestedBy   string
	RequestedByID string
}

type DiscussionResult struct {
	Post   *reddit.Post
	Action *model.ScheduledAction
}

// Create submits the discussion post, locks it when requested and schedules its unlock
func (uc *DiscussionUseCase) Create(ctx context.Context, req DiscussionRequest) (*DiscussionResult, error) {
	if strings.TrimSpace(req.Paper) == "" {
		return nil, newUserError(ErrValidation, "Paper name is required.")
	}

	due, err := model.ParseDueTime(req.UnlockTime, uc.clock())
	if err != nil {
		if errors.Is(err, model.ErrDueTimeNotFuture) {
			return nil, newUserError(ErrValidation, "Unlock time must be in the future.",
				goerr.V("time", req.UnlockTime))
		}
		return nil, newUserError(ErrValidation, "Unlock time must be a Unix timestamp in seconds or milliseconds.",
			goerr.V("time", req.UnlockTime))
	}

	guild, err := uc.registry.Get(req.GuildID)
	if err != nil || guild.Subreddit == "" {
		return nil, newUserError(ErrGuildNotConfigured, "This server is not configured for moderation.",
			goerr.V(GuildIDKey, req.GuildID))
	}

	content, err := guild.Discussion.Render(req.Paper)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to render discussion post", goerr.V(GuildIDKey, req.GuildID))
	}

	post, err := uc.reddit.SubmitSelfPost(ctx, reddit.SubmitRequest{
		Subreddit: guild.Subreddit,
		Title:     content.Title,
		Body:      content.Body,
		FlairID:   guild.Discussion.FlairID,
	})
	if err != nil {
		return nil, goerr.Wrap(ErrRemoteOperation, "failed to submit discussion post",
			goerr.V(SubredditKey, guild.Subreddit),
			goerr.V("cause", err.Error()))
	}

	link := post.Link()
	if req.Lock {
		if err := uc.reddit.LockPost(ctx, link); err != nil {
			return nil, goerr.Wrap(ErrRemoteOperation, "failed to lock discussion post",
				goerr.V(PostLinkKey, link),
				goerr.V("cause", err.Error()))
		}
		post.Locked = true
	}

	action, err := uc.repo.ScheduledAction().Create(ctx, &model.ScheduledAction{
		Type:          types.ActionTypeUnlock,
		PostLink:      link,
		DueAt:         due,
		GuildID:       req.GuildID,
		ScheduledBy:   req.RequestedBy,
		ScheduledByID: req.RequestedByID,
		ChannelID:     req.ChannelID,
	})
	if err != nil {
		return nil, goerr.Wrap(ErrPersistence, "failed to schedule discussion unlock",
			goerr.V(PostLinkKey, link),
			goerr.V("cause", err.Error()))
	}

	uc.notifier.Scheduled(ctx, action)
	return &DiscussionResult{Post: post, Action: action}, nil
}
