package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/domain/types"
	"github.com/rigcse/modbridge/pkg/service/reddit"
)

// ActionUseCase schedules, lists and executes scheduled actions
type ActionUseCase struct {
	repo            interfaces.Repository
	registry        *model.GuildRegistry
	reddit          reddit.Service
	executor        *Executor
	notifier        *Notifier
	clock           Clock
	confirmTimeout  time.Duration
	maxAttempts     int
	tickConcurrency int
	locks           *keyLock
}

// ScheduleRequest is a moderator's request to lock or unlock a post later
type ScheduleRequest struct {
	GuildID       string
	Type          types.ActionType
	PostLink      string
	Time          string // epoch seconds or milliseconds
	ChannelID     string
	RequestedBy   string
	RequestedByID string
}

// ScheduleOutcome tells what Schedule did to the store
type ScheduleOutcome string

const (
	OutcomeCreated  ScheduleOutcome = "created"
	OutcomeReplaced ScheduleOutcome = "replaced"
	OutcomeKept     ScheduleOutcome = "kept"
)

// ScheduleResult is returned by Schedule. For OutcomeKept, Action is the untouched existing record.
type ScheduleResult struct {
	Outcome  ScheduleOutcome
	Action   *model.ScheduledAction
	Previous *model.ScheduledAction
}

// ConfirmFunc asks the requester whether existing should be overwritten.
// ctx is cancelled when the confirmation window closes.
type ConfirmFunc func(ctx context.Context, existing *model.ScheduledAction) (bool, error)

func (uc *ActionUseCase) validate(req ScheduleRequest) (time.Time, error) {
	if !req.Type.IsValid() {
		return time.Time{}, newUserError(ErrValidation, "Action must be lock or unlock.",
			goerr.V(ActionTypeKey, req.Type))
	}
	if strings.TrimSpace(req.PostLink) == "" {
		return time.Time{}, newUserError(ErrValidation, "Post link is required.")
	}
	if _, err := reddit.ExtractPostID(req.PostLink); err != nil {
		return time.Time{}, newUserError(ErrValidation, "Invalid post link.",
			goerr.V(PostLinkKey, req.PostLink))
	}

	due, err := model.ParseDueTime(req.Time, uc.clock())
	if err != nil {
		if errors.Is(err, model.ErrDueTimeNotFuture) {
			return time.Time{}, newUserError(ErrValidation, "Time must be in the future.",
				goerr.V("time", req.Time))
		}
		return time.Time{}, newUserError(ErrValidation, "Time must be a Unix timestamp in seconds or milliseconds.",
			goerr.V("time", req.Time))
	}
	return due, nil
}

// precheck verifies the post exists in the guild's subreddit and is not already in the requested state
func (uc *ActionUseCase) precheck(ctx context.Context, guild *model.GuildEntry, req ScheduleRequest) error {
	post, err := uc.reddit.GetPost(ctx, req.PostLink)
	if err != nil {
		switch {
		case errors.Is(err, reddit.ErrPostNotFound):
			return newUserError(ErrPostNotFound, "Post not found.", goerr.V(PostLinkKey, req.PostLink))
		case errors.Is(err, reddit.ErrInvalidLink):
			return newUserError(ErrValidation, "Invalid post link.", goerr.V(PostLinkKey, req.PostLink))
		default:
			return goerr.Wrap(ErrRemoteOperation, "failed to fetch post",
				goerr.V(PostLinkKey, req.PostLink),
				goerr.V("cause", err.Error()))
		}
	}

	if guild.Subreddit != "" && !strings.EqualFold(post.Subreddit, guild.Subreddit) {
		return newUserError(ErrWrongCommunity, "The post does not belong to r/"+guild.Subreddit+".",
			goerr.V(PostLinkKey, req.PostLink),
			goerr.V(SubredditKey, post.Subreddit),
			goerr.V(ConfiguredSubredditKey, guild.Subreddit))
	}

	if req.Type == types.ActionTypeLock && post.Locked {
		return newUserError(ErrAlreadyInState, "This post is already locked.", goerr.V(PostLinkKey, req.PostLink))
	}
	if req.Type == types.ActionTypeUnlock && !post.Locked {
		return newUserError(ErrAlreadyInState, "This post is already unlocked.", goerr.V(PostLinkKey, req.PostLink))
	}
	return nil
}

// Schedule validates the request, checks the post and stores the action.
// When an action for the same post, type and guild already exists, confirm
// decides whether it is replaced. Without confirmation the existing one is kept.
func (uc *ActionUseCase) Schedule(ctx context.Context, req ScheduleRequest, confirm ConfirmFunc) (*ScheduleResult, error) {
	due, err := uc.validate(req)
	if err != nil {
		return nil, err
	}

	guild, err := uc.registry.Get(req.GuildID)
	if err != nil {
		return nil, newUserError(ErrGuildNotConfigured, "This server is not configured for moderation.",
			goerr.V(GuildIDKey, req.GuildID))
	}

	if err := uc.precheck(ctx, guild, req); err != nil {
		return nil, err
	}

	action := &model.ScheduledAction{
		Type:          req.Type,
		PostLink:      req.PostLink,
		DueAt:         due,
		GuildID:       req.GuildID,
		ScheduledBy:   req.RequestedBy,
		ScheduledByID: req.RequestedByID,
		ChannelID:     req.ChannelID,
	}

	unlock := uc.locks.Lock(action.Key().String())
	defer unlock()

	existing, err := uc.repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{
		GuildID:  req.GuildID,
		PostLink: req.PostLink,
		Type:     req.Type,
	})
	if err != nil {
		return nil, goerr.Wrap(ErrPersistence, "failed to look up existing actions",
			goerr.V(GuildIDKey, req.GuildID),
			goerr.V(PostLinkKey, req.PostLink),
			goerr.V("cause", err.Error()))
	}

	if len(existing) == 0 {
		created, err := uc.repo.ScheduledAction().Create(ctx, action)
		if err != nil {
			return nil, goerr.Wrap(ErrPersistence, "failed to create scheduled action",
				goerr.V(GuildIDKey, req.GuildID),
				goerr.V(PostLinkKey, req.PostLink),
				goerr.V("cause", err.Error()))
		}
		uc.notifier.Scheduled(ctx, created)
		return &ScheduleResult{Outcome: OutcomeCreated, Action: created}, nil
	}

	previous := existing[0]
	if !uc.confirmOverwrite(ctx, previous, confirm) {
		return &ScheduleResult{Outcome: OutcomeKept, Action: previous}, nil
	}

	replaced, err := uc.repo.ScheduledAction().Replace(ctx, previous.ID, action)
	if err != nil {
		return nil, goerr.Wrap(ErrPersistence, "failed to replace scheduled action",
			goerr.V(ActionIDKey, previous.ID),
			goerr.V("cause", err.Error()))
	}

	// Older deployments could store the same tuple more than once
	for _, extra := range existing[1:] {
		if err := uc.repo.ScheduledAction().Delete(ctx, extra.ID); err != nil {
			return nil, goerr.Wrap(ErrPersistence, "failed to remove duplicate action",
				goerr.V(ActionIDKey, extra.ID),
				goerr.V("cause", err.Error()))
		}
	}

	uc.notifier.Rescheduled(ctx, previous, replaced)
	return &ScheduleResult{Outcome: OutcomeReplaced, Action: replaced, Previous: previous}, nil
}

func (uc *ActionUseCase) confirmOverwrite(ctx context.Context, existing *model.ScheduledAction, confirm ConfirmFunc) bool {
	if confirm == nil {
		return false
	}

	confirmCtx, cancel := context.WithTimeout(ctx, uc.confirmTimeout)
	defer cancel()

	type answer struct {
		ok  bool
		err error
	}
	ch := make(chan answer, 1)
	go func() {
		ok, err := confirm(confirmCtx, existing)
		ch <- answer{ok: ok, err: err}
	}()

	select {
	case a := <-ch:
		return a.err == nil && a.ok
	case <-confirmCtx.Done():
		return false
	}
}
