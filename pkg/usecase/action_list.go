package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/domain/types"
	"github.com/rigcse/modbridge/pkg/utils/logging"
)

// PendingEntry is a pending action with the title of its post. Title is
// empty when the post could not be fetched.
type PendingEntry struct {
	Action *model.ScheduledAction
	Title  string
}

// PendingActions groups a guild's pending actions by type, each ordered by due time
type PendingActions struct {
	Locks   []*PendingEntry
	Unlocks []*PendingEntry
}

// Pending returns the guild's actions due at or after now
func (uc *ActionUseCase) Pending(ctx context.Context, guildID string) ([]*model.ScheduledAction, error) {
	actions, err := uc.repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{
		GuildID:  guildID,
		DueAfter: uc.clock(),
	})
	if err != nil {
		return nil, goerr.Wrap(ErrPersistence, "failed to list pending actions",
			goerr.V(GuildIDKey, guildID),
			goerr.V("cause", err.Error()))
	}
	return actions, nil
}

// ListPending returns pending actions split by type with post titles resolved
func (uc *ActionUseCase) ListPending(ctx context.Context, guildID string) (*PendingActions, error) {
	actions, err := uc.Pending(ctx, guildID)
	if err != nil {
		return nil, err
	}

	result := &PendingActions{
		Locks:   make([]*PendingEntry, 0),
		Unlocks: make([]*PendingEntry, 0),
	}
	titles := make(map[string]string)

	for _, action := range actions {
		title, ok := titles[action.PostLink]
		if !ok {
			title = uc.postTitle(ctx, action.PostLink)
			titles[action.PostLink] = title
		}

		entry := &PendingEntry{Action: action, Title: title}
		switch action.Type {
		case types.ActionTypeLock:
			result.Locks = append(result.Locks, entry)
		case types.ActionTypeUnlock:
			result.Unlocks = append(result.Unlocks, entry)
		}
	}

	return result, nil
}

func (uc *ActionUseCase) postTitle(ctx context.Context, link string) string {
	if uc.reddit == nil {
		return ""
	}
	post, err := uc.reddit.GetPost(ctx, link)
	if err != nil {
		logging.From(ctx).Warn("failed to fetch post title", PostLinkKey, link, "error", err.Error())
		return ""
	}
	return post.Title
}

// List returns all stored actions matching filter, pending or due
func (uc *ActionUseCase) List(ctx context.Context, filter interfaces.ScheduledActionFilter) ([]*model.ScheduledAction, error) {
	actions, err := uc.repo.ScheduledAction().Find(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(ErrPersistence, "failed to list actions",
			goerr.V(GuildIDKey, filter.GuildID),
			goerr.V("cause", err.Error()))
	}
	return actions, nil
}

// Cancel removes a stored action without executing it
func (uc *ActionUseCase) Cancel(ctx context.Context, id model.ScheduledActionID) (*model.ScheduledAction, error) {
	action, err := uc.repo.ScheduledAction().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get action", goerr.V(ActionIDKey, id))
	}
	if err := uc.repo.ScheduledAction().Delete(ctx, id); err != nil {
		return nil, goerr.Wrap(ErrPersistence, "failed to delete action",
			goerr.V(ActionIDKey, id),
			goerr.V("cause", err.Error()))
	}
	return action, nil
}
