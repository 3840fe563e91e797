package interfaces

import (
	"context"
	"time"

	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/domain/types"
)

// ScheduledActionFilter narrows Find. Zero fields are not applied.
type ScheduledActionFilter struct {
	GuildID  string
	PostLink string
	Type     types.ActionType

	// DueBefore matches DueAt <= DueBefore
	DueBefore time.Time
	// DueAfter matches DueAt >= DueAfter
	DueAfter time.Time
}

// Match reports whether action satisfies the filter
func (f ScheduledActionFilter) Match(action *model.ScheduledAction) bool {
	if f.GuildID != "" && action.GuildID != f.GuildID {
		return false
	}
	if f.PostLink != "" && action.PostLink != f.PostLink {
		return false
	}
	if f.Type != "" && action.Type != f.Type {
		return false
	}
	if !f.DueBefore.IsZero() && action.DueAt.After(f.DueBefore) {
		return false
	}
	if !f.DueAfter.IsZero() && action.DueAt.Before(f.DueAfter) {
		return false
	}
	return true
}

// ScheduledActionRepository defines the interface for ScheduledAction data access
type ScheduledActionRepository interface {
	// Create stores a new action with an auto-generated ID and CreatedAt
	Create(ctx context.Context, action *model.ScheduledAction) (*model.ScheduledAction, error)

	// Get retrieves an action by ID
	Get(ctx context.Context, id model.ScheduledActionID) (*model.ScheduledAction, error)

	// Find returns actions matching filter ordered by DueAt ascending.
	// No match returns an empty slice.
	Find(ctx context.Context, filter ScheduledActionFilter) ([]*model.ScheduledAction, error)

	// Delete removes an action. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id model.ScheduledActionID) error

	// Replace atomically deletes oldID and creates action
	Replace(ctx context.Context, oldID model.ScheduledActionID, action *model.ScheduledAction) (*model.ScheduledAction, error)

	// RecordFailure increments AttemptCount and stores message as LastError
	RecordFailure(ctx context.Context, id model.ScheduledActionID, message string) (*model.ScheduledAction, error)
}
