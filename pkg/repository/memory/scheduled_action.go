package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
)

type scheduledActionRepository struct {
	mu      sync.RWMutex
	actions map[model.ScheduledActionID]*model.ScheduledAction
}

func newScheduledActionRepository() *scheduledActionRepository {
	return &scheduledActionRepository{
		actions: make(map[model.ScheduledActionID]*model.ScheduledAction),
	}
}

// copyScheduledAction creates a copy so callers never share stored records
func copyScheduledAction(a *model.ScheduledAction) *model.ScheduledAction {
	c := *a
	return &c
}

func (r *scheduledActionRepository) insert(action *model.ScheduledAction) *model.ScheduledAction {
	created := copyScheduledAction(action)
	created.ID = model.NewScheduledActionID()
	created.CreatedAt = time.Now().UTC()

	r.actions[created.ID] = created
	return copyScheduledAction(created)
}

func (r *scheduledActionRepository) Create(ctx context.Context, action *model.ScheduledAction) (*model.ScheduledAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insert(action), nil
}

func (r *scheduledActionRepository) Get(ctx context.Context, id model.ScheduledActionID) (*model.ScheduledAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, exists := r.actions[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "scheduled action not found", goerr.V("id", id))
	}
	return copyScheduledAction(action), nil
}

func (r *scheduledActionRepository) Find(ctx context.Context, filter interfaces.ScheduledActionFilter) ([]*model.ScheduledAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]*model.ScheduledAction, 0)
	for _, action := range r.actions {
		if filter.Match(action) {
			actions = append(actions, copyScheduledAction(action))
		}
	}

	sort.Slice(actions, func(i, j int) bool {
		if actions[i].DueAt.Equal(actions[j].DueAt) {
			return actions[i].ID < actions[j].ID
		}
		return actions[i].DueAt.Before(actions[j].DueAt)
	})
	return actions, nil
}

func (r *scheduledActionRepository) Delete(ctx context.Context, id model.ScheduledActionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.actions, id)
	return nil
}

func (r *scheduledActionRepository) Replace(ctx context.Context, oldID model.ScheduledActionID, action *model.ScheduledAction) (*model.ScheduledAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.actions, oldID)
	return r.insert(action), nil
}

func (r *scheduledActionRepository) RecordFailure(ctx context.Context, id model.ScheduledActionID, message string) (*model.ScheduledAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	action, exists := r.actions[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "scheduled action not found", goerr.V("id", id))
	}

	action.AttemptCount++
	action.LastError = message
	return copyScheduledAction(action), nil
}
