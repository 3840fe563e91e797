package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/utils/errutil"
	"github.com/rigcse/modbridge/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// TickResult counts what one ProcessDue call did
type TickResult struct {
	Due          int
	Executed     int
	Failed       int
	DeadLettered int
}

type recordResult int

const (
	resultExecuted recordResult = iota
	resultFailed
	resultDeadLettered
)

// ProcessDue executes every action whose due time has passed. Each action is
// isolated: a failure is recorded on the action and does not stop the others.
// It returns only when all due actions have been handled.
func (uc *ActionUseCase) ProcessDue(ctx context.Context) (*TickResult, error) {
	now := uc.clock()
	due, err := uc.repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{DueBefore: now})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find due actions", goerr.V(DueAtKey, now))
	}

	result := &TickResult{Due: len(due)}
	if len(due) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	var eg errgroup.Group
	eg.SetLimit(uc.tickConcurrency)

	for _, action := range due {
		eg.Go(func() error {
			r := uc.processOne(ctx, action)

			mu.Lock()
			defer mu.Unlock()
			switch r {
			case resultExecuted:
				result.Executed++
			case resultFailed:
				result.Failed++
			case resultDeadLettered:
				result.DeadLettered++
			}
			return nil
		})
	}
	_ = eg.Wait()

	return result, nil
}

func (uc *ActionUseCase) processOne(ctx context.Context, action *model.ScheduledAction) recordResult {
	logger := logging.From(ctx).With(
		ActionIDKey, action.ID,
		ActionTypeKey, action.Type,
		GuildIDKey, action.GuildID,
	)
	ctx = logging.With(ctx, logger)

	outcome := uc.executor.Execute(ctx, action)
	if outcome.Succeeded() {
		// A failed delete leaves the action due, so it runs again next tick.
		// Lock and unlock are idempotent.
		if err := uc.repo.ScheduledAction().Delete(ctx, action.ID); err != nil {
			errutil.Handle(ctx, err, "failed to delete executed action")
			return resultFailed
		}
		logger.Info("scheduled action executed", PostLinkKey, action.PostLink)
		uc.notifier.Executed(ctx, action)
		return resultExecuted
	}

	errutil.Handle(ctx, outcome.Err, "scheduled action failed")

	updated, err := uc.repo.ScheduledAction().RecordFailure(ctx, action.ID, outcome.Message)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			errutil.Handle(ctx, err, "failed to record action failure")
		}
		return resultFailed
	}

	if uc.maxAttempts > 0 && updated.AttemptCount >= uc.maxAttempts {
		if err := uc.repo.ScheduledAction().Delete(ctx, updated.ID); err != nil {
			errutil.Handle(ctx, err, "failed to delete dead-lettered action")
			return resultFailed
		}
		logger.Warn("scheduled action dropped", AttemptCountKey, updated.AttemptCount)
		uc.notifier.DeadLettered(ctx, updated, outcome)
		return resultDeadLettered
	}

	// Announce only the first failure; later retries are logged
	if updated.AttemptCount == 1 {
		uc.notifier.ExecutionFailed(ctx, updated, outcome)
	}
	return resultFailed
}
