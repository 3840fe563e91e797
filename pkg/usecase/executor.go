package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/domain/types"
	"github.com/rigcse/modbridge/pkg/service/reddit"
)

// FailureKind classifies why an execution failed
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureUnknownType FailureKind = "unknown_type"
	FailureInvalidLink FailureKind = "invalid_link"
	FailureNotFound    FailureKind = "not_found"
	FailureRemote      FailureKind = "remote"
	FailurePanic       FailureKind = "panic"
)

// ExecutionOutcome is the result of one execution. Err is nil on success.
type ExecutionOutcome struct {
	Err     error
	Kind    FailureKind
	Message string
}

// Succeeded reports whether the remote operation completed
func (o *ExecutionOutcome) Succeeded() bool {
	return o.Err == nil
}

// Executor runs a single scheduled action against Reddit
type Executor struct {
	reddit reddit.Service
}

func NewExecutor(redditService reddit.Service) *Executor {
	return &Executor{reddit: redditService}
}

// Execute never returns an error or panics; failures are reported in the outcome
func (e *Executor) Execute(ctx context.Context, action *model.ScheduledAction) (outcome *ExecutionOutcome) {
	defer func() {
		if r := recover(); r != nil {
			err := goerr.New("panic during execution",
				goerr.V(ActionIDKey, action.ID),
				goerr.V("panic", fmt.Sprint(r)))
			outcome = &ExecutionOutcome{Err: err, Kind: FailurePanic, Message: fmt.Sprintf("unexpected error: %v", r)}
		}
	}()

	var err error
	switch action.Type {
	case types.ActionTypeLock:
		err = e.reddit.LockPost(ctx, action.PostLink)
	case types.ActionTypeUnlock:
		err = e.reddit.UnlockPost(ctx, action.PostLink)
	default:
		return &ExecutionOutcome{
			Err: goerr.Wrap(ErrUnknownActionType, "cannot execute action",
				goerr.V(ActionIDKey, action.ID),
				goerr.V(ActionTypeKey, action.Type)),
			Kind:    FailureUnknownType,
			Message: fmt.Sprintf("unknown action type %q", action.Type),
		}
	}

	if err == nil {
		return &ExecutionOutcome{}
	}

	wrapped := goerr.Wrap(err, "failed to execute scheduled action",
		goerr.V(ActionIDKey, action.ID),
		goerr.V(ActionTypeKey, action.Type),
		goerr.V(PostLinkKey, action.PostLink))

	switch {
	case errors.Is(err, reddit.ErrInvalidLink):
		return &ExecutionOutcome{Err: wrapped, Kind: FailureInvalidLink, Message: "the post link is not valid"}
	case errors.Is(err, reddit.ErrPostNotFound):
		return &ExecutionOutcome{Err: wrapped, Kind: FailureNotFound, Message: "the post no longer exists"}
	default:
		return &ExecutionOutcome{Err: wrapped, Kind: FailureRemote, Message: err.Error()}
	}
}
