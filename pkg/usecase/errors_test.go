package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/rigcse/modbridge/pkg/usecase"
)

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		usecase.ErrValidation,
		usecase.ErrUnauthorized,
		usecase.ErrPersistence,
		usecase.ErrRemoteOperation,
		usecase.ErrPostNotFound,
		usecase.ErrWrongCommunity,
		usecase.ErrAlreadyInState,
		usecase.ErrUnknownActionType,
		usecase.ErrGuildNotConfigured,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			gt.Value(t, errors.Is(a, b)).Equal(i == j)
		}
	}
}

func TestUserMessage(t *testing.T) {
	gt.Value(t, usecase.UserMessage(nil)).Equal("")
	gt.Value(t, usecase.UserMessage(errors.New("plain"))).Equal("")
	gt.Value(t, usecase.UserMessage(goerr.New("no message"))).Equal("")
}
