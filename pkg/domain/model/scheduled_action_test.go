package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/domain/types"
)

func TestNormalizeEpochMillis(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  int64
	}{
		{name: "seconds are multiplied", input: 1700000000, want: 1700000000000},
		{name: "milliseconds unchanged", input: 1700000000000, want: 1700000000000},
		{name: "threshold is milliseconds", input: 1_000_000_000_000, want: 1_000_000_000_000},
		{name: "just below threshold", input: 999_999_999_999, want: 999_999_999_999_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, model.NormalizeEpochMillis(tt.input)).Equal(tt.want)
		})
	}
}

func TestParseDueTime(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	t.Run("future seconds", func(t *testing.T) {
		due, err := model.ParseDueTime("1700000060", now)
		gt.NoError(t, err).Required()
		gt.Value(t, due.UnixMilli()).Equal(int64(1700000060000))
	})

	t.Run("future milliseconds with whitespace", func(t *testing.T) {
		due, err := model.ParseDueTime(" 1700000000001 ", now)
		gt.NoError(t, err).Required()
		gt.Value(t, due.UnixMilli()).Equal(int64(1700000000001))
	})

	t.Run("equal to now is rejected", func(t *testing.T) {
		_, err := model.ParseDueTime("1700000000", now)
		gt.Error(t, err).Is(model.ErrDueTimeNotFuture)
	})

	t.Run("past is rejected", func(t *testing.T) {
		_, err := model.ParseDueTime("1600000000", now)
		gt.Error(t, err).Is(model.ErrDueTimeNotFuture)
	})

	t.Run("not an integer", func(t *testing.T) {
		_, err := model.ParseDueTime("tomorrow", now)
		gt.Error(t, err).Is(model.ErrInvalidDueTime)
	})

	t.Run("decimal is rejected", func(t *testing.T) {
		_, err := model.ParseDueTime("1700000060.5", now)
		gt.Error(t, err).Is(model.ErrInvalidDueTime)
	})
}

func TestScheduledAction_IsDue(t *testing.T) {
	now := time.Now()
	action := &model.ScheduledAction{DueAt: now}
	gt.Bool(t, action.IsDue(now)).True()
	gt.Bool(t, action.IsDue(now.Add(-time.Second))).False()
	gt.Bool(t, action.IsDue(now.Add(time.Second))).True()
}

func TestScheduledAction_Key(t *testing.T) {
	a := &model.ScheduledAction{GuildID: "G1", PostLink: "https://x/comments/abc", Type: types.ActionTypeLock}
	b := &model.ScheduledAction{GuildID: "G1", PostLink: "https://x/comments/abc", Type: types.ActionTypeUnlock}
	gt.Value(t, a.Key()).NotEqual(b.Key())
	gt.Value(t, a.Key().String()).Equal("G1|lock|https://x/comments/abc")
}

func TestNewScheduledActionID(t *testing.T) {
	id1 := model.NewScheduledActionID()
	id2 := model.NewScheduledActionID()
	gt.Value(t, id1).NotEqual(id2)
	gt.Number(t, len(id1.String())).Equal(36)
}
