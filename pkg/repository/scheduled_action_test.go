package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
	"github.com/rigcse/modbridge/pkg/domain/model"
	"github.com/rigcse/modbridge/pkg/domain/types"
)

func newTestAction(guildID, link string, actionType types.ActionType, due time.Time) *model.ScheduledAction {
	return &model.ScheduledAction{
		Type:          actionType,
		PostLink:      link,
		DueAt:         due,
		GuildID:       guildID,
		ScheduledBy:   "mod-user",
		ScheduledByID: "U100",
		ChannelID:     "C100",
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrNotFound)
}

func runScheduledActionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	// Millisecond precision matches the persisted epochTime
	base := time.Now().Add(time.Hour).Truncate(time.Millisecond)

	t.Run("Create assigns ID and CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		input := newTestAction("G1", "https://reddit.com/r/x/comments/abc/t", types.ActionTypeLock, base)
		created, err := repo.ScheduledAction().Create(ctx, input)
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).NotEqual(model.ScheduledActionID(""))
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Value(t, created.Type).Equal(types.ActionTypeLock)
		gt.Value(t, created.PostLink).Equal(input.PostLink)
		gt.Value(t, created.GuildID).Equal("G1")
		gt.Value(t, created.DueAt.UnixMilli()).Equal(base.UnixMilli())

		// input is not mutated
		gt.Value(t, input.ID).Equal(model.ScheduledActionID(""))

		got, err := repo.ScheduledAction().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(created.ID)
		gt.Value(t, got.ScheduledBy).Equal("mod-user")
		gt.Value(t, got.ScheduledByID).Equal("U100")
		gt.Value(t, got.ChannelID).Equal("C100")
		gt.Value(t, got.DueAt.UnixMilli()).Equal(base.UnixMilli())
	})

	t.Run("Create never overwrites", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		input := newTestAction("G1", "https://x/comments/dup", types.ActionTypeLock, base)
		a1, err := repo.ScheduledAction().Create(ctx, input)
		gt.NoError(t, err).Required()
		a2, err := repo.ScheduledAction().Create(ctx, input)
		gt.NoError(t, err).Required()
		gt.Value(t, a1.ID).NotEqual(a2.ID)

		found, err := repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{GuildID: "G1"})
		gt.NoError(t, err).Required()
		gt.Array(t, found).Length(2)
	})

	t.Run("Get returns not found for missing ID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.ScheduledAction().Get(context.Background(), model.NewScheduledActionID())
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Find by tuple", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		link := "https://x/comments/tuple"
		_, err := repo.ScheduledAction().Create(ctx, newTestAction("G1", link, types.ActionTypeLock, base))
		gt.NoError(t, err).Required()
		_, err = repo.ScheduledAction().Create(ctx, newTestAction("G1", link, types.ActionTypeUnlock, base))
		gt.NoError(t, err).Required()
		_, err = repo.ScheduledAction().Create(ctx, newTestAction("G2", link, types.ActionTypeLock, base))
		gt.NoError(t, err).Required()

		found, err := repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{
			GuildID:  "G1",
			PostLink: link,
			Type:     types.ActionTypeLock,
		})
		gt.NoError(t, err).Required()
		gt.Array(t, found).Length(1)
		gt.Value(t, found[0].GuildID).Equal("G1")
		gt.Value(t, found[0].Type).Equal(types.ActionTypeLock)
	})

	t.Run("Find returns empty slice on no match", func(t *testing.T) {
		repo := newRepo(t)
		found, err := repo.ScheduledAction().Find(context.Background(), interfaces.ScheduledActionFilter{GuildID: "nobody"})
		gt.NoError(t, err).Required()
		gt.True(t, found != nil)
		gt.Array(t, found).Length(0)
	})

	t.Run("Find by due range ordered by DueAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		now := time.Now().Truncate(time.Millisecond)
		past := now.Add(-time.Minute)
		future1 := now.Add(time.Minute)
		future2 := now.Add(2 * time.Minute)

		_, err := repo.ScheduledAction().Create(ctx, newTestAction("G1", "https://x/comments/f2", types.ActionTypeLock, future2))
		gt.NoError(t, err).Required()
		_, err = repo.ScheduledAction().Create(ctx, newTestAction("G1", "https://x/comments/p", types.ActionTypeLock, past))
		gt.NoError(t, err).Required()
		_, err = repo.ScheduledAction().Create(ctx, newTestAction("G1", "https://x/comments/f1", types.ActionTypeUnlock, future1))
		gt.NoError(t, err).Required()

		pending, err := repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{GuildID: "G1", DueAfter: now})
		gt.NoError(t, err).Required()
		gt.Array(t, pending).Length(2)
		gt.Value(t, pending[0].PostLink).Equal("https://x/comments/f1")
		gt.Value(t, pending[1].PostLink).Equal("https://x/comments/f2")

		due, err := repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{DueBefore: now})
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(1)
		gt.Value(t, due[0].PostLink).Equal("https://x/comments/p")
	})

	t.Run("Find DueBefore is inclusive", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		at := time.Now().Truncate(time.Millisecond)
		_, err := repo.ScheduledAction().Create(ctx, newTestAction("G1", "https://x/comments/edge", types.ActionTypeLock, at))
		gt.NoError(t, err).Required()

		due, err := repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{DueBefore: at})
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(1)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.ScheduledAction().Create(ctx, newTestAction("G1", "https://x/comments/del", types.ActionTypeLock, base))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.ScheduledAction().Delete(ctx, created.ID))
		gt.NoError(t, repo.ScheduledAction().Delete(ctx, created.ID))
		gt.NoError(t, repo.ScheduledAction().Delete(ctx, model.NewScheduledActionID()))

		_, err = repo.ScheduledAction().Get(ctx, created.ID)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Replace swaps records", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		link := "https://x/comments/rep"
		old, err := repo.ScheduledAction().Create(ctx, newTestAction("G1", link, types.ActionTypeLock, base))
		gt.NoError(t, err).Required()

		later := base.Add(time.Hour)
		replaced, err := repo.ScheduledAction().Replace(ctx, old.ID, newTestAction("G1", link, types.ActionTypeLock, later))
		gt.NoError(t, err).Required()
		gt.Value(t, replaced.ID).NotEqual(old.ID)

		found, err := repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{
			GuildID: "G1", PostLink: link, Type: types.ActionTypeLock,
		})
		gt.NoError(t, err).Required()
		gt.Array(t, found).Length(1)
		gt.Value(t, found[0].ID).Equal(replaced.ID)
		gt.Value(t, found[0].DueAt.UnixMilli()).Equal(later.UnixMilli())
	})

	t.Run("Replace creates when old record is gone", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		replaced, err := repo.ScheduledAction().Replace(ctx, model.NewScheduledActionID(),
			newTestAction("G1", "https://x/comments/gone", types.ActionTypeUnlock, base))
		gt.NoError(t, err).Required()

		got, err := repo.ScheduledAction().Get(ctx, replaced.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Type).Equal(types.ActionTypeUnlock)
	})

	t.Run("RecordFailure increments attempts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.ScheduledAction().Create(ctx, newTestAction("G1", "https://x/comments/fail", types.ActionTypeLock, base))
		gt.NoError(t, err).Required()

		updated, err := repo.ScheduledAction().RecordFailure(ctx, created.ID, "remote error")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.AttemptCount).Equal(1)
		gt.Value(t, updated.LastError).Equal("remote error")

		updated, err = repo.ScheduledAction().RecordFailure(ctx, created.ID, "timeout")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.AttemptCount).Equal(2)
		gt.Value(t, updated.LastError).Equal("timeout")

		got, err := repo.ScheduledAction().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AttemptCount).Equal(2)
	})

	t.Run("RecordFailure on missing record", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.ScheduledAction().RecordFailure(context.Background(), model.NewScheduledActionID(), "x")
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("concurrent Create keeps every record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.ScheduledAction().Create(ctx, newTestAction("G9", "https://x/comments/c", types.ActionTypeLock, base))
				gt.NoError(t, err)
			}()
		}
		wg.Wait()

		found, err := repo.ScheduledAction().Find(ctx, interfaces.ScheduledActionFilter{GuildID: "G9"})
		gt.NoError(t, err).Required()
		gt.Array(t, found).Length(10)
	})
}

func TestScheduledActionRepository_Memory(t *testing.T) {
	runScheduledActionRepositoryTest(t, newMemoryRepository)
}

func TestScheduledActionRepository_Firestore(t *testing.T) {
	runScheduledActionRepositoryTest(t, newFirestoreRepository)
}
