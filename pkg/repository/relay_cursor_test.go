package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/rigcse/modbridge/pkg/domain/interfaces"
)

func runRelayCursorRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Get returns zero time when unset", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.RelayCursor().Get(context.Background(), "G-unset")
		gt.NoError(t, err).Required()
		gt.Bool(t, got.IsZero()).True()
	})

	t.Run("Put then Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		gt.NoError(t, repo.RelayCursor().Put(ctx, "G1", at)).Required()

		got, err := repo.RelayCursor().Get(ctx, "G1")
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Equal(at)).True()

		later := at.Add(time.Hour)
		gt.NoError(t, repo.RelayCursor().Put(ctx, "G1", later)).Required()
		got, err = repo.RelayCursor().Get(ctx, "G1")
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Equal(later)).True()

		other, err := repo.RelayCursor().Get(ctx, "G2")
		gt.NoError(t, err).Required()
		gt.Bool(t, other.IsZero()).True()
	})
}

func TestRelayCursorRepository_Memory(t *testing.T) {
	runRelayCursorRepositoryTest(t, newMemoryRepository)
}

func TestRelayCursorRepository_Firestore(t *testing.T) {
	runRelayCursorRepositoryTest(t, newFirestoreRepository)
}
