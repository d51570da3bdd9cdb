package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
)

func runProfileRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created := newTestProfile(t, ctx, repo)
		gt.Value(t, created.Status).Equal(types.StatusAvailable)
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		got, err := repo.Profile().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Username).Equal(created.Username)
		gt.Value(t, got.DisplayName).Equal("Test User")
		gt.Value(t, got.Status).Equal(types.StatusAvailable)
		gt.Value(t, got.BackAt).Nil()
		gt.Value(t, got.StatusMessage).Nil()
	})

	t.Run("GetByUsername resolves the profile", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created := newTestProfile(t, ctx, repo)

		got, err := repo.Profile().GetByUsername(ctx, created.Username)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(created.ID)
	})

	t.Run("Get unknown profile returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Profile().Get(ctx, uniqueID("missing"))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()

		_, err = repo.Profile().GetByUsername(ctx, uniqueID("missing"))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Create rejects a taken username", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created := newTestProfile(t, ctx, repo)

		_, err := repo.Profile().Create(ctx, &model.Profile{
			ID:       uniqueID("other"),
			Username: created.Username,
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrAlreadyExists)).True()
	})

	t.Run("Update sets status, message and back-at together", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created := newTestProfile(t, ctx, repo)
		backAt := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Millisecond)

		updated, err := repo.Profile().Update(ctx, created.ID, model.ProfileUpdate{
			Status:        model.Set(types.StatusFocused),
			StatusMessage: model.Set("writing"),
			BackAt:        model.Set(backAt),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.StatusFocused)
		gt.Value(t, *updated.StatusMessage).Equal("writing")
		gt.Bool(t, updated.BackAt.Equal(backAt)).True()

		got, err := repo.Profile().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.StatusFocused)
		gt.Value(t, *got.StatusMessage).Equal("writing")
		gt.Bool(t, got.BackAt.Equal(backAt)).True()
		gt.Value(t, got.Username).Equal(created.Username)
	})

	t.Run("Update to available clears details", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created := newTestProfile(t, ctx, repo)
		_, err := repo.Profile().Update(ctx, created.ID, model.ProfileUpdate{
			Status:        model.Set(types.StatusAway),
			StatusMessage: model.Set("vacation"),
			BackAt:        model.Set(time.Now().Add(24 * time.Hour)),
		})
		gt.NoError(t, err).Required()

		got, err := repo.Profile().Update(ctx, created.ID, model.ProfileUpdate{
			Status:        model.Set(types.StatusAvailable),
			StatusMessage: model.Null[string](),
			BackAt:        model.Null[time.Time](),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.StatusAvailable)
		gt.Value(t, got.StatusMessage).Nil()
		gt.Value(t, got.BackAt).Nil()
	})

	t.Run("Update to available without clearing is rejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created := newTestProfile(t, ctx, repo)
		_, err := repo.Profile().Update(ctx, created.ID, model.ProfileUpdate{
			Status: model.Set(types.StatusAvailable),
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrAvailableWithDetails)).True()
	})

	t.Run("Update of response fields leaves status untouched", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created := newTestProfile(t, ctx, repo)
		got, err := repo.Profile().Update(ctx, created.ID, model.ProfileUpdate{
			EmailResponseTime: model.Set("~1h"),
			UrgentMethod:      model.Set("Text"),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.StatusAvailable)
		gt.Value(t, got.EmailResponseTime).Equal("~1h")
		gt.Value(t, got.UrgentMethod).Equal("Text")
		gt.Value(t, got.DMResponseTime).Equal("")
	})

	t.Run("Update unknown profile returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Profile().Update(ctx, uniqueID("missing"), model.ProfileUpdate{
			Title: model.Set("x"),
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("ListExpired returns only past-due non-available profiles", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC()

		past := newTestProfile(t, ctx, repo)
		_, err := repo.Profile().Update(ctx, past.ID, model.ProfileUpdate{
			Status: model.Set(types.StatusQoit),
			BackAt: model.Set(now.Add(-time.Minute)),
		})
		gt.NoError(t, err).Required()

		future := newTestProfile(t, ctx, repo)
		_, err = repo.Profile().Update(ctx, future.ID, model.ProfileUpdate{
			Status: model.Set(types.StatusAway),
			BackAt: model.Set(now.Add(time.Hour)),
		})
		gt.NoError(t, err).Required()

		available := newTestProfile(t, ctx, repo)

		expired, err := repo.Profile().ListExpired(ctx, now)
		gt.NoError(t, err).Required()

		ids := make(map[string]bool)
		for _, p := range expired {
			ids[p.ID] = true
		}
		gt.Bool(t, ids[past.ID]).True()
		gt.Bool(t, ids[future.ID]).False()
		gt.Bool(t, ids[available.ID]).False()
	})
}

func TestProfileRepository_Memory(t *testing.T) {
	runProfileRepositoryTest(t, newMemoryRepository)
}

func TestProfileRepository_Firestore(t *testing.T) {
	runProfileRepositoryTest(t, newFirestoreRepository)
}
