package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/usecase"
)

func TestStatusUseCase_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("applies mode defaults in one write and syncs", func(t *testing.T) {
		repo := setupRepository(t, types.IntegrationSlack)
		slack := newFakeProvider(types.IntegrationSlack)
		uc := usecase.New(repo, usecase.WithSyncProviders(slack))

		change, err := uc.Status.SetStatus(ctx, testUserID, types.StatusFocused)
		gt.NoError(t, err).Required()

		gt.Value(t, change.Profile.Status).Equal(types.StatusFocused)
		gt.Value(t, change.Profile.EmailResponseTime).Equal("~4h")
		gt.Value(t, change.Profile.DMResponseTime).Equal("~2h")
		gt.Value(t, change.Profile.UrgentMethod).Equal("Text")
		gt.Bool(t, change.Synced[types.IntegrationSlack].Success).True()

		calls := slack.Calls()
		gt.Array(t, calls).Length(1).Required()
		gt.Value(t, calls[0].Status).Equal(types.StatusFocused)
		gt.Value(t, calls[0].DisplayName).Equal("Ada Lovelace")
	})

	t.Run("available clears message and return time", func(t *testing.T) {
		repo := setupRepository(t)
		uc := usecase.New(repo)

		_, err := uc.Status.Transition(ctx, testUserID, model.ProfileUpdate{
			Status:        model.Set(types.StatusAway),
			StatusMessage: model.Set("On a plane"),
			BackAt:        model.Set(baseTime.Add(48 * time.Hour)),
		})
		gt.NoError(t, err).Required()

		change, err := uc.Status.SetStatus(ctx, testUserID, types.StatusAvailable)
		gt.NoError(t, err).Required()
		gt.Value(t, change.Profile.Status).Equal(types.StatusAvailable)
		gt.Value(t, change.Profile.StatusMessage).Nil()
		gt.Value(t, change.Profile.BackAt).Nil()
		gt.Value(t, change.Profile.EmailResponseTime).Equal("~1h")
		gt.Value(t, change.Profile.DMResponseTime).Equal("~30min")
		gt.Value(t, change.Profile.UrgentMethod).Equal("Call")
	})

	t.Run("provider failure does not undo the saved status", func(t *testing.T) {
		repo := setupRepository(t, types.IntegrationDiscord)
		discord := newFakeProvider(types.IntegrationDiscord)
		discord.result = model.SyncFailed("Webhook failed: 404")
		uc := usecase.New(repo, usecase.WithSyncProviders(discord))

		change, err := uc.Status.SetStatus(ctx, testUserID, types.StatusQoit)
		gt.NoError(t, err).Required()
		gt.Bool(t, change.Synced[types.IntegrationDiscord].Success).False()

		stored, err := repo.Profile().Get(ctx, testUserID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Status).Equal(types.StatusQoit)
	})

	t.Run("configured defaults override built-ins", func(t *testing.T) {
		repo := setupRepository(t)
		uc := usecase.New(repo, usecase.WithStatusDefaults(map[types.StatusMode]types.ResponseDefaults{
			types.StatusQoit: {EmailResponseTime: "Monday", DMResponseTime: "Monday", UrgentMethod: "Signal"},
		}))

		change, err := uc.Status.SetStatus(ctx, testUserID, types.StatusQoit)
		gt.NoError(t, err).Required()
		gt.Value(t, change.Profile.EmailResponseTime).Equal("Monday")
		gt.Value(t, change.Profile.UrgentMethod).Equal("Signal")

		gt.Value(t, uc.Status.Defaults(types.StatusAway)).Equal(types.StatusAway.Defaults())
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		uc := usecase.New(setupRepository(t))
		_, err := uc.Status.SetStatus(ctx, testUserID, types.StatusMode("sleeping"))
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})

	t.Run("unknown user", func(t *testing.T) {
		uc := usecase.New(setupRepository(t))
		_, err := uc.Status.SetStatus(ctx, "nobody", types.StatusQoit)
		gt.Bool(t, errors.Is(err, usecase.ErrProfileNotFound)).True()
	})
}

func TestStatusUseCase_SaveDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("saves details while not available", func(t *testing.T) {
		repo := setupRepository(t, types.IntegrationSlack)
		slack := newFakeProvider(types.IntegrationSlack)
		uc := usecase.New(repo, usecase.WithSyncProviders(slack))

		_, err := uc.Status.SetStatus(ctx, testUserID, types.StatusQoit)
		gt.NoError(t, err).Required()

		backAt := baseTime.Add(3 * time.Hour)
		change, err := uc.Status.SaveDetails(ctx, testUserID, model.ProfileUpdate{
			StatusMessage: model.Set("Writing"),
			BackAt:        model.Set(backAt),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, *change.Profile.StatusMessage).Equal("Writing")
		gt.Bool(t, change.Profile.BackAt.Equal(backAt)).True()

		calls := slack.Calls()
		gt.Array(t, calls).Length(2).Required()
		gt.Value(t, calls[1].Message()).Equal("Writing")
	})

	t.Run("rejects message while available", func(t *testing.T) {
		uc := usecase.New(setupRepository(t))
		_, err := uc.Status.SaveDetails(ctx, testUserID, model.ProfileUpdate{StatusMessage: model.Set("hi")})
		gt.Bool(t, errors.Is(err, usecase.ErrDetailsWhileAvailable)).True()
	})

	t.Run("response times may change while available", func(t *testing.T) {
		uc := usecase.New(setupRepository(t))
		change, err := uc.Status.SaveDetails(ctx, testUserID, model.ProfileUpdate{UrgentMethod: model.Set("Pager")})
		gt.NoError(t, err).Required()
		gt.Value(t, change.Profile.UrgentMethod).Equal("Pager")
	})

	t.Run("status fields are ignored", func(t *testing.T) {
		uc := usecase.New(setupRepository(t))
		_, err := uc.Status.SaveDetails(ctx, testUserID, model.ProfileUpdate{Status: model.Set(types.StatusAway)})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})
}

func TestStatusUseCase_ExpireDue(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, types.IntegrationSlack)
	slack := newFakeProvider(types.IntegrationSlack)
	uc := usecase.New(repo, usecase.WithSyncProviders(slack))

	now := time.Now().UTC()
	_, err := uc.Status.Transition(ctx, testUserID, model.ProfileUpdate{
		Status:        model.Set(types.StatusAway),
		StatusMessage: model.Set("Lunch"),
		BackAt:        model.Set(now.Add(-time.Minute)),
	})
	gt.NoError(t, err).Required()

	count, err := uc.Status.ExpireDue(ctx, now)
	gt.NoError(t, err).Required()
	gt.Number(t, count).Equal(1)

	stored, err := repo.Profile().Get(ctx, testUserID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Status).Equal(types.StatusAvailable)
	gt.Value(t, stored.BackAt).Nil()

	calls := slack.Calls()
	gt.Value(t, calls[len(calls)-1].Status).Equal(types.StatusAvailable)

	count, err = uc.Status.ExpireDue(ctx, now)
	gt.NoError(t, err)
	gt.Number(t, count).Equal(0)
}
