package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/usecase"
)

func TestIntegrationUseCase(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, types.IntegrationSlack)
	slack := newFakeProvider(types.IntegrationSlack)
	discord := newFakeProvider(types.IntegrationDiscord)
	uc := usecase.New(repo, usecase.WithSyncProviders(slack, discord))

	t.Run("connect stores an active integration", func(t *testing.T) {
		err := uc.Integration.Connect(ctx, &model.Integration{
			UserID:      testUserID,
			Type:        types.IntegrationDiscord,
			AccessToken: "https://discord.com/api/webhooks/1/secret",
			TeamName:    "Engine Room",
		})
		gt.NoError(t, err).Required()

		stored, err := repo.Integration().Get(ctx, testUserID, types.IntegrationDiscord)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.IsActive).True()
	})

	t.Run("connect rejects missing token", func(t *testing.T) {
		err := uc.Integration.Connect(ctx, &model.Integration{UserID: testUserID, Type: types.IntegrationSlack})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})

	t.Run("list omits credentials", func(t *testing.T) {
		list, err := uc.Integration.List(ctx, testUserID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2).Required()
		gt.Value(t, list[0].Type).Equal(types.IntegrationSlack)
		gt.Value(t, list[1].Type).Equal(types.IntegrationDiscord)
		gt.Value(t, list[1].TeamName).Equal("Engine Room")
	})

	t.Run("sync now pushes the stored status", func(t *testing.T) {
		res, err := uc.Integration.SyncNow(ctx, testUserID)
		gt.NoError(t, err).Required()
		gt.Bool(t, res.Success).True()
		gt.Number(t, res.IntegrationCount).Equal(2)
		gt.Array(t, discord.Calls()).Length(1)
		gt.Value(t, discord.Calls()[0].Status).Equal(types.StatusAvailable)
	})

	t.Run("disconnect", func(t *testing.T) {
		gt.NoError(t, uc.Integration.Disconnect(ctx, testUserID, types.IntegrationDiscord)).Required()

		err := uc.Integration.Disconnect(ctx, testUserID, types.IntegrationDiscord)
		gt.Bool(t, errors.Is(err, usecase.ErrIntegrationNotFound)).True()

		err = uc.Integration.Disconnect(ctx, testUserID, types.IntegrationType("myspace"))
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})

	t.Run("sync now for unknown user", func(t *testing.T) {
		_, err := uc.Integration.SyncNow(ctx, "nobody")
		gt.Bool(t, errors.Is(err, usecase.ErrProfileNotFound)).True()
	})
}
