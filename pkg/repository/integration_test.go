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

func runIntegrationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Upsert creates and Get returns the integration", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := uniqueID("user")
		expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)

		created, err := repo.Integration().Upsert(ctx, &model.Integration{
			UserID:       userID,
			Type:         types.IntegrationGoogleCalendar,
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    &expiresAt,
			IsActive:     true,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).NotEqual(model.IntegrationID(""))

		got, err := repo.Integration().Get(ctx, userID, types.IntegrationGoogleCalendar)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(created.ID)
		gt.Value(t, got.AccessToken).Equal("access")
		gt.Value(t, got.RefreshToken).Equal("refresh")
		gt.Bool(t, got.ExpiresAt.Equal(expiresAt)).True()
		gt.Bool(t, got.IsActive).True()
	})

	t.Run("Upsert replaces tokens and keeps identity", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := uniqueID("user")

		first, err := repo.Integration().Upsert(ctx, &model.Integration{
			UserID:      userID,
			Type:        types.IntegrationSlack,
			AccessToken: "xoxp-old",
			TeamName:    "Team",
			IsActive:    true,
		})
		gt.NoError(t, err).Required()

		second, err := repo.Integration().Upsert(ctx, &model.Integration{
			UserID:      userID,
			Type:        types.IntegrationSlack,
			AccessToken: "xoxp-new",
			TeamName:    "Team",
			IsActive:    true,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, second.ID).Equal(first.ID)
		gt.Bool(t, second.CreatedAt.Equal(first.CreatedAt)).True()

		list, err := repo.Integration().List(ctx, userID, false)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
		gt.Value(t, list[0].AccessToken).Equal("xoxp-new")
	})

	t.Run("List filters inactive integrations", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := uniqueID("user")

		for _, it := range []*model.Integration{
			{UserID: userID, Type: types.IntegrationDiscord, AccessToken: "https://discord.com/api/webhooks/1/x", IsActive: true},
			{UserID: userID, Type: types.IntegrationSlack, AccessToken: "xoxp", IsActive: false},
		} {
			_, err := repo.Integration().Upsert(ctx, it)
			gt.NoError(t, err).Required()
		}

		all, err := repo.Integration().List(ctx, userID, false)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)
		// results follow the fixed integration type order
		gt.Value(t, all[0].Type).Equal(types.IntegrationSlack)
		gt.Value(t, all[1].Type).Equal(types.IntegrationDiscord)

		active, err := repo.Integration().List(ctx, userID, true)
		gt.NoError(t, err).Required()
		gt.Array(t, active).Length(1)
		gt.Value(t, active[0].Type).Equal(types.IntegrationDiscord)
	})

	t.Run("List of another user is empty", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		list, err := repo.Integration().List(ctx, uniqueID("nobody"), false)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(0)
	})

	t.Run("Delete removes the integration", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := uniqueID("user")

		_, err := repo.Integration().Upsert(ctx, &model.Integration{
			UserID:      userID,
			Type:        types.IntegrationSlack,
			AccessToken: "xoxp",
			IsActive:    true,
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Integration().Delete(ctx, userID, types.IntegrationSlack)).Required()

		_, err = repo.Integration().Get(ctx, userID, types.IntegrationSlack)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()

		err = repo.Integration().Delete(ctx, userID, types.IntegrationSlack)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Upsert rejects an unsupported type", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Integration().Upsert(ctx, &model.Integration{
			UserID:      uniqueID("user"),
			Type:        types.IntegrationType("teams"),
			AccessToken: "token",
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrInvalidIntegration)).True()
	})
}

func TestIntegrationRepository_Memory(t *testing.T) {
	runIntegrationRepositoryTest(t, newMemoryRepository)
}

func TestIntegrationRepository_Firestore(t *testing.T) {
	runIntegrationRepositoryTest(t, newFirestoreRepository)
}
