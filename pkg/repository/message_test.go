package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
)

func runMessageRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and List newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		profileID := uniqueID("profile")

		first, err := repo.Message().Create(ctx, &model.Message{
			ProfileID:  profileID,
			SenderName: "Alice",
			Content:    "first",
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, first.IsRead).False()
		gt.Value(t, first.ID).NotEqual(model.MessageID(""))

		time.Sleep(5 * time.Millisecond)

		second, err := repo.Message().Create(ctx, &model.Message{
			ProfileID:   profileID,
			SenderName:  "Bob",
			SenderEmail: "bob@example.com",
			Content:     "second",
			IsUrgent:    true,
		})
		gt.NoError(t, err).Required()

		list, err := repo.Message().List(ctx, profileID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2).Required()
		gt.Value(t, list[0].ID).Equal(second.ID)
		gt.Value(t, list[1].ID).Equal(first.ID)
		gt.Bool(t, list[0].IsUrgent).True()
		gt.Value(t, list[0].SenderEmail).Equal("bob@example.com")
	})

	t.Run("List of a profile without messages is empty", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		list, err := repo.Message().List(ctx, uniqueID("profile"))
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(0)
	})

	t.Run("MarkRead flags the message", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		profileID := uniqueID("profile")

		msg, err := repo.Message().Create(ctx, &model.Message{
			ProfileID:  profileID,
			SenderName: "Alice",
			Content:    "hello",
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Message().MarkRead(ctx, profileID, msg.ID)).Required()

		list, err := repo.Message().List(ctx, profileID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1).Required()
		gt.Bool(t, list[0].IsRead).True()
	})

	t.Run("Delete removes only the target message", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		profileID := uniqueID("profile")

		keep, err := repo.Message().Create(ctx, &model.Message{ProfileID: profileID, SenderName: "A", Content: "keep"})
		gt.NoError(t, err).Required()
		drop, err := repo.Message().Create(ctx, &model.Message{ProfileID: profileID, SenderName: "B", Content: "drop"})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Message().Delete(ctx, profileID, drop.ID)).Required()

		list, err := repo.Message().List(ctx, profileID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1).Required()
		gt.Value(t, list[0].ID).Equal(keep.ID)
	})

	t.Run("Unknown message returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		profileID := uniqueID("profile")

		err := repo.Message().MarkRead(ctx, profileID, model.NewMessageID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()

		err = repo.Message().Delete(ctx, profileID, model.NewMessageID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("Create rejects an empty message", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Message().Create(ctx, &model.Message{
			ProfileID:  uniqueID("profile"),
			SenderName: "Alice",
			Content:    "   ",
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrMissingRequired)).True()
	})
}

func TestMessageRepository_Memory(t *testing.T) {
	runMessageRepositoryTest(t, newMemoryRepository)
}

func TestMessageRepository_Firestore(t *testing.T) {
	runMessageRepositoryTest(t, newFirestoreRepository)
}
