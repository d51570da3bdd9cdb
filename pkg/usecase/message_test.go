package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/usecase"
)

func TestMessageUseCase(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(setupRepository(t))

	msg, err := uc.Message.Send(ctx, "ada", usecase.SendMessageInput{
		SenderName:  " Charles ",
		SenderEmail: "charles@example.com",
		Content:     "The engine is on fire",
		IsUrgent:    true,
	})
	gt.NoError(t, err).Required()
	gt.Value(t, msg.ProfileID).Equal(testUserID)
	gt.Value(t, msg.SenderName).Equal("Charles")
	gt.Bool(t, msg.IsUrgent).True()
	gt.Bool(t, msg.IsRead).False()

	t.Run("owner lists and marks read", func(t *testing.T) {
		msgs, err := uc.Message.List(ctx, testUserID)
		gt.NoError(t, err).Required()
		gt.Array(t, msgs).Length(1).Required()

		gt.NoError(t, uc.Message.MarkRead(ctx, testUserID, msg.ID)).Required()
		msgs, err = uc.Message.List(ctx, testUserID)
		gt.NoError(t, err).Required()
		gt.Bool(t, msgs[0].IsRead).True()
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := uc.Message.Send(ctx, "ada", usecase.SendMessageInput{SenderName: "C", Content: "  "})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()

		_, err = uc.Message.Send(ctx, "ada", usecase.SendMessageInput{
			SenderName: "C",
			Content:    strings.Repeat("x", model.MaxMessageContentLength+1),
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidInput)).True()
	})

	t.Run("unknown recipient", func(t *testing.T) {
		_, err := uc.Message.Send(ctx, "nobody", usecase.SendMessageInput{SenderName: "C", Content: "hi"})
		gt.Bool(t, errors.Is(err, usecase.ErrProfileNotFound)).True()
	})

	t.Run("delete", func(t *testing.T) {
		gt.NoError(t, uc.Message.Delete(ctx, testUserID, msg.ID)).Required()

		err := uc.Message.Delete(ctx, testUserID, msg.ID)
		gt.Bool(t, errors.Is(err, usecase.ErrMessageNotFound)).True()

		err = uc.Message.MarkRead(ctx, testUserID, msg.ID)
		gt.Bool(t, errors.Is(err, usecase.ErrMessageNotFound)).True()
	})
}
