package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/interfaces"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
)

// SendMessageInput is a note left by a visitor on a status page
type SendMessageInput struct {
	SenderName  string
	SenderEmail string
	Content     string
	IsUrgent    bool
}

type MessageUseCase struct {
	repo interfaces.Repository
}

func NewMessageUseCase(repo interfaces.Repository) *MessageUseCase {
	return &MessageUseCase{repo: repo}
}

// Send stores a visitor message for the owner of username
func (uc *MessageUseCase) Send(ctx context.Context, username string, input SendMessageInput) (*model.Message, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	profile, err := uc.repo.Profile().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrProfileNotFound, "failed to send message", goerr.V(UsernameKey, username))
		}
		return nil, goerr.Wrap(err, "failed to send message", goerr.V(UsernameKey, username))
	}

	msg := &model.Message{
		ProfileID:   profile.ID,
		SenderName:  strings.TrimSpace(input.SenderName),
		SenderEmail: strings.TrimSpace(input.SenderEmail),
		Content:     strings.TrimSpace(input.Content),
		IsUrgent:    input.IsUrgent,
	}
	if err := msg.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, err.Error(), goerr.V(UsernameKey, username))
	}

	created, err := uc.repo.Message().Create(ctx, msg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store message", goerr.V(UsernameKey, username))
	}

	logger := logging.From(ctx)
	if created.IsUrgent {
		logger.Warn("Urgent message received", "user_id", profile.ID, "message_id", created.ID)
	} else {
		logger.Info("Message received", "user_id", profile.ID, "message_id", created.ID)
	}
	return created, nil
}

// List returns the owner's messages, newest first
func (uc *MessageUseCase) List(ctx context.Context, userID string) ([]*model.Message, error) {
	msgs, err := uc.repo.Message().List(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V(UserIDKey, userID))
	}
	return msgs, nil
}

func (uc *MessageUseCase) MarkRead(ctx context.Context, userID string, id model.MessageID) error {
	if err := uc.repo.Message().MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrMessageNotFound, "failed to mark message read",
				goerr.V(UserIDKey, userID), goerr.V(MessageIDKey, id))
		}
		return goerr.Wrap(err, "failed to mark message read", goerr.V(UserIDKey, userID), goerr.V(MessageIDKey, id))
	}
	return nil
}

func (uc *MessageUseCase) Delete(ctx context.Context, userID string, id model.MessageID) error {
	if err := uc.repo.Message().Delete(ctx, userID, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrMessageNotFound, "failed to delete message",
				goerr.V(UserIDKey, userID), goerr.V(MessageIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete message", goerr.V(UserIDKey, userID), goerr.V(MessageIDKey, id))
	}
	return nil
}
