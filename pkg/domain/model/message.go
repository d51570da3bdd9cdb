package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// MessageID is a UUID-based identifier for Message
type MessageID string

// NewMessageID generates a new UUID v4 MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

const (
	MaxMessageContentLength = 2000
	MaxSenderNameLength     = 100
)

// Message is a note left by a visitor of a public profile
type Message struct {
	ID          MessageID
	ProfileID   string
	SenderName  string
	SenderEmail string
	Content     string
	IsUrgent    bool
	IsRead      bool
	CreatedAt   time.Time
}

// Validate checks the message before it is stored
func (m *Message) Validate() error {
	if m.ProfileID == "" {
		return goerr.Wrap(ErrMissingRequired, "profile ID is required")
	}
	if strings.TrimSpace(m.SenderName) == "" {
		return goerr.Wrap(ErrMissingRequired, "sender name is required", goerr.V(FieldKey, "sender_name"))
	}
	if strings.TrimSpace(m.Content) == "" {
		return goerr.Wrap(ErrMissingRequired, "content is required", goerr.V(FieldKey, "content"))
	}
	if len(m.SenderName) > MaxSenderNameLength {
		return goerr.Wrap(ErrTooLong, "sender name is too long", goerr.V(LengthKey, len(m.SenderName)))
	}
	if len(m.Content) > MaxMessageContentLength {
		return goerr.Wrap(ErrTooLong, "content is too long", goerr.V(LengthKey, len(m.Content)))
	}
	return nil
}
