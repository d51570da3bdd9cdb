package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
)

// Repository defines the interface for data persistence
type Repository interface {
	Profile() ProfileRepository
	Integration() IntegrationRepository
	Message() MessageRepository

	Close() error
}

// ProfileRepository stores status pages. The profile row is written by the
// owner's session; Update applies every field of a ProfileUpdate atomically.
type ProfileRepository interface {
	// Get retrieves a profile by user ID
	Get(ctx context.Context, userID string) (*model.Profile, error)

	// GetByUsername retrieves a profile by its public username
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)

	// Create stores a new profile. The username must not be taken.
	Create(ctx context.Context, profile *model.Profile) (*model.Profile, error)

	// Update applies the partial update in one write and returns the stored profile
	Update(ctx context.Context, userID string, update model.ProfileUpdate) (*model.Profile, error)

	// ListExpired returns non-available profiles whose BackAt is not after now
	ListExpired(ctx context.Context, now time.Time) ([]*model.Profile, error)
}

// IntegrationRepository stores connected third-party accounts. It is written by
// the connect/disconnect flows and only read during sync.
type IntegrationRepository interface {
	// List returns the integrations of a user, optionally only active ones
	List(ctx context.Context, userID string, activeOnly bool) ([]*model.Integration, error)

	// Get retrieves the integration of a given type
	Get(ctx context.Context, userID string, integrationType types.IntegrationType) (*model.Integration, error)

	// Upsert creates or replaces the integration keyed by (user, type)
	Upsert(ctx context.Context, integration *model.Integration) (*model.Integration, error)

	// Delete removes the integration of a given type
	Delete(ctx context.Context, userID string, integrationType types.IntegrationType) error
}

// MessageRepository stores visitor messages
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) (*model.Message, error)

	// List returns messages of a profile, newest first
	List(ctx context.Context, profileID string) ([]*model.Message, error)

	MarkRead(ctx context.Context, profileID string, id model.MessageID) error
	Delete(ctx context.Context, profileID string, id model.MessageID) error
}
