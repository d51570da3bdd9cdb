package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/types"
)

// IntegrationID is a UUID-based identifier for Integration
type IntegrationID string

// NewIntegrationID generates a new UUID v4 IntegrationID
func NewIntegrationID() IntegrationID {
	return IntegrationID(uuid.New().String())
}

// Integration is a connected third-party account of a user. At most one
// integration of each type exists per user.
type Integration struct {
	ID           IntegrationID
	UserID       string
	Type         types.IntegrationType
	AccessToken  string     `masq:"secret"` // Discord stores the webhook URL here
	RefreshToken string     `masq:"secret"`
	ExpiresAt    *time.Time // nil when the token does not expire
	TeamID       string
	TeamName     string
	Scope        string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired reports whether the access token has passed its expiry
func (i *Integration) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// Clone returns a deep copy of the integration
func (i *Integration) Clone() *Integration {
	if i == nil {
		return nil
	}
	c := *i
	if i.ExpiresAt != nil {
		at := *i.ExpiresAt
		c.ExpiresAt = &at
	}
	return &c
}

// Validate checks the integration fields required for storage
func (i *Integration) Validate() error {
	if i.UserID == "" {
		return goerr.Wrap(ErrMissingRequired, "integration user ID is required")
	}
	if !i.Type.IsValid() {
		return goerr.Wrap(ErrInvalidIntegration, "unsupported integration type", goerr.V(IntegrationTypeKey, i.Type))
	}
	if i.AccessToken == "" {
		return goerr.Wrap(ErrMissingRequired, "access token is required", goerr.V(IntegrationTypeKey, i.Type))
	}
	return nil
}
