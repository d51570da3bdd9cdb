package usecase

import (
	"context"

	"github.com/secmon-lab/qoit/pkg/domain/model/auth"
)

// NoAuthnUseCase authenticates every request as a fixed user (for development/testing)
type NoAuthnUseCase struct {
	user auth.User
}

// NewNoAuthnUseCase creates a new NoAuthnUseCase instance with specified user info
func NewNoAuthnUseCase(id, email, name string) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		user: auth.User{ID: id, Email: email, Name: name},
	}
}

// Authenticate ignores claims and returns the configured user
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, claims auth.Claims) (*auth.User, error) {
	u := uc.user
	return &u, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
