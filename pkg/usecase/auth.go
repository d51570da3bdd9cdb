package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/model/auth"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
)

// AuthUseCaseInterface resolves the owner of a request. Sign-in itself happens
// in front of this service; the identity arrives as request claims.
type AuthUseCaseInterface interface {
	Authenticate(ctx context.Context, claims auth.Claims) (*auth.User, error)
	IsNoAuthn() bool
}

// HeaderAuthnUseCase trusts the identity forwarded by the authenticating proxy
type HeaderAuthnUseCase struct {
	allowedDomains []string
}

// HeaderAuthnOption is a functional option for HeaderAuthnUseCase
type HeaderAuthnOption func(*HeaderAuthnUseCase)

// WithAllowedDomains restricts owners to email addresses of the given domains
func WithAllowedDomains(domains ...string) HeaderAuthnOption {
	return func(uc *HeaderAuthnUseCase) {
		for _, d := range domains {
			if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
				uc.allowedDomains = append(uc.allowedDomains, d)
			}
		}
	}
}

func NewHeaderAuthnUseCase(opts ...HeaderAuthnOption) *HeaderAuthnUseCase {
	uc := &HeaderAuthnUseCase{}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Authenticate returns the user named by claims. A request without a user ID
// is anonymous and rejected.
func (uc *HeaderAuthnUseCase) Authenticate(ctx context.Context, claims auth.Claims) (*auth.User, error) {
	id := strings.TrimSpace(claims.UserID)
	if id == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "user ID claim is missing")
	}

	email := strings.TrimSpace(claims.Email)
	if len(uc.allowedDomains) > 0 && !uc.domainAllowed(email) {
		logging.From(ctx).Warn("Rejected user from disallowed domain", "user_id", id)
		return nil, goerr.Wrap(ErrUnauthenticated, "email domain is not allowed", goerr.V(UserIDKey, id))
	}

	return &auth.User{
		ID:    id,
		Email: email,
		Name:  strings.TrimSpace(claims.Name),
	}, nil
}

func (uc *HeaderAuthnUseCase) domainAllowed(email string) bool {
	_, domain, ok := strings.Cut(email, "@")
	if !ok {
		return false
	}
	domain = strings.ToLower(domain)
	for _, d := range uc.allowedDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// IsNoAuthn returns false for HeaderAuthnUseCase
func (uc *HeaderAuthnUseCase) IsNoAuthn() bool {
	return false
}
