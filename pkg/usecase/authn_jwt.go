package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/model/auth"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
)

const (
	jwtAcceptableSkew = 30 * time.Second
	jwksMinRefresh    = 15 * time.Minute
)

// JWTAuthnUseCase accepts a request only when it carries a signed identity
// token, such as a Supabase access token or an identity-aware proxy
// assertion. Identity headers without a token are ignored.
type JWTAuthnUseCase struct {
	keys     jwk.Set
	secret   []byte
	audience string
	issuer   string
	identity *HeaderAuthnUseCase
}

// JWTAuthnOption is a functional option for JWTAuthnUseCase
type JWTAuthnOption func(*JWTAuthnUseCase)

// WithJWTKeySet verifies tokens against the public keys of set
func WithJWTKeySet(set jwk.Set) JWTAuthnOption {
	return func(uc *JWTAuthnUseCase) {
		uc.keys = set
	}
}

// WithJWTSecret verifies HS256 tokens signed with secret
func WithJWTSecret(secret []byte) JWTAuthnOption {
	return func(uc *JWTAuthnUseCase) {
		uc.secret = secret
	}
}

func WithJWTAudience(aud string) JWTAuthnOption {
	return func(uc *JWTAuthnUseCase) {
		uc.audience = aud
	}
}

func WithJWTIssuer(iss string) JWTAuthnOption {
	return func(uc *JWTAuthnUseCase) {
		uc.issuer = iss
	}
}

// WithJWTAllowedDomains restricts owners to email addresses of the given domains
func WithJWTAllowedDomains(domains ...string) JWTAuthnOption {
	return func(uc *JWTAuthnUseCase) {
		uc.identity = NewHeaderAuthnUseCase(WithAllowedDomains(domains...))
	}
}

// NewJWTAuthnUseCase requires exactly one of a key set or a secret
func NewJWTAuthnUseCase(opts ...JWTAuthnOption) (*JWTAuthnUseCase, error) {
	uc := &JWTAuthnUseCase{
		identity: NewHeaderAuthnUseCase(),
	}
	for _, opt := range opts {
		opt(uc)
	}

	switch {
	case uc.keys == nil && len(uc.secret) == 0:
		return nil, goerr.New("either a key set or a secret is required to verify identity tokens")
	case uc.keys != nil && len(uc.secret) > 0:
		return nil, goerr.New("key set and secret are mutually exclusive")
	}
	return uc, nil
}

// NewJWKSet fetches the key set at url and keeps it refreshed for the lifetime of ctx
func NewJWKSet(ctx context.Context, url string) (jwk.Set, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(url, jwk.WithMinRefreshInterval(jwksMinRefresh)); err != nil {
		return nil, goerr.Wrap(err, "failed to register JWKS", goerr.V("jwks_url", url))
	}
	if _, err := cache.Refresh(ctx, url); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch JWKS", goerr.V("jwks_url", url))
	}
	return jwk.NewCachedSet(cache, url), nil
}

// Authenticate verifies claims.Token and returns the user it names
func (uc *JWTAuthnUseCase) Authenticate(ctx context.Context, claims auth.Claims) (*auth.User, error) {
	raw := strings.TrimSpace(claims.Token)
	if raw == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "identity token is missing")
	}

	opts := []jwt.ParseOption{
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(jwtAcceptableSkew),
	}
	if uc.keys != nil {
		opts = append(opts, jwt.WithKeySet(uc.keys))
	} else {
		opts = append(opts, jwt.WithKey(jwa.HS256, uc.secret))
	}
	if uc.audience != "" {
		opts = append(opts, jwt.WithAudience(uc.audience))
	}
	if uc.issuer != "" {
		opts = append(opts, jwt.WithIssuer(uc.issuer))
	}

	token, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		logging.From(ctx).Warn("Rejected identity token", "error", err.Error())
		return nil, goerr.Wrap(ErrUnauthenticated, "failed to verify identity token", goerr.V("reason", err.Error()))
	}

	return uc.identity.Authenticate(ctx, auth.Claims{
		UserID: token.Subject(),
		Email:  stringClaim(token, "email"),
		Name:   tokenName(token),
	})
}

// tokenName reads the name claim, falling back to the user metadata that
// Supabase puts in its access tokens
func tokenName(token jwt.Token) string {
	if name := stringClaim(token, "name"); name != "" {
		return name
	}
	v, ok := token.Get("user_metadata")
	if !ok {
		return ""
	}
	meta, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"full_name", "name"} {
		if s, ok := meta[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringClaim(token jwt.Token, name string) string {
	v, ok := token.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// IsNoAuthn returns false for JWTAuthnUseCase
func (uc *JWTAuthnUseCase) IsNoAuthn() bool {
	return false
}
