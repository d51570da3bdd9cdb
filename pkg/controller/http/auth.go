package http

import (
	"net/http"
	"strings"

	"github.com/secmon-lab/qoit/pkg/domain/model/auth"
	"github.com/secmon-lab/qoit/pkg/usecase"
)

type AuthUseCase = usecase.AuthUseCaseInterface

// AuthHeaders names the request headers set by the authenticating proxy.
// Token carries a signed identity token, with or without a Bearer prefix.
type AuthHeaders struct {
	UserID string
	Email  string
	Name   string
	Token  string
}

var DefaultAuthHeaders = AuthHeaders{
	UserID: "X-Auth-User-Id",
	Email:  "X-Auth-User-Email",
	Name:   "X-Auth-User-Name",
	Token:  "Authorization",
}

// claims reads the asserted identity from r. Unset header names are skipped.
func (h AuthHeaders) claims(r *http.Request) auth.Claims {
	get := func(name string) string {
		if name == "" {
			return ""
		}
		return r.Header.Get(name)
	}
	return auth.Claims{
		UserID: get(h.UserID),
		Email:  get(h.Email),
		Name:   get(h.Name),
		Token:  bearerToken(get(h.Token)),
	}
}

func bearerToken(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > len("bearer ") && strings.EqualFold(v[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(v[len("bearer "):])
	}
	return v
}

type successResponse struct {
	Success bool `json:"success"`
}

// currentUser returns the owner authenticated by authMiddleware
func currentUser(r *http.Request) *auth.User {
	return auth.UserFromContext(r.Context())
}
