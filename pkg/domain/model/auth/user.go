package auth

import "context"

// User is the authenticated owner of a profile. Authentication itself happens
// upstream; this is the identity it hands over.
type User struct {
	ID    string
	Email string
	Name  string
}

// Claims is the identity asserted for a request before it is accepted. Token
// holds the raw signed identity token, if the request carried one.
type Claims struct {
	UserID string
	Email  string
	Name   string
	Token  string
}

type ctxUserKey struct{}

// ContextWithUser returns a context carrying u
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(ctxUserKey{}).(*User)
	return u
}
