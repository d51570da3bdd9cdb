package http

import (
	"net/http"

	"github.com/secmon-lab/qoit/pkg/domain/model/auth"
	"github.com/secmon-lab/qoit/pkg/utils/errutil"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
)

// authMiddleware resolves the owner of protected requests
func authMiddleware(authUC AuthUseCase, headers AuthHeaders) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authUC.Authenticate(r.Context(), headers.claims(r))
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
