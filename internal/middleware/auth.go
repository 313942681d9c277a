package middleware

import (
	"context"
	"net/http"

	"mshop-be/internal/access"
	"mshop-be/internal/apperror"
	"mshop-be/internal/auth"
	"mshop-be/internal/logger"
	"mshop-be/internal/transport"
	"mshop-be/internal/user"
	"mshop-be/internal/utils"

	"go.uber.org/zap"
)

var (
	ErrAuthRequired = apperror.Unauthorized("authentication required")
	ErrRoleRequired = apperror.Forbidden("insufficient role")
)

// Authenticator resolves a token to a live, active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// RequireAuth rejects requests without a valid token. The user is re-read on
// every request so deactivation and role changes apply immediately.
func RequireAuth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractAccessToken(r)
			if token == "" {
				transport.Error(w, r, ErrAuthRequired)
				return
			}

			u, err := a.Authenticate(r.Context(), token)
			if err != nil {
				if apperror.KindOf(err) != apperror.KindUnauthorized {
					logger.FromCtx(r.Context()).Error("authentication lookup failed", zap.Error(err))
				}
				transport.Error(w, r, err)
				return
			}

			ctx := utils.SetUserContext(r.Context(), u.ID, u.Role)
			ctx = logger.WithUserID(ctx, u.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := utils.ActorFromContext(r.Context())
			if !ok {
				transport.Error(w, r, ErrAuthRequired)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			transport.Error(w, r, ErrRoleRequired)
		})
	}
}
