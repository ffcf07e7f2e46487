package server

import (
	"context"
	"net/http"
	"strings"

	"playshare/apperr"
	"playshare/logger"
)

// Identity is the caller identity resolved once per request by the auth
// middleware: who is calling and whether they hold the admin override.
type Identity struct {
	UserID int64
	Admin  bool
}

// contextKey is a private type for request context keys.
type contextKey int

const identityKey contextKey = iota

// RequireAuth resolves the caller's identity from the Authorization header
// and attaches it to the request context. It is the single place the admin
// flag is looked up; handlers downstream consult the resolved Identity and
// never re-query it.
func (h *APIHandler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, apperr.ErrAuthRequired)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			writeError(w, apperr.ErrAuthRequired)
			return
		}

		userID, err := h.tokens.ParseToken(parts[1])
		if err != nil {
			writeError(w, err)
			return
		}

		user, err := h.userRepo.GetUserByID(r.Context(), userID)
		if err != nil {
			logger.Error("failed to resolve caller admin flag",
				logger.Int64("userId", userID),
				logger.ErrorField(err))
			writeError(w, apperr.ErrInternal.WithError(err))
			return
		}
		if user == nil {
			// Token subject no longer exists.
			writeError(w, apperr.ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, Identity{
			UserID: user.ID,
			Admin:  user.Admin,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// IdentityFromContext extracts the caller identity stored by RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
