// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"money-transfer-api/internal/api/types"
	"money-transfer-api/internal/auth"
	"money-transfer-api/internal/domain"
	"money-transfer-api/internal/util"
)

// AuthContextKey is a custom type for the context key to avoid collisions.
type AuthContextKey string

// UserIDKey is the key used to store the authenticated user's ID in the request context.
const UserIDKey AuthContextKey = "userID"

// TokenParser verifies bearer tokens. *auth.TokenManager implements it.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// UserLookup confirms the token's user still exists.
type UserLookup interface {
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
}

// Authenticate validates the bearer JWT and stores the user ID in the request context.
func Authenticate(tokens TokenParser, users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				_ = types.WriteError(w, http.StatusUnauthorized, "Access token is required")
				return
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				logger.Warn("Rejected access token", "path", r.URL.Path, "remote_addr", r.RemoteAddr, "error", err)
				_ = types.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if _, err := users.GetProfile(r.Context(), claims.UserID); err != nil {
				if util.IsError(err, util.ErrUserNotFound) {
					_ = types.WriteError(w, http.StatusUnauthorized, "User no longer exists")
					return
				}
				logger.Error("Failed to load authenticated user", "user_id", claims.UserID, "error", err)
				_ = types.WriteError(w, http.StatusInternalServerError, "Something went wrong")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserIDFromContext retrieves the authenticated user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok && userID > 0
}
