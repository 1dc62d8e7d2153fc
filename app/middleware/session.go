package middleware

import (
	"context"
	"net/http"

	"github.com/citypress/account-service/app/models"
	"github.com/citypress/account-service/app/services"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
)

// SessionCookieName is the authentication cookie carrying the signed session token.
const SessionCookieName = "cp_session"

// SessionAuth validates the session cookie and injects the caller's identity
// into the request context.
func SessionAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookieName)
			if err != nil || c.Value == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := services.ValidateSessionToken(c.Value)
			if err != nil {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
			ctx = context.WithValue(ctx, ctxRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the user ID set by SessionAuth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	val := ctx.Value(ctxUserID)
	if v, ok := val.(int64); ok {
		return v, true
	}
	return 0, false
}

// RoleFromContext retrieves the role set by SessionAuth.
func RoleFromContext(ctx context.Context) (models.Role, bool) {
	val := ctx.Value(ctxRole)
	if v, ok := val.(models.Role); ok {
		return v, true
	}
	return "", false
}

// RequireAdmin gates a route on the admin role claim.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				http.Error(w, "role not found in context", http.StatusForbidden)
				return
			}
			if !role.IsAdmin() {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
