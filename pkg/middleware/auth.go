package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/shopease/pkg/auth"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/response"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	roleKey
)

// WithIdentity stores the authenticated user id and role in ctx.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// UserIDFromCtx returns the authenticated user id set by Auth or OptionalAuth.
func UserIDFromCtx(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(userIDKey).(string)
	return id, ok && id != ""
}

// RoleFromCtx returns the authenticated role set by Auth or OptionalAuth.
func RoleFromCtx(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(roleKey).(string)
	return role, ok && role != ""
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// QueryToken lets clients that cannot set headers (browser WebSockets) send
// the access token as ?token=. It must run before Auth.
func QueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t := r.URL.Query().Get("token"); t != "" && r.Header.Get("Authorization") == "" {
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+t)
		}
		next.ServeHTTP(w, r)
	})
}

// Auth rejects requests without a valid access token and stores the caller's
// identity in the request context.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			logger.WithCtx(r.Context()).Debug("token rejected", "error", err)
			response.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := WithIdentity(r.Context(), claims.UserID(), claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth populates the identity when a valid token is present and
// otherwise lets the request through untouched.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := BearerToken(r); token != "" {
			if claims, err := auth.ValidateToken(token); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), claims.UserID(), claims.Role))
			}
		}
		next.ServeHTTP(w, r)
	})
}
