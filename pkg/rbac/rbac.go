// Package rbac provides role-based access control middleware.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/shopease/pkg/auth"
	"github.com/shashiranjanraj/shopease/pkg/middleware"
	"github.com/shashiranjanraj/shopease/pkg/response"
)

// HasRole returns middleware that allows access only to users with one of the
// given roles. middleware.Auth must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	return hasRole("Forbidden", roles...)
}

// Admin allows administrators only.
func Admin(next http.Handler) http.Handler {
	return hasRole("Admin access required", auth.RoleAdmin)(next)
}

func hasRole(message string, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := middleware.UserIDFromCtx(r); !ok {
				response.Unauthorized(w)
				return
			}
			role, ok := middleware.RoleFromCtx(r)
			if !ok || !allowed[role] {
				response.Error(w, http.StatusForbidden, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
