package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/asset-management/internal/auth"
)

// RequirePermissions creates a middleware that checks if user has required permissions
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.HasAnyPermission(permissions) {
				slog.Warn("Access denied: user lacks required permissions",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			// Expose permissions to the service layer
			ctx := context.WithValue(r.Context(), "user_permissions", user.Permissions)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HasStaffPermissions checks if user can act on assets beyond their own
func HasStaffPermissions(user *auth.User) bool {
	staffPerms := []string{auth.PermManageAssets, auth.PermAllocateAssets, auth.PermManageTickets, auth.PermAdmin}
	return user.HasAnyPermission(staffPerms)
}
