package auth

import (
	"context"
	"log/slog"
	"net/http"
)

type PermissionAuthorizer interface {
	HasPermission(ctx context.Context, userPermissions []string, permission string) (bool, error)
	CanManageAssetsCtx(ctx context.Context, userPermissions []string) (bool, error)
	CanAllocateAssetsCtx(ctx context.Context, userPermissions []string) (bool, error)
	CanManageMaintenanceCtx(ctx context.Context, userPermissions []string) (bool, error)
	CanManageTicketsCtx(ctx context.Context, userPermissions []string) (bool, error)
	IsAdminCtx(ctx context.Context, userPermissions []string) (bool, error)
}

type RBACAuthorization struct {
	authorizer PermissionAuthorizer
	logger     *slog.Logger
}

func NewRBACAuthorization(authorizer PermissionAuthorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		authorizer: authorizer,
		logger:     logger,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, permission string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || user == nil {
			ra.logger.Warn("authorization check failed: user not found in context")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		hasAccess, err := ra.authorizer.HasPermission(r.Context(), user.Permissions, permission)
		if err != nil {
			ra.logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "user_id", user.ID, "permission", permission)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !hasAccess {
			ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", user.ID,
				"required_permission", permission,
				"user_permissions", user.Permissions)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Middleware(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, permission)
	}
}

func (ra *RBACAuthorization) requireCapability(name string, check func(ctx context.Context, perms []string) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := check(r.Context(), user.Permissions)
			if err != nil {
				ra.logger.ErrorContext(r.Context(), "capability check failed", "capability", name, "error", err, "user_id", user.ID)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				ra.logger.WarnContext(r.Context(), "access denied", "capability", name, "user_id", user.ID)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireManageAssets() func(http.Handler) http.Handler {
	return ra.requireCapability("manage_assets", ra.authorizer.CanManageAssetsCtx)
}

func (ra *RBACAuthorization) RequireAllocateAssets() func(http.Handler) http.Handler {
	return ra.requireCapability("allocate_assets", ra.authorizer.CanAllocateAssetsCtx)
}

func (ra *RBACAuthorization) RequireManageMaintenance() func(http.Handler) http.Handler {
	return ra.requireCapability("manage_maintenance", ra.authorizer.CanManageMaintenanceCtx)
}

func (ra *RBACAuthorization) RequireManageTickets() func(http.Handler) http.Handler {
	return ra.requireCapability("manage_tickets", ra.authorizer.CanManageTicketsCtx)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.requireCapability("admin", ra.authorizer.IsAdminCtx)
}
