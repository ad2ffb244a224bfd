package middleware

import (
	"net/http"
	"strconv"

	internal "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/pkg/logger"
)

// UserContext tags request-scoped log lines with the authenticated employee.
// Must run after the auth middleware, which attaches the actor ID.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if actorID := internal.ActorIDFromContext(ctx); actorID != 0 {
			ctx = logger.With(ctx, "employee_id", strconv.FormatInt(actorID, 10))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
