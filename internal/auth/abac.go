package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

var ErrForbidden = errors.New("forbidden")

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

// ABACPolicy grants access based on who owns the resource rather than on a
// named permission. Admins and asset managers pass everything.
type ABACPolicy struct{}

func (p *ABACPolicy) allowOwnerOrStaff(u *User, ownerID int64, staffPerms ...string) error {
	if u == nil {
		return ErrForbidden
	}
	if u.IsAdmin() || u.HasAnyPermission(staffPerms) {
		return nil
	}
	if u.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

// CanViewAllocation checks whether the user may read an allocation held by
// the given employee.
func (p *ABACPolicy) CanViewAllocation(u *User, holderID int64) error {
	return p.allowOwnerOrStaff(u, holderID, PermAllocateAssets, PermManageAssets)
}

// CanViewTicket checks whether the user may read a ticket reported by the
// given employee.
func (p *ABACPolicy) CanViewTicket(u *User, reporterID int64) error {
	return p.allowOwnerOrStaff(u, reporterID, PermManageTickets)
}

// RequireABAC is a generic middleware wrapper that runs an ABAC check function.
func RequireABAC(abac *ABACPolicy, check func(a *ABACPolicy, u *User, r *http.Request) error) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok || u == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if err := check(abac, u, r); err != nil {
				if errors.Is(err, ErrForbidden) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCanViewAllocation builds a middleware that checks whether the user
// may read the allocation in the URL.
func RequireCanViewAllocation(db *sqlx.DB, abac *ABACPolicy) func(next http.Handler) http.Handler {
	return RequireABAC(abac, func(a *ABACPolicy, u *User, r *http.Request) error {
		id, err := resourceID(r)
		if err != nil {
			return err
		}

		var holderID int64
		err = db.GetContext(r.Context(), &holderID, "SELECT employee_id FROM allocations WHERE id=$1", id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrForbidden
			}
			return err
		}
		return a.CanViewAllocation(u, holderID)
	})
}

// RequireCanViewTicket builds a middleware that checks whether the user may
// read the ticket in the URL.
func RequireCanViewTicket(db *sqlx.DB, abac *ABACPolicy) func(next http.Handler) http.Handler {
	return RequireABAC(abac, func(a *ABACPolicy, u *User, r *http.Request) error {
		id, err := resourceID(r)
		if err != nil {
			return err
		}

		var reporterID int64
		err = db.GetContext(r.Context(), &reporterID, "SELECT reporter_id FROM tickets WHERE id=$1", id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrForbidden
			}
			return err
		}
		return a.CanViewTicket(u, reporterID)
	})
}

func resourceID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		return 0, ErrForbidden
	}
	return strconv.ParseInt(idStr, 10, 64)
}
