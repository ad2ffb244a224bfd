package auth

import "golang.org/x/crypto/bcrypt"

const (
	PermManageAssets      = "manage_assets"
	PermAllocateAssets    = "allocate_assets"
	PermManageMaintenance = "manage_maintenance"
	PermManageTickets     = "manage_tickets"
	PermAdmin             = "admin"
)

// User is the authenticated employee as the rest of the service sees it.
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions []string) bool {
	for _, userPerm := range u.Permissions {
		for _, requiredPerm := range permissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasPermission(PermAdmin)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
