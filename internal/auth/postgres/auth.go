package auth

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/asset-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, string, error) {
	var passwordHash string
	var employeeID string
	query := `SELECT id, password_hash FROM employees WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&employeeID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("employee not found")
		}
		return "", "", err
	}
	return passwordHash, employeeID, nil
}

func (r *Repository) GetUserWithPermissions(employeeID int64) (*auth.User, error) {
	var user auth.User

	query := `SELECT id, email FROM employees WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, employeeID).Row()
	if err := row.Scan(&user.ID, &user.Email); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("employee not found")
		}
		return nil, err
	}

	permQuery := `SELECT p.name
	             FROM permissions p
	             JOIN employee_permissions ep ON p.id = ep.permission_id
	             WHERE ep.employee_id = ?`

	rows, err := r.db.Raw(permQuery, employeeID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var permName string
		if err := rows.Scan(&permName); err != nil {
			return nil, err
		}
		permissions = append(permissions, permName)
	}

	user.Permissions = permissions
	return &user, nil
}
