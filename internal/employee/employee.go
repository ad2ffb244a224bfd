package employee

import (
	"time"

	employeeDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/employee"
)

// Employee is the read-side directory view. Credentials never leave the
// auth package.
type Employee struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Department string    `json:"department,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:         e.ID,
		Email:      e.Email,
		Name:       e.Name,
		Department: e.Department,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt,
	}
}

type ListFilter struct {
	Department string
	Search     string
	Limit      int
	Offset     int
}
