package postgres

import (
	internal "github.com/frahmantamala/asset-management/internal"
	employeeDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/asset-management/internal/employee"
	"gorm.io/gorm"
)

// EmployeeRepository implements the employee.Repository interface using GORM
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByID(id int64) (*employee.Employee, error) {
	var dm employeeDatamodel.Employee
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, internal.NewStorageError("failed to load employee", err)
	}
	return employee.FromDataModel(&dm), nil
}

func (r *EmployeeRepository) List(filter employee.ListFilter) ([]*employee.Employee, error) {
	var dms []*employeeDatamodel.Employee

	q := r.db.Model(&employeeDatamodel.Employee{})
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	err := q.Order("name ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]*employee.Employee, len(dms))
	for i, dm := range dms {
		result[i] = employee.FromDataModel(dm)
	}
	return result, nil
}
