package postgres

import (
	"time"

	internal "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/allocation"
	allocationDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/allocation"
	"gorm.io/gorm"
)

// AllocationRepository implements the allocation.Repository interface using GORM
type AllocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) allocation.Repository {
	return &AllocationRepository{db: db}
}

func (r *AllocationRepository) Create(a *allocation.Allocation) error {
	dm := allocation.ToDataModel(a)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	a.ID = dm.ID
	a.CreatedAt = dm.CreatedAt
	a.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *AllocationRepository) GetByID(id int64) (*allocation.Allocation, error) {
	var dm allocationDatamodel.Allocation
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrAllocationNotFound
		}
		return nil, internal.NewStorageError("failed to load allocation", err)
	}
	return allocation.FromDataModel(&dm), nil
}

func (r *AllocationRepository) ActiveForAsset(assetID int64) (*allocation.Allocation, error) {
	var dm allocationDatamodel.Allocation
	err := r.db.Where("asset_id = ? AND status = ?", assetID, allocation.StatusActive).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrAllocationNotFound
		}
		return nil, internal.NewStorageError("failed to load active allocation", err)
	}
	return allocation.FromDataModel(&dm), nil
}

func (r *AllocationRepository) List(filter allocation.ListFilter) ([]*allocation.Allocation, error) {
	var dms []*allocationDatamodel.Allocation

	q := r.db.Model(&allocationDatamodel.Allocation{})
	if filter.AssetID != 0 {
		q = q.Where("asset_id = ?", filter.AssetID)
	}
	if filter.EmployeeID != 0 {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	err := q.Order("allocated_date DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]*allocation.Allocation, len(dms))
	for i, dm := range dms {
		result[i] = allocation.FromDataModel(dm)
	}
	return result, nil
}

func (r *AllocationRepository) Update(a *allocation.Allocation) error {
	a.UpdatedAt = time.Now()
	return r.db.Model(&allocationDatamodel.Allocation{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"department":  a.Department,
			"location":    a.Location,
			"status":      a.Status,
			"condition":   a.Condition,
			"notes":       a.Notes,
			"return_date": a.ReturnDate,
			"updated_at":  a.UpdatedAt,
		}).Error
}
