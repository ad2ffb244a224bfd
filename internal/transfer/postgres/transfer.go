package postgres

import (
	"time"

	internal "github.com/frahmantamala/asset-management/internal"
	transferDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/transfer"
	"github.com/frahmantamala/asset-management/internal/transfer"
	"gorm.io/gorm"
)

// TransferRepository implements the transfer.Repository interface using GORM
type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) transfer.Repository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(t *transfer.Transfer) error {
	dm := transfer.ToDataModel(t)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	t.ID = dm.ID
	t.CreatedAt = dm.CreatedAt
	t.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *TransferRepository) GetByID(id int64) (*transfer.Transfer, error) {
	var dm transferDatamodel.Transfer
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTransferNotFound
		}
		return nil, internal.NewStorageError("failed to load transfer", err)
	}
	return transfer.FromDataModel(&dm), nil
}

func (r *TransferRepository) List(filter transfer.ListFilter) ([]*transfer.Transfer, error) {
	var dms []*transferDatamodel.Transfer

	q := r.db.Model(&transferDatamodel.Transfer{})
	if filter.AssetID != 0 {
		q = q.Where("asset_id = ?", filter.AssetID)
	}
	if filter.EmployeeID != 0 {
		q = q.Where("from_employee_id = ? OR to_employee_id = ?", filter.EmployeeID, filter.EmployeeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	err := q.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]*transfer.Transfer, len(dms))
	for i, dm := range dms {
		result[i] = transfer.FromDataModel(dm)
	}
	return result, nil
}

// UpdateStatusIf advances the workflow only while the stored status still
// matches what the caller saw. RowsAffected == 0 means a concurrent approver
// got there first. A nil completedAt clears the column, which is what the
// completion rollback path relies on.
func (r *TransferRepository) UpdateStatusIf(id int64, expectedStatus, newStatus, rejectReason string, completedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":       newStatus,
		"updated_at":   time.Now(),
		"completed_at": completedAt,
	}
	if rejectReason != "" {
		updates["reject_reason"] = rejectReason
	}

	res := r.db.Model(&transferDatamodel.Transfer{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
