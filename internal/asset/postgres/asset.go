package postgres

import (
	"time"

	internal "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/asset"
	assetDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/asset"
	"gorm.io/gorm"
)

// AssetRepository implements the asset.Repository interface using GORM
type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) asset.Repository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Create(a *asset.Asset) error {
	dm := asset.ToDataModel(a)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	a.ID = dm.ID
	a.CreatedAt = dm.CreatedAt
	a.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *AssetRepository) GetByID(id int64) (*asset.Asset, error) {
	var dm assetDatamodel.Asset
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrAssetNotFound
		}
		return nil, internal.NewStorageError("failed to load asset", err)
	}
	return asset.FromDataModel(&dm), nil
}

func (r *AssetRepository) GetByTag(tag string) (*asset.Asset, error) {
	var dm assetDatamodel.Asset
	err := r.db.Where("asset_tag = ?", tag).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrAssetNotFound
		}
		return nil, internal.NewStorageError("failed to load asset", err)
	}
	return asset.FromDataModel(&dm), nil
}

func (r *AssetRepository) List(filter asset.ListFilter) ([]*asset.Asset, error) {
	var dms []*assetDatamodel.Asset

	q := r.db.Model(&assetDatamodel.Asset{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("asset_tag LIKE ? OR name LIKE ? OR serial_number LIKE ?", pattern, pattern, pattern)
	}

	err := q.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]*asset.Asset, len(dms))
	for i, dm := range dms {
		result[i] = asset.FromDataModel(dm)
	}
	return result, nil
}

func (r *AssetRepository) Update(a *asset.Asset) error {
	a.UpdatedAt = time.Now()
	return r.db.Model(&assetDatamodel.Asset{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"name":           a.Name,
			"category":       a.Category,
			"brand":          a.Brand,
			"model":          a.Model,
			"serial_number":  a.SerialNumber,
			"specifications": a.Specifications,
			"purchase_date":  a.PurchaseDate,
			"purchase_cost":  a.PurchaseCost,
			"warranty_end":   a.WarrantyEnd,
			"updated_at":     a.UpdatedAt,
		}).Error
}

// UpdateStatusIf applies the status change only while the stored status still
// matches expectedStatus. Returns false when the conditional update matched no
// row, which the service surfaces as a conflict.
func (r *AssetRepository) UpdateStatusIf(id int64, expectedStatus, newStatus string, assigneeID *int64) (bool, error) {
	res := r.db.Model(&assetDatamodel.Asset{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(map[string]interface{}{
			"status":              newStatus,
			"current_assignee_id": assigneeID,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
