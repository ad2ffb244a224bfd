package postgres

import (
	"time"

	internal "github.com/frahmantamala/asset-management/internal"
	maintenanceDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/maintenance"
	"github.com/frahmantamala/asset-management/internal/maintenance"
	"gorm.io/gorm"
)

// MaintenanceRepository implements the maintenance.Repository interface using GORM
type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) maintenance.Repository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) CreateSchedule(s *maintenance.Schedule) error {
	dm := maintenance.ScheduleToDataModel(s)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	s.ID = dm.ID
	s.CreatedAt = dm.CreatedAt
	s.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *MaintenanceRepository) GetSchedule(id int64) (*maintenance.Schedule, error) {
	var dm maintenanceDatamodel.Schedule
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrScheduleNotFound
		}
		return nil, internal.NewStorageError("failed to load maintenance schedule", err)
	}
	return maintenance.ScheduleFromDataModel(&dm), nil
}

func (r *MaintenanceRepository) ListSchedules(filter maintenance.ListFilter) ([]*maintenance.Schedule, error) {
	var dms []*maintenanceDatamodel.Schedule

	q := r.db.Model(&maintenanceDatamodel.Schedule{})
	if filter.AssetID != 0 {
		q = q.Where("asset_id = ?", filter.AssetID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	err := q.Order("next_maintenance_date ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]*maintenance.Schedule, len(dms))
	for i, dm := range dms {
		result[i] = maintenance.ScheduleFromDataModel(dm)
	}
	return result, nil
}

func (r *MaintenanceRepository) UpdateSchedule(s *maintenance.Schedule) error {
	s.UpdatedAt = time.Now()
	return r.db.Model(&maintenanceDatamodel.Schedule{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"next_maintenance_date": s.NextMaintenanceDate,
			"status":                s.Status,
			"notes":                 s.Notes,
			"updated_at":            s.UpdatedAt,
		}).Error
}

// UpdateScheduleStatusIf flips the status only while it still matches the
// expected value. Returns false when another writer got there first.
func (r *MaintenanceRepository) UpdateScheduleStatusIf(id int64, expectedStatus, newStatus string) (bool, error) {
	res := r.db.Model(&maintenanceDatamodel.Schedule{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(map[string]interface{}{
			"status":     newStatus,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *MaintenanceRepository) CreateRecord(rec *maintenance.Record) error {
	dm := maintenance.RecordToDataModel(rec)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	rec.ID = dm.ID
	rec.CreatedAt = dm.CreatedAt
	return nil
}

func (r *MaintenanceRepository) ListRecords(scheduleID int64) ([]*maintenance.Record, error) {
	var dms []*maintenanceDatamodel.Record
	err := r.db.Where("schedule_id = ?", scheduleID).
		Order("performed_date DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]*maintenance.Record, len(dms))
	for i, dm := range dms {
		result[i] = maintenance.RecordFromDataModel(dm)
	}
	return result, nil
}

func (r *MaintenanceRepository) ListDue(before time.Time) ([]*maintenance.Schedule, error) {
	var dms []*maintenanceDatamodel.Schedule
	err := r.db.Where("status = ? AND next_maintenance_date < ?", maintenance.StatusScheduled, before).
		Order("next_maintenance_date ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]*maintenance.Schedule, len(dms))
	for i, dm := range dms {
		result[i] = maintenance.ScheduleFromDataModel(dm)
	}
	return result, nil
}
