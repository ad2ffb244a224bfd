package maintenance

import (
	"time"

	maintenanceDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/maintenance"
	"github.com/shopspring/decimal"
)

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusOverdue   = "overdue"
)

const (
	FrequencyWeekly     = "weekly"
	FrequencyMonthly    = "monthly"
	FrequencyQuarterly  = "quarterly"
	FrequencySemiannual = "semiannual"
	FrequencyAnnual     = "annual"
)

var Frequencies = []string{
	FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencySemiannual, FrequencyAnnual,
}

// NextDate advances one frequency unit from the given date.
func NextDate(from time.Time, frequency string) time.Time {
	switch frequency {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	case FrequencySemiannual:
		return from.AddDate(0, 6, 0)
	case FrequencyAnnual:
		return from.AddDate(1, 0, 0)
	default:
		return from
	}
}

type Schedule struct {
	ID                  int64     `json:"id"`
	AssetID             int64     `json:"asset_id"`
	MaintenanceType     string    `json:"maintenance_type"`
	Frequency           string    `json:"frequency"`
	NextMaintenanceDate time.Time `json:"next_maintenance_date"`
	Status              string    `json:"status"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (s *Schedule) IsDue(at time.Time) bool {
	return s.NextMaintenanceDate.Before(at)
}

type Record struct {
	ID            int64            `json:"id"`
	ScheduleID    int64            `json:"schedule_id"`
	AssetID       int64            `json:"asset_id"`
	PerformedDate time.Time        `json:"performed_date"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	Vendor        string           `json:"vendor,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

func ScheduleToDataModel(s *Schedule) *maintenanceDatamodel.Schedule {
	return &maintenanceDatamodel.Schedule{
		ID:                  s.ID,
		AssetID:             s.AssetID,
		MaintenanceType:     s.MaintenanceType,
		Frequency:           s.Frequency,
		NextMaintenanceDate: s.NextMaintenanceDate,
		Status:              s.Status,
		Notes:               s.Notes,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func ScheduleFromDataModel(s *maintenanceDatamodel.Schedule) *Schedule {
	return &Schedule{
		ID:                  s.ID,
		AssetID:             s.AssetID,
		MaintenanceType:     s.MaintenanceType,
		Frequency:           s.Frequency,
		NextMaintenanceDate: s.NextMaintenanceDate,
		Status:              s.Status,
		Notes:               s.Notes,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func RecordToDataModel(r *Record) *maintenanceDatamodel.Record {
	return &maintenanceDatamodel.Record{
		ID:            r.ID,
		ScheduleID:    r.ScheduleID,
		AssetID:       r.AssetID,
		PerformedDate: r.PerformedDate,
		Cost:          r.Cost,
		Vendor:        r.Vendor,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
}

func RecordFromDataModel(r *maintenanceDatamodel.Record) *Record {
	return &Record{
		ID:            r.ID,
		ScheduleID:    r.ScheduleID,
		AssetID:       r.AssetID,
		PerformedDate: r.PerformedDate,
		Cost:          r.Cost,
		Vendor:        r.Vendor,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
}
