package maintenance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Schedule struct {
	ID                  int64     `gorm:"primaryKey"`
	AssetID             int64     `gorm:"column:asset_id;not null;index"`
	MaintenanceType     string    `gorm:"column:maintenance_type;not null"`
	Frequency           string    `gorm:"column:frequency;not null"`
	NextMaintenanceDate time.Time `gorm:"column:next_maintenance_date;type:date;not null"`
	Status              string    `gorm:"column:status;default:scheduled;not null"`
	Notes               string    `gorm:"column:notes"`
	CreatedAt           time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt           time.Time `gorm:"column:updated_at;default:now()"`
}

func (Schedule) TableName() string {
	return "maintenance_schedules"
}

type Record struct {
	ID            int64            `gorm:"primaryKey"`
	ScheduleID    int64            `gorm:"column:schedule_id;not null;index"`
	AssetID       int64            `gorm:"column:asset_id;not null;index"`
	PerformedDate time.Time        `gorm:"column:performed_date;type:date;not null"`
	Cost          *decimal.Decimal `gorm:"column:cost;type:numeric(12,2)"`
	Vendor        string           `gorm:"column:vendor"`
	Notes         string           `gorm:"column:notes"`
	CreatedAt     time.Time        `gorm:"column:created_at;default:now()"`
}

func (Record) TableName() string {
	return "maintenance_records"
}
