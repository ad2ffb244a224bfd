package transfer

import "time"

type Transfer struct {
	ID             int64      `gorm:"primaryKey"`
	AssetID        int64      `gorm:"column:asset_id;not null;index"`
	FromEmployeeID *int64     `gorm:"column:from_employee_id"`
	ToEmployeeID   int64      `gorm:"column:to_employee_id;not null"`
	InitiatorID    int64      `gorm:"column:initiator_id;not null"`
	Status         string     `gorm:"column:status;default:pending;not null"`
	Notes          string     `gorm:"column:notes"`
	RejectReason   string     `gorm:"column:reject_reason"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Transfer) TableName() string {
	return "transfers"
}
