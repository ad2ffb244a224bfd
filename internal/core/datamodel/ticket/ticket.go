package ticket

import "time"

type Ticket struct {
	ID          int64      `gorm:"primaryKey"`
	AssetID     *int64     `gorm:"column:asset_id;index"`
	ReporterID  int64      `gorm:"column:reporter_id;not null;index"`
	AssigneeID  *int64     `gorm:"column:assignee_id"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description"`
	Status      string     `gorm:"column:status;default:open;not null"`
	Priority    string     `gorm:"column:priority;default:medium;not null"`
	Resolution  string     `gorm:"column:resolution"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Ticket) TableName() string {
	return "tickets"
}
