package allocation

import "time"

type Allocation struct {
	ID            int64      `gorm:"primaryKey"`
	AssetID       int64      `gorm:"column:asset_id;not null;index"`
	EmployeeID    int64      `gorm:"column:employee_id;not null;index"`
	Department    string     `gorm:"column:department"`
	Location      string     `gorm:"column:location"`
	Status        string     `gorm:"column:status;default:active;not null"`
	Condition     string     `gorm:"column:condition;not null"`
	Notes         string     `gorm:"column:notes"`
	AllocatedDate time.Time  `gorm:"column:allocated_date;type:date;not null"`
	ReturnDate    *time.Time `gorm:"column:return_date;type:date"`
	CreatedAt     time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Allocation) TableName() string {
	return "allocations"
}
