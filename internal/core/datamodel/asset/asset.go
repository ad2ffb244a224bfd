package asset

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Asset struct {
	ID                int64            `gorm:"primaryKey"`
	AssetTag          string           `gorm:"column:asset_tag;uniqueIndex;not null"`
	Name              string           `gorm:"column:name;not null"`
	Category          string           `gorm:"column:category;not null"`
	Brand             string           `gorm:"column:brand"`
	Model             string           `gorm:"column:model"`
	SerialNumber      string           `gorm:"column:serial_number;uniqueIndex"`
	Status            string           `gorm:"column:status;default:available;not null"`
	CurrentAssigneeID *int64           `gorm:"column:current_assignee_id"`
	Specifications    json.RawMessage  `gorm:"column:specifications;type:jsonb"`
	PurchaseDate      *time.Time       `gorm:"column:purchase_date;type:date"`
	PurchaseCost      *decimal.Decimal `gorm:"column:purchase_cost;type:numeric(14,2)"`
	WarrantyEnd       *time.Time       `gorm:"column:warranty_end;type:date"`
	CreatedAt         time.Time        `gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;default:now()"`
}

func (Asset) TableName() string {
	return "assets"
}
