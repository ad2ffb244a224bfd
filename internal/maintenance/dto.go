package maintenance

import (
	"time"

	errors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

type ScheduleDTO struct {
	AssetID             int64     `json:"asset_id"`
	MaintenanceType     string    `json:"maintenance_type"`
	Frequency           string    `json:"frequency"`
	NextMaintenanceDate time.Time `json:"next_maintenance_date"`
	Notes               string    `json:"notes,omitempty"`
}

func (dto ScheduleDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("asset_id", dto.AssetID).Required()
	v.Field("maintenance_type", dto.MaintenanceType).Required().MaxLength(100)
	v.Field("frequency", dto.Frequency).Required().OneOf(errors.ErrCodeInvalidFrequency, Frequencies...)
	v.Field("next_maintenance_date", dto.NextMaintenanceDate).Required()
	return v.Validate()
}

type CompleteDTO struct {
	PerformedDate time.Time        `json:"performed_date"`
	Cost          *decimal.Decimal `json:"cost,omitempty"`
	Vendor        string           `json:"vendor,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

func (dto CompleteDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("performed_date", dto.PerformedDate).Required().NotFuture()
	return v.Validate()
}

type ListFilter struct {
	AssetID int64
	Status  string
	Limit   int
	Offset  int
}
