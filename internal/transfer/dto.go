package transfer

import (
	errors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/core/common/validation"
)

type InitiateDTO struct {
	AssetID      int64  `json:"asset_id"`
	ToEmployeeID int64  `json:"to_employee_id"`
	Notes        string `json:"notes,omitempty"`
}

func (dto InitiateDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("asset_id", dto.AssetID).Required()
	v.Field("to_employee_id", dto.ToEmployeeID).Required()
	v.Field("notes", dto.Notes).MaxLength(500)
	return v.Validate()
}

type RejectDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("reason", dto.Reason).Required().MaxLength(500)
	return v.Validate()
}

type ListFilter struct {
	AssetID    int64
	EmployeeID int64
	Status     string
	Limit      int
	Offset     int
}
