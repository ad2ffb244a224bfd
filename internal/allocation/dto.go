package allocation

import (
	"time"

	errors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/core/common/validation"
)

type AllocateDTO struct {
	AssetID       int64     `json:"asset_id"`
	EmployeeID    int64     `json:"employee_id"`
	Department    string    `json:"department,omitempty"`
	Location      string    `json:"location,omitempty"`
	Condition     string    `json:"condition"`
	Notes         string    `json:"notes,omitempty"`
	AllocatedDate time.Time `json:"allocated_date"`
}

func (dto AllocateDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("asset_id", dto.AssetID).Required()
	v.Field("employee_id", dto.EmployeeID).Required()
	v.Field("condition", dto.Condition).Required().OneOf(errors.ErrCodeInvalidCondition, Conditions...)
	v.Field("allocated_date", dto.AllocatedDate).Required().NotFuture()
	return v.Validate()
}

type ReturnDTO struct {
	Condition string `json:"condition"`
	Notes     string `json:"notes,omitempty"`
}

func (dto ReturnDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("condition", dto.Condition).Required().OneOf(errors.ErrCodeInvalidCondition, Conditions...)
	return v.Validate()
}

// UpdateDTO edits an active allocation in place. Asset status is untouched.
type UpdateDTO struct {
	Department *string `json:"department,omitempty"`
	Location   *string `json:"location,omitempty"`
	Condition  *string `json:"condition,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (dto UpdateDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Condition != nil {
		v.Field("condition", *dto.Condition).Required().OneOf(errors.ErrCodeInvalidCondition, Conditions...)
	}
	return v.Validate()
}

type ListFilter struct {
	AssetID    int64
	EmployeeID int64
	Status     string
	Limit      int
	Offset     int
}
