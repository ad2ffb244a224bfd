package ticket

import (
	errors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/core/common/validation"
)

type CreateTicketDTO struct {
	AssetID     *int64 `json:"asset_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

func (dto CreateTicketDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("title", dto.Title).Required().MaxLength(200)
	v.Field("priority", dto.Priority).OneOf(errors.ErrCodeInvalidPriority, Priorities...)
	return v.Validate()
}

// UpdateTicketDTO changes workflow fields. A nil field is left untouched.
type UpdateTicketDTO struct {
	Status     *string `json:"status,omitempty"`
	Priority   *string `json:"priority,omitempty"`
	AssigneeID *int64  `json:"assignee_id,omitempty"`
	Resolution *string `json:"resolution,omitempty"`
}

func (dto UpdateTicketDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Status != nil {
		v.Field("status", *dto.Status).Required().Custom(func(value interface{}) *errors.AppError {
			if s, ok := value.(string); ok && s != "" && !IsValidStatus(s) {
				return errors.NewValidationFieldError("status", "status is not a recognized ticket status", errors.ErrCodeInvalidStatus)
			}
			return nil
		})
	}
	if dto.Priority != nil {
		v.Field("priority", *dto.Priority).Required().OneOf(errors.ErrCodeInvalidPriority, Priorities...)
	}
	return v.Validate()
}

type ListFilter struct {
	AssetID    int64
	ReporterID int64
	AssigneeID int64
	Status     string
	Priority   string
	Limit      int
	Offset     int
}
