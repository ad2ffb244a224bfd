package asset

import (
	"encoding/json"
	"time"

	errors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// CreateAssetDTO is the request payload for registering a new asset. Assets
// always start available with no assignee.
type CreateAssetDTO struct {
	AssetTag       string           `json:"asset_tag"`
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	Brand          string           `json:"brand,omitempty"`
	Model          string           `json:"model,omitempty"`
	SerialNumber   string           `json:"serial_number,omitempty"`
	Specifications json.RawMessage  `json:"specifications,omitempty"`
	PurchaseDate   *time.Time       `json:"purchase_date,omitempty"`
	PurchaseCost   *decimal.Decimal `json:"purchase_cost,omitempty"`
	WarrantyEnd    *time.Time       `json:"warranty_end,omitempty"`
}

func (dto CreateAssetDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("asset_tag", dto.AssetTag).Required().MaxLength(64)
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("category", dto.Category).Required().OneOf(errors.ErrCodeInvalidCategory, Categories...)
	if dto.PurchaseDate != nil {
		v.Field("purchase_date", *dto.PurchaseDate).NotFuture()
	}
	return v.Validate()
}

// UpdateAssetDTO carries a partial update of descriptive and financial fields.
// Status and assignee are never updated through this path.
type UpdateAssetDTO struct {
	Name           *string          `json:"name,omitempty"`
	Category       *string          `json:"category,omitempty"`
	Brand          *string          `json:"brand,omitempty"`
	Model          *string          `json:"model,omitempty"`
	SerialNumber   *string          `json:"serial_number,omitempty"`
	Specifications json.RawMessage  `json:"specifications,omitempty"`
	PurchaseDate   *time.Time       `json:"purchase_date,omitempty"`
	PurchaseCost   *decimal.Decimal `json:"purchase_cost,omitempty"`
	WarrantyEnd    *time.Time       `json:"warranty_end,omitempty"`
}

func (dto UpdateAssetDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(255)
	}
	if dto.Category != nil {
		v.Field("category", *dto.Category).Required().OneOf(errors.ErrCodeInvalidCategory, Categories...)
	}
	if dto.PurchaseDate != nil {
		v.Field("purchase_date", *dto.PurchaseDate).NotFuture()
	}
	return v.Validate()
}

type SetStatusDTO struct {
	Status     string `json:"status"`
	AssigneeID *int64 `json:"assignee_id,omitempty"`
}

func (dto SetStatusDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("status", dto.Status).Required().
		OneOf(errors.ErrCodeInvalidStatus, StatusAvailable, StatusAssigned, StatusUnderMaintenance, StatusRetired)
	if err := v.Validate(); err != nil {
		return err
	}
	return ValidateStatusAssignee(dto.Status, dto.AssigneeID)
}

type ListFilter struct {
	Status   string
	Category string
	Search   string
	Limit    int
	Offset   int
}
