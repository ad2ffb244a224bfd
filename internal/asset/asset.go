package asset

import (
	"encoding/json"
	"time"

	errors "github.com/frahmantamala/asset-management/internal"
	assetDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/asset"
	"github.com/shopspring/decimal"
)

const (
	StatusAvailable        = "available"
	StatusAssigned         = "assigned"
	StatusUnderMaintenance = "under_maintenance"
	StatusRetired          = "retired"
)

var Categories = []string{
	"laptop", "desktop", "monitor", "phone", "tablet",
	"printer", "network", "peripheral", "software_license", "other",
}

// statusTransitions is the asset lifecycle table: which statuses each status
// may move to. An assigned-to-assigned move covers transfer reassignment.
var statusTransitions = map[string][]string{
	StatusAvailable:        {StatusAssigned, StatusUnderMaintenance, StatusRetired},
	StatusAssigned:         {StatusAvailable, StatusAssigned, StatusUnderMaintenance},
	StatusUnderMaintenance: {StatusAvailable, StatusRetired},
	StatusRetired:          {},
}

func IsValidStatus(status string) bool {
	_, ok := statusTransitions[status]
	return ok
}

func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateStatusAssignee enforces the core invariant: status assigned requires
// an assignee, every other status forbids one.
func ValidateStatusAssignee(status string, assigneeID *int64) *errors.AppError {
	if status == StatusAssigned {
		if assigneeID == nil || *assigneeID == 0 {
			return errors.ErrAssigneeRequired
		}
		return nil
	}
	if assigneeID != nil {
		return errors.ErrAssigneeNotAllowed
	}
	return nil
}

type Asset struct {
	ID                int64            `json:"id"`
	AssetTag          string           `json:"asset_tag"`
	Name              string           `json:"name"`
	Category          string           `json:"category"`
	Brand             string           `json:"brand,omitempty"`
	Model             string           `json:"model,omitempty"`
	SerialNumber      string           `json:"serial_number,omitempty"`
	Status            string           `json:"status"`
	CurrentAssigneeID *int64           `json:"current_assignee_id,omitempty"`
	Specifications    json.RawMessage  `json:"specifications,omitempty"`
	PurchaseDate      *time.Time       `json:"purchase_date,omitempty"`
	PurchaseCost      *decimal.Decimal `json:"purchase_cost,omitempty"`
	WarrantyEnd       *time.Time       `json:"warranty_end,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (a *Asset) IsAvailable() bool {
	return a.Status == StatusAvailable
}

func (a *Asset) IsRetired() bool {
	return a.Status == StatusRetired
}

// CheckInvariant reports whether the assigned⇔assignee invariant holds on the
// record as stored.
func (a *Asset) CheckInvariant() bool {
	if a.Status == StatusAssigned {
		return a.CurrentAssigneeID != nil && *a.CurrentAssigneeID != 0
	}
	return a.CurrentAssigneeID == nil
}

func ToDataModel(a *Asset) *assetDatamodel.Asset {
	return &assetDatamodel.Asset{
		ID:                a.ID,
		AssetTag:          a.AssetTag,
		Name:              a.Name,
		Category:          a.Category,
		Brand:             a.Brand,
		Model:             a.Model,
		SerialNumber:      a.SerialNumber,
		Status:            a.Status,
		CurrentAssigneeID: a.CurrentAssigneeID,
		Specifications:    a.Specifications,
		PurchaseDate:      a.PurchaseDate,
		PurchaseCost:      a.PurchaseCost,
		WarrantyEnd:       a.WarrantyEnd,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func FromDataModel(a *assetDatamodel.Asset) *Asset {
	return &Asset{
		ID:                a.ID,
		AssetTag:          a.AssetTag,
		Name:              a.Name,
		Category:          a.Category,
		Brand:             a.Brand,
		Model:             a.Model,
		SerialNumber:      a.SerialNumber,
		Status:            a.Status,
		CurrentAssigneeID: a.CurrentAssigneeID,
		Specifications:    a.Specifications,
		PurchaseDate:      a.PurchaseDate,
		PurchaseCost:      a.PurchaseCost,
		WarrantyEnd:       a.WarrantyEnd,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func FromDataModelSlice(assets []*assetDatamodel.Asset) []*Asset {
	result := make([]*Asset, len(assets))
	for i, a := range assets {
		result[i] = FromDataModel(a)
	}
	return result
}
