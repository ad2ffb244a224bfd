package allocation

import (
	"time"

	allocationDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/allocation"
)

const (
	StatusActive   = "active"
	StatusReturned = "returned"
)

const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
)

var Conditions = []string{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor}

type Allocation struct {
	ID            int64      `json:"id"`
	AssetID       int64      `json:"asset_id"`
	EmployeeID    int64      `json:"employee_id"`
	Department    string     `json:"department,omitempty"`
	Location      string     `json:"location,omitempty"`
	Status        string     `json:"status"`
	Condition     string     `json:"condition"`
	Notes         string     `json:"notes,omitempty"`
	AllocatedDate time.Time  `json:"allocated_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (a *Allocation) IsActive() bool {
	return a.Status == StatusActive
}

func ToDataModel(a *Allocation) *allocationDatamodel.Allocation {
	return &allocationDatamodel.Allocation{
		ID:            a.ID,
		AssetID:       a.AssetID,
		EmployeeID:    a.EmployeeID,
		Department:    a.Department,
		Location:      a.Location,
		Status:        a.Status,
		Condition:     a.Condition,
		Notes:         a.Notes,
		AllocatedDate: a.AllocatedDate,
		ReturnDate:    a.ReturnDate,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func FromDataModel(a *allocationDatamodel.Allocation) *Allocation {
	return &Allocation{
		ID:            a.ID,
		AssetID:       a.AssetID,
		EmployeeID:    a.EmployeeID,
		Department:    a.Department,
		Location:      a.Location,
		Status:        a.Status,
		Condition:     a.Condition,
		Notes:         a.Notes,
		AllocatedDate: a.AllocatedDate,
		ReturnDate:    a.ReturnDate,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func FromDataModelSlice(allocations []*allocationDatamodel.Allocation) []*Allocation {
	result := make([]*Allocation, len(allocations))
	for i, a := range allocations {
		result[i] = FromDataModel(a)
	}
	return result
}
