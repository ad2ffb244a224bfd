package transfer

import (
	"time"

	errors "github.com/frahmantamala/asset-management/internal"
	transferDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/transfer"
)

const (
	StatusPending        = "pending"
	StatusApprovedByFrom = "approved_by_from"
	StatusApprovedByTo   = "approved_by_to"
	StatusCompleted      = "completed"
	StatusRejected       = "rejected"
)

// ApproverSide identifies which party of the transfer is acting.
type ApproverSide string

const (
	SideFrom ApproverSide = "from"
	SideTo   ApproverSide = "to"
	SideNone ApproverSide = ""
)

type Transfer struct {
	ID             int64      `json:"id"`
	AssetID        int64      `json:"asset_id"`
	FromEmployeeID *int64     `json:"from_employee_id,omitempty"`
	ToEmployeeID   int64      `json:"to_employee_id"`
	InitiatorID    int64      `json:"initiator_id"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
	RejectReason   string     `json:"reject_reason,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (t *Transfer) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusRejected
}

// NeedsFromApproval reports whether the transfer has a current holder whose
// sign-off is required. Transfers of unheld assets only need the recipient.
func (t *Transfer) NeedsFromApproval() bool {
	return t.FromEmployeeID != nil
}

// Side returns which party the employee is on, or SideNone for outsiders.
// When the initiating holder and recipient are distinct people, each employee
// maps to exactly one side.
func (t *Transfer) Side(employeeID int64) ApproverSide {
	if t.FromEmployeeID != nil && *t.FromEmployeeID == employeeID {
		return SideFrom
	}
	if t.ToEmployeeID == employeeID {
		return SideTo
	}
	return SideNone
}

// approvalTable maps (current status, acting side) to the next status for
// two-party transfers. Single-party transfers (no holder) are handled apart.
var approvalTable = map[string]map[ApproverSide]string{
	StatusPending: {
		SideFrom: StatusApprovedByFrom,
		SideTo:   StatusApprovedByTo,
	},
	StatusApprovedByFrom: {
		SideTo: StatusCompleted,
	},
	StatusApprovedByTo: {
		SideFrom: StatusCompleted,
	},
}

// NextOnApproval resolves the state the transfer moves to when the given side
// approves. It fails when the transfer is terminal or the side has already
// approved.
func (t *Transfer) NextOnApproval(side ApproverSide) (string, *errors.AppError) {
	if t.IsTerminal() {
		return "", errors.ErrTransferTerminal
	}

	if !t.NeedsFromApproval() {
		// No holder: only the recipient's approval is required.
		if t.Status == StatusPending && side == SideTo {
			return StatusCompleted, nil
		}
		return "", errors.ErrAlreadyApproved
	}

	if next, ok := approvalTable[t.Status][side]; ok {
		return next, nil
	}
	return "", errors.ErrAlreadyApproved
}

func ToDataModel(t *Transfer) *transferDatamodel.Transfer {
	return &transferDatamodel.Transfer{
		ID:             t.ID,
		AssetID:        t.AssetID,
		FromEmployeeID: t.FromEmployeeID,
		ToEmployeeID:   t.ToEmployeeID,
		InitiatorID:    t.InitiatorID,
		Status:         t.Status,
		Notes:          t.Notes,
		RejectReason:   t.RejectReason,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func FromDataModel(t *transferDatamodel.Transfer) *Transfer {
	return &Transfer{
		ID:             t.ID,
		AssetID:        t.AssetID,
		FromEmployeeID: t.FromEmployeeID,
		ToEmployeeID:   t.ToEmployeeID,
		InitiatorID:    t.InitiatorID,
		Status:         t.Status,
		Notes:          t.Notes,
		RejectReason:   t.RejectReason,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func FromDataModelSlice(transfers []*transferDatamodel.Transfer) []*Transfer {
	result := make([]*Transfer, len(transfers))
	for i, t := range transfers {
		result[i] = FromDataModel(t)
	}
	return result
}
