package ticket

import (
	"time"

	ticketDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/ticket"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusOnHold     = "on_hold"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
	StatusCancelled  = "cancelled"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// statusTransitions lists the allowed moves. Cancellation is deliberately
// absent: it goes through Cancel, which also enforces who may do it.
var statusTransitions = map[string][]string{
	StatusOpen:       {StatusInProgress, StatusOnHold},
	StatusInProgress: {StatusOnHold, StatusResolved},
	StatusOnHold:     {StatusInProgress},
	StatusResolved:   {StatusClosed},
	StatusClosed:     {},
	StatusCancelled:  {},
}

func IsValidStatus(status string) bool {
	_, ok := statusTransitions[status]
	return ok
}

func IsValidPriority(priority string) bool {
	for _, p := range Priorities {
		if p == priority {
			return true
		}
	}
	return false
}

func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Ticket struct {
	ID          int64      `json:"id"`
	AssetID     *int64     `json:"asset_id,omitempty"`
	ReporterID  int64      `json:"reporter_id"`
	AssigneeID  *int64     `json:"assignee_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Resolution  string     `json:"resolution,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Ticket) IsOpen() bool {
	return t.Status == StatusOpen
}

func ToDataModel(t *Ticket) *ticketDatamodel.Ticket {
	return &ticketDatamodel.Ticket{
		ID:          t.ID,
		AssetID:     t.AssetID,
		ReporterID:  t.ReporterID,
		AssigneeID:  t.AssigneeID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Resolution:  t.Resolution,
		ResolvedAt:  t.ResolvedAt,
		CancelledAt: t.CancelledAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModel(t *ticketDatamodel.Ticket) *Ticket {
	return &Ticket{
		ID:          t.ID,
		AssetID:     t.AssetID,
		ReporterID:  t.ReporterID,
		AssigneeID:  t.AssigneeID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Resolution:  t.Resolution,
		ResolvedAt:  t.ResolvedAt,
		CancelledAt: t.CancelledAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
