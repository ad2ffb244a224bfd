package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAssetStatusChanged = "asset.status_changed"
	EventTypeAssetAllocated     = "asset.allocated"
	EventTypeAssetReturned      = "asset.returned"

	EventTypeTransferInitiated = "transfer.initiated"
	EventTypeTransferApproved  = "transfer.approved"
	EventTypeTransferCompleted = "transfer.completed"
	EventTypeTransferRejected  = "transfer.rejected"

	EventTypeMaintenanceDue       = "maintenance.due"
	EventTypeMaintenanceCompleted = "maintenance.completed"

	EventTypeTicketCreated   = "ticket.created"
	EventTypeTicketCancelled = "ticket.cancelled"
)

type AssetStatusChangedEvent struct {
	BaseEvent
	AssetID    int64  `json:"asset_id"`
	AssetTag   string `json:"asset_tag"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	AssigneeID *int64 `json:"assignee_id,omitempty"`
}

func NewAssetStatusChangedEvent(assetID int64, assetTag, fromStatus, toStatus string, assigneeID *int64) *AssetStatusChangedEvent {
	return &AssetStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAssetStatusChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"asset_id":    assetID,
				"asset_tag":   assetTag,
				"from_status": fromStatus,
				"to_status":   toStatus,
			},
		},
		AssetID:    assetID,
		AssetTag:   assetTag,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		AssigneeID: assigneeID,
	}
}

type AssetAllocatedEvent struct {
	BaseEvent
	AssetID      int64  `json:"asset_id"`
	AllocationID int64  `json:"allocation_id"`
	EmployeeID   int64  `json:"employee_id"`
	Department   string `json:"department"`
	Location     string `json:"location"`
}

func NewAssetAllocatedEvent(assetID, allocationID, employeeID int64, department, location string) *AssetAllocatedEvent {
	return &AssetAllocatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAssetAllocated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"asset_id":      assetID,
				"allocation_id": allocationID,
				"employee_id":   employeeID,
				"department":    department,
				"location":      location,
			},
		},
		AssetID:      assetID,
		AllocationID: allocationID,
		EmployeeID:   employeeID,
		Department:   department,
		Location:     location,
	}
}

type AssetReturnedEvent struct {
	BaseEvent
	AssetID      int64  `json:"asset_id"`
	AllocationID int64  `json:"allocation_id"`
	EmployeeID   int64  `json:"employee_id"`
	Condition    string `json:"condition"`
}

func NewAssetReturnedEvent(assetID, allocationID, employeeID int64, condition string) *AssetReturnedEvent {
	return &AssetReturnedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAssetReturned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"asset_id":      assetID,
				"allocation_id": allocationID,
				"employee_id":   employeeID,
				"condition":     condition,
			},
		},
		AssetID:      assetID,
		AllocationID: allocationID,
		EmployeeID:   employeeID,
		Condition:    condition,
	}
}

// TransferEvent covers every transfer transition; Status carries the state the
// transfer landed in so the notifier can pick a template.
type TransferEvent struct {
	BaseEvent
	TransferID     int64  `json:"transfer_id"`
	AssetID        int64  `json:"asset_id"`
	FromEmployeeID *int64 `json:"from_employee_id,omitempty"`
	ToEmployeeID   int64  `json:"to_employee_id"`
	ActorID        int64  `json:"actor_id"`
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
}

func NewTransferEvent(eventType string, transferID, assetID int64, fromEmployeeID *int64, toEmployeeID, actorID int64, status, reason string) *TransferEvent {
	return &TransferEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transfer_id":    transferID,
				"asset_id":       assetID,
				"to_employee_id": toEmployeeID,
				"actor_id":       actorID,
				"status":         status,
			},
		},
		TransferID:     transferID,
		AssetID:        assetID,
		FromEmployeeID: fromEmployeeID,
		ToEmployeeID:   toEmployeeID,
		ActorID:        actorID,
		Status:         status,
		Reason:         reason,
	}
}

type MaintenanceEvent struct {
	BaseEvent
	ScheduleID      int64     `json:"schedule_id"`
	AssetID         int64     `json:"asset_id"`
	MaintenanceType string    `json:"maintenance_type"`
	NextDate        time.Time `json:"next_date"`
}

func NewMaintenanceEvent(eventType string, scheduleID, assetID int64, maintenanceType string, nextDate time.Time) *MaintenanceEvent {
	return &MaintenanceEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"schedule_id":      scheduleID,
				"asset_id":         assetID,
				"maintenance_type": maintenanceType,
			},
		},
		ScheduleID:      scheduleID,
		AssetID:         assetID,
		MaintenanceType: maintenanceType,
		NextDate:        nextDate,
	}
}

type TicketEvent struct {
	BaseEvent
	TicketID   int64  `json:"ticket_id"`
	AssetID    *int64 `json:"asset_id,omitempty"`
	ReporterID int64  `json:"reporter_id"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	Title      string `json:"title"`
}

func NewTicketEvent(eventType string, ticketID int64, assetID *int64, reporterID int64, status, priority, title string) *TicketEvent {
	return &TicketEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"ticket_id":   ticketID,
				"reporter_id": reporterID,
				"status":      status,
				"priority":    priority,
			},
		},
		TicketID:   ticketID,
		AssetID:    assetID,
		ReporterID: reporterID,
		Status:     status,
		Priority:   priority,
		Title:      title,
	}
}
