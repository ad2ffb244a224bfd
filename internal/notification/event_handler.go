package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/employee"
)

// EmployeeDirectory resolves employee IDs to addresses for outbound mail.
type EmployeeDirectory interface {
	Get(ctx context.Context, id int64) (*employee.Employee, error)
}

// EventHandler turns domain events into emails. Every handler returns nil on
// delivery problems: notifications are best effort and must never fail the
// operation that raised the event.
type EventHandler struct {
	client    *Client
	directory EmployeeDirectory
	logger    *slog.Logger
}

func NewEventHandler(client *Client, directory EmployeeDirectory, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		client:    client,
		directory: directory,
		logger:    logger,
	}
}

func (h *EventHandler) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeAssetStatusChanged, h.HandleAssetStatusChanged)
	bus.Subscribe(events.EventTypeAssetAllocated, h.HandleAssetAllocated)
	bus.Subscribe(events.EventTypeAssetReturned, h.HandleAssetReturned)
	bus.Subscribe(events.EventTypeTransferInitiated, h.HandleTransferEvent)
	bus.Subscribe(events.EventTypeTransferApproved, h.HandleTransferEvent)
	bus.Subscribe(events.EventTypeTransferCompleted, h.HandleTransferEvent)
	bus.Subscribe(events.EventTypeTransferRejected, h.HandleTransferEvent)
	bus.Subscribe(events.EventTypeMaintenanceDue, h.HandleMaintenanceEvent)
	bus.Subscribe(events.EventTypeMaintenanceCompleted, h.HandleMaintenanceEvent)
	bus.Subscribe(events.EventTypeTicketCreated, h.HandleTicketEvent)
	bus.Subscribe(events.EventTypeTicketCancelled, h.HandleTicketEvent)
}

// HandleAssetStatusChanged mails the assignee when the asset has one. Moves
// with no assignee, such as retirement or entering maintenance, go to the
// facilities inbox via the provider's default route.
func (h *EventHandler) HandleAssetStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AssetStatusChangedEvent)
	if !ok {
		h.logger.Error("unexpected event payload", "event_type", event.EventType())
		return nil
	}

	subject := fmt.Sprintf("Asset %s is now %s", e.AssetTag, e.ToStatus)
	body := fmt.Sprintf("Asset %s moved from %s to %s.", e.AssetTag, e.FromStatus, e.ToStatus)

	if e.AssigneeID != nil {
		h.notify(ctx, *e.AssigneeID, event, subject, body)
		return nil
	}

	h.client.Enqueue(EmailJob{
		Subject:   subject,
		Body:      body,
		EventType: event.EventType(),
		EventID:   event.EventID(),
	})
	return nil
}

func (h *EventHandler) HandleAssetAllocated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AssetAllocatedEvent)
	if !ok {
		h.logger.Error("unexpected event payload", "event_type", event.EventType())
		return nil
	}

	h.notify(ctx, e.EmployeeID, event,
		"An asset has been assigned to you",
		fmt.Sprintf("Asset %d is now allocated to you. Allocation reference: %d.", e.AssetID, e.AllocationID))
	return nil
}

func (h *EventHandler) HandleAssetReturned(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AssetReturnedEvent)
	if !ok {
		h.logger.Error("unexpected event payload", "event_type", event.EventType())
		return nil
	}

	h.notify(ctx, e.EmployeeID, event,
		"Asset return recorded",
		fmt.Sprintf("Your return of asset %d was recorded in condition %q.", e.AssetID, e.Condition))
	return nil
}

// HandleTransferEvent mails both parties. The outgoing holder is absent on
// transfers of unassigned assets.
func (h *EventHandler) HandleTransferEvent(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.TransferEvent)
	if !ok {
		h.logger.Error("unexpected event payload", "event_type", event.EventType())
		return nil
	}

	subject := fmt.Sprintf("Asset transfer %d: %s", e.TransferID, e.Status)
	body := fmt.Sprintf("Transfer of asset %d is now %s.", e.AssetID, e.Status)
	if e.Reason != "" {
		body += " Reason: " + e.Reason
	}

	h.notify(ctx, e.ToEmployeeID, event, subject, body)
	if e.FromEmployeeID != nil {
		h.notify(ctx, *e.FromEmployeeID, event, subject, body)
	}
	return nil
}

// HandleMaintenanceEvent has no employee to address; maintenance mail goes to
// the facilities inbox configured as the provider's default route, so the
// message is sent with an empty recipient and the provider fans it out.
func (h *EventHandler) HandleMaintenanceEvent(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.MaintenanceEvent)
	if !ok {
		h.logger.Error("unexpected event payload", "event_type", event.EventType())
		return nil
	}

	subject := fmt.Sprintf("Maintenance %s: asset %d", e.EventType(), e.AssetID)
	body := fmt.Sprintf("Schedule %d (%s) for asset %d. Next date: %s.",
		e.ScheduleID, e.MaintenanceType, e.AssetID, e.NextDate.Format("2006-01-02"))

	h.client.Enqueue(EmailJob{
		Subject:   subject,
		Body:      body,
		EventType: event.EventType(),
		EventID:   event.EventID(),
	})
	return nil
}

func (h *EventHandler) HandleTicketEvent(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.TicketEvent)
	if !ok {
		h.logger.Error("unexpected event payload", "event_type", event.EventType())
		return nil
	}

	h.notify(ctx, e.ReporterID, event,
		fmt.Sprintf("Ticket #%d %s: %s", e.TicketID, e.Status, e.Title),
		fmt.Sprintf("Your ticket %q is now %s (priority %s).", e.Title, e.Status, e.Priority))
	return nil
}

func (h *EventHandler) notify(ctx context.Context, employeeID int64, event events.Event, subject, body string) {
	emp, err := h.directory.Get(ctx, employeeID)
	if err != nil {
		h.logger.Warn("cannot resolve notification recipient",
			"employee_id", employeeID,
			"event_type", event.EventType(),
			"error", err)
		return
	}

	h.client.Enqueue(EmailJob{
		To:        emp.Email,
		Subject:   subject,
		Body:      body,
		EventType: event.EventType(),
		EventID:   event.EventID(),
	})
}
