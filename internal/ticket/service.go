package ticket

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/core/events"
)

// Repository defines the data access methods for support tickets
type Repository interface {
	Create(t *Ticket) error
	GetByID(id int64) (*Ticket, error)
	List(filter ListFilter) ([]*Ticket, error)
	Update(t *Ticket) error
	UpdateStatusIf(id int64, expectedStatus, newStatus string, cancelledAt *time.Time) (bool, error)
}

// AssetRegistry is the slice of the asset service the ticket desk needs.
type AssetRegistry interface {
	Get(ctx context.Context, id int64) (*asset.Asset, error)
}

// Service runs the support ticket lifecycle.
type Service struct {
	repo     Repository
	registry AssetRegistry
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, registry AssetRegistry, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, reporterID int64, dto CreateTicketDTO) (*Ticket, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("ticket validation failed", "error", err, "reporter_id", reporterID)
		return nil, err
	}

	if dto.AssetID != nil {
		if _, err := s.registry.Get(ctx, *dto.AssetID); err != nil {
			return nil, err
		}
	}

	priority := dto.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	t := &Ticket{
		AssetID:     dto.AssetID,
		ReporterID:  reporterID,
		Title:       dto.Title,
		Description: dto.Description,
		Status:      StatusOpen,
		Priority:    priority,
	}

	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create ticket", "error", err, "reporter_id", reporterID)
		return nil, errors.NewStorageError("failed to create ticket", err)
	}

	s.eventBus.Publish(ctx, events.NewTicketEvent(
		events.EventTypeTicketCreated, t.ID, t.AssetID, t.ReporterID, t.Status, t.Priority, t.Title))

	s.logger.Info("ticket created", "ticket_id", t.ID, "reporter_id", reporterID, "priority", priority)
	return t, nil
}

// Update moves a ticket through its workflow. Status changes must follow the
// transition table; anything else is a state error, not a validation error,
// because the request shape was fine.
func (s *Service) Update(ctx context.Context, ticketID int64, dto UpdateTicketDTO) (*Ticket, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}

	if dto.Status != nil && *dto.Status != t.Status {
		if !CanTransition(t.Status, *dto.Status) {
			return nil, errors.NewStateError(
				"ticket cannot move from "+t.Status+" to "+*dto.Status,
				errors.ErrCodeInvalidStatus)
		}
		t.Status = *dto.Status
		if t.Status == StatusResolved {
			now := time.Now()
			t.ResolvedAt = &now
		}
	}
	if dto.Priority != nil {
		t.Priority = *dto.Priority
	}
	if dto.AssigneeID != nil {
		t.AssigneeID = dto.AssigneeID
	}
	if dto.Resolution != nil {
		t.Resolution = *dto.Resolution
	}

	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to update ticket", "error", err, "ticket_id", ticketID)
		return nil, errors.NewStorageError("failed to update ticket", err)
	}

	s.logger.Info("ticket updated", "ticket_id", t.ID, "status", t.Status)
	return t, nil
}

// Cancel withdraws a ticket. Only the reporter may cancel, and only while the
// ticket is still open. The conditional update makes a repeated cancel lose
// cleanly instead of double-writing.
func (s *Service) Cancel(ctx context.Context, actorID, ticketID int64) (*Ticket, error) {
	t, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if t.ReporterID != actorID {
		return nil, errors.ErrNotTicketCreator
	}
	if !t.IsOpen() {
		return nil, errors.ErrTicketNotOpen
	}

	now := time.Now()
	ok, err := s.repo.UpdateStatusIf(t.ID, StatusOpen, StatusCancelled, &now)
	if err != nil {
		s.logger.Error("failed to cancel ticket", "error", err, "ticket_id", ticketID)
		return nil, errors.NewStorageError("failed to cancel ticket", err)
	}
	if !ok {
		return nil, errors.ErrTicketNotOpen
	}
	t.Status = StatusCancelled
	t.CancelledAt = &now

	s.eventBus.Publish(ctx, events.NewTicketEvent(
		events.EventTypeTicketCancelled, t.ID, t.AssetID, t.ReporterID, t.Status, t.Priority, t.Title))

	s.logger.Info("ticket cancelled", "ticket_id", t.ID, "actor_id", actorID)
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Ticket, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Ticket, error) {
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, errors.NewValidationError("invalid ticket status filter", errors.ErrCodeInvalidStatus)
	}
	if filter.Priority != "" && !IsValidPriority(filter.Priority) {
		return nil, errors.NewValidationError("invalid ticket priority filter", errors.ErrCodeInvalidPriority)
	}
	return s.repo.List(filter)
}
