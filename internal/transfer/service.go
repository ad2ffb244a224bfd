package transfer

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/allocation"
	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/core/events"
)

// Repository defines the data access methods for transfers. UpdateStatusIf is
// conditional on the stored status so two approvers racing on the same
// transfer cannot both apply the same transition.
type Repository interface {
	Create(t *Transfer) error
	GetByID(id int64) (*Transfer, error)
	List(filter ListFilter) ([]*Transfer, error)
	UpdateStatusIf(id int64, expectedStatus, newStatus, rejectReason string, completedAt *time.Time) (bool, error)
}

type AssetRegistry interface {
	Get(ctx context.Context, id int64) (*asset.Asset, error)
	SetStatus(ctx context.Context, id int64, status string, assigneeID *int64) (*asset.Asset, error)
}

// AllocationManager is the slice of the allocation service used on transfer
// completion: close the old holder's allocation and open a fresh one for the
// recipient without bouncing the asset through available.
type AllocationManager interface {
	ActiveForAsset(ctx context.Context, assetID int64) (*allocation.Allocation, error)
	CloseForTransfer(ctx context.Context, allocationID int64, notes string) error
	OpenForTransfer(ctx context.Context, assetID, employeeID int64, notes string) (*allocation.Allocation, error)
}

// Service coordinates the two-party approval sequence that moves an asset
// between employees.
type Service struct {
	repo        Repository
	registry    AssetRegistry
	allocations AllocationManager
	eventBus    *events.EventBus
	logger      *slog.Logger
}

func NewService(repo Repository, registry AssetRegistry, allocations AllocationManager, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		registry:    registry,
		allocations: allocations,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Initiate opens a transfer of an asset to a new holder. When the asset is
// currently unheld there is no from-side and only the recipient's approval
// will be required.
func (s *Service) Initiate(ctx context.Context, actorID int64, dto InitiateDTO) (*Transfer, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("transfer validation failed", "error", err, "actor_id", actorID)
		return nil, err
	}

	a, err := s.registry.Get(ctx, dto.AssetID)
	if err != nil {
		return nil, err
	}
	if a.IsRetired() {
		return nil, errors.NewConflictError("retired assets cannot be transferred", errors.ErrCodeStatusChangeBlocked)
	}
	if a.CurrentAssigneeID != nil && *a.CurrentAssigneeID == dto.ToEmployeeID {
		return nil, errors.ErrSameHolder
	}

	t := &Transfer{
		AssetID:        dto.AssetID,
		FromEmployeeID: a.CurrentAssigneeID,
		ToEmployeeID:   dto.ToEmployeeID,
		InitiatorID:    actorID,
		Status:         StatusPending,
		Notes:          dto.Notes,
	}

	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create transfer", "error", err, "asset_id", dto.AssetID)
		return nil, errors.NewStorageError("failed to create transfer", err)
	}

	s.logger.Info("transfer initiated",
		"transfer_id", t.ID,
		"asset_id", t.AssetID,
		"to_employee_id", t.ToEmployeeID,
		"needs_from_approval", t.NeedsFromApproval(),
		"actor_id", actorID)

	s.eventBus.Publish(ctx, events.NewTransferEvent(
		events.EventTypeTransferInitiated,
		t.ID, t.AssetID, t.FromEmployeeID, t.ToEmployeeID, actorID, t.Status, ""))

	return t, nil
}

// Approve records one party's sign-off. When every required approval is in,
// the transfer completes: the asset moves to the recipient, the old holder's
// allocation closes and a new one opens.
func (s *Service) Approve(ctx context.Context, transferID, byEmployeeID int64) (*Transfer, error) {
	t, err := s.repo.GetByID(transferID)
	if err != nil {
		return nil, err
	}

	side := t.Side(byEmployeeID)
	if side == SideNone {
		s.logger.Warn("approval by non-party",
			"transfer_id", transferID,
			"employee_id", byEmployeeID)
		return nil, errors.ErrNotAnApprover
	}

	next, appErr := t.NextOnApproval(side)
	if appErr != nil {
		return nil, appErr
	}

	if next == StatusCompleted {
		return s.complete(ctx, t, byEmployeeID)
	}

	ok, err := s.repo.UpdateStatusIf(t.ID, t.Status, next, "", nil)
	if err != nil {
		s.logger.Error("failed to record approval", "error", err, "transfer_id", transferID)
		return nil, errors.NewStorageError("failed to record approval", err)
	}
	if !ok {
		return nil, errors.NewConflictError("transfer changed concurrently", errors.ErrCodeTransferTerminal)
	}

	t.Status = next

	s.logger.Info("transfer approval recorded",
		"transfer_id", t.ID,
		"side", string(side),
		"status", t.Status,
		"employee_id", byEmployeeID)

	s.eventBus.Publish(ctx, events.NewTransferEvent(
		events.EventTypeTransferApproved,
		t.ID, t.AssetID, t.FromEmployeeID, t.ToEmployeeID, byEmployeeID, t.Status, ""))

	return t, nil
}

func (s *Service) complete(ctx context.Context, t *Transfer, byEmployeeID int64) (*Transfer, error) {
	// Claim completion first. The conditional write is the gate: a concurrent
	// completer or rejecter loses here before any asset or allocation side
	// effect has run.
	now := time.Now()
	ok, err := s.repo.UpdateStatusIf(t.ID, t.Status, StatusCompleted, "", &now)
	if err != nil {
		s.logger.Error("failed to complete transfer", "error", err, "transfer_id", t.ID)
		return nil, errors.NewStorageError("failed to complete transfer", err)
	}
	if !ok {
		return nil, errors.NewConflictError("transfer changed concurrently", errors.ErrCodeTransferTerminal)
	}

	if _, err := s.registry.SetStatus(ctx, t.AssetID, asset.StatusAssigned, &t.ToEmployeeID); err != nil {
		// Hand the transfer back to its pre-completion status so a party can
		// retry once the asset settles.
		if _, rbErr := s.repo.UpdateStatusIf(t.ID, StatusCompleted, t.Status, "", nil); rbErr != nil {
			s.logger.Error("failed to roll back transfer completion",
				"error", rbErr,
				"transfer_id", t.ID)
		}
		s.logger.Error("failed to reassign asset on transfer completion",
			"error", err,
			"transfer_id", t.ID,
			"asset_id", t.AssetID)
		return nil, err
	}

	// Close the previous holder's allocation, if one exists.
	if t.NeedsFromApproval() {
		prior, err := s.allocations.ActiveForAsset(ctx, t.AssetID)
		if err == nil && prior != nil {
			if cerr := s.allocations.CloseForTransfer(ctx, prior.ID, "closed by transfer"); cerr != nil {
				s.logger.Error("failed to close prior allocation",
					"error", cerr,
					"transfer_id", t.ID,
					"allocation_id", prior.ID)
			}
		}
	}

	if _, err := s.allocations.OpenForTransfer(ctx, t.AssetID, t.ToEmployeeID, "opened by transfer"); err != nil {
		s.logger.Error("failed to open allocation for recipient",
			"error", err,
			"transfer_id", t.ID,
			"asset_id", t.AssetID)
	}

	t.Status = StatusCompleted
	t.CompletedAt = &now

	s.logger.Info("transfer completed",
		"transfer_id", t.ID,
		"asset_id", t.AssetID,
		"to_employee_id", t.ToEmployeeID)

	s.eventBus.Publish(ctx, events.NewTransferEvent(
		events.EventTypeTransferCompleted,
		t.ID, t.AssetID, t.FromEmployeeID, t.ToEmployeeID, byEmployeeID, t.Status, ""))

	return t, nil
}

// Reject permanently ends a non-terminal transfer. Either party may reject.
func (s *Service) Reject(ctx context.Context, transferID, byEmployeeID int64, dto RejectDTO) (*Transfer, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(transferID)
	if err != nil {
		return nil, err
	}

	if t.Side(byEmployeeID) == SideNone {
		return nil, errors.ErrNotAnApprover
	}
	if t.IsTerminal() {
		return nil, errors.ErrTransferTerminal
	}

	ok, err := s.repo.UpdateStatusIf(t.ID, t.Status, StatusRejected, dto.Reason, nil)
	if err != nil {
		s.logger.Error("failed to reject transfer", "error", err, "transfer_id", transferID)
		return nil, errors.NewStorageError("failed to reject transfer", err)
	}
	if !ok {
		return nil, errors.NewConflictError("transfer changed concurrently", errors.ErrCodeTransferTerminal)
	}

	t.Status = StatusRejected
	t.RejectReason = dto.Reason

	s.logger.Info("transfer rejected",
		"transfer_id", t.ID,
		"asset_id", t.AssetID,
		"employee_id", byEmployeeID,
		"reason", dto.Reason)

	s.eventBus.Publish(ctx, events.NewTransferEvent(
		events.EventTypeTransferRejected,
		t.ID, t.AssetID, t.FromEmployeeID, t.ToEmployeeID, byEmployeeID, t.Status, dto.Reason))

	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Transfer, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transfer, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	transfers, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list transfers", "error", err)
		return nil, errors.NewStorageError("failed to list transfers", err)
	}
	return transfers, nil
}
