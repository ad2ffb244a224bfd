package allocation

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/core/events"
)

// Repository defines the data access methods for allocations
type Repository interface {
	Create(a *Allocation) error
	GetByID(id int64) (*Allocation, error)
	ActiveForAsset(assetID int64) (*Allocation, error)
	List(filter ListFilter) ([]*Allocation, error)
	Update(a *Allocation) error
}

// AssetRegistry is the slice of the asset service the allocation manager
// needs. SetStatus applies a compare-and-swap on the asset's current status,
// which is what closes the double-allocation race.
type AssetRegistry interface {
	Get(ctx context.Context, id int64) (*asset.Asset, error)
	SetStatus(ctx context.Context, id int64, status string, assigneeID *int64) (*asset.Asset, error)
}

// Service assigns assets to employees and takes them back.
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

// Allocate hands an available asset to an employee. The asset status flip is
// the gate: it only succeeds while the asset is still available, so of two
// concurrent allocations exactly one wins and the other gets a conflict.
func (s *Service) Allocate(ctx context.Context, actorID int64, dto AllocateDTO) (*Allocation, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("allocation validation failed", "error", err, "actor_id", actorID)
		return nil, err
	}

	a, err := s.registry.Get(ctx, dto.AssetID)
	if err != nil {
		return nil, err
	}
	if !a.IsAvailable() {
		s.logger.Warn("cannot allocate asset in current status",
			"asset_id", dto.AssetID,
			"status", a.Status)
		return nil, errors.ErrAssetNotAvailable
	}

	// Flip the asset first; CAS from available rejects concurrent winners.
	if _, err := s.registry.SetStatus(ctx, dto.AssetID, asset.StatusAssigned, &dto.EmployeeID); err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeConflict {
			return nil, errors.ErrAssetNotAvailable
		}
		return nil, err
	}

	alloc := &Allocation{
		AssetID:       dto.AssetID,
		EmployeeID:    dto.EmployeeID,
		Department:    dto.Department,
		Location:      dto.Location,
		Status:        StatusActive,
		Condition:     dto.Condition,
		Notes:         dto.Notes,
		AllocatedDate: dto.AllocatedDate,
	}

	if err := s.repo.Create(alloc); err != nil {
		s.logger.Error("failed to create allocation, releasing asset",
			"error", err,
			"asset_id", dto.AssetID)
		// Best-effort compensation so the asset does not stay assigned
		// without an allocation record.
		if _, rbErr := s.registry.SetStatus(ctx, dto.AssetID, asset.StatusAvailable, nil); rbErr != nil {
			s.logger.Error("failed to release asset after allocation failure",
				"error", rbErr,
				"asset_id", dto.AssetID)
		}
		return nil, errors.NewStorageError("failed to create allocation", err)
	}

	s.logger.Info("asset allocated",
		"allocation_id", alloc.ID,
		"asset_id", dto.AssetID,
		"employee_id", dto.EmployeeID,
		"actor_id", actorID)

	s.eventBus.Publish(ctx, events.NewAssetAllocatedEvent(dto.AssetID, alloc.ID, dto.EmployeeID, dto.Department, dto.Location))

	return alloc, nil
}

// Return closes an allocation and puts the asset back in circulation.
func (s *Service) Return(ctx context.Context, allocationID int64, dto ReturnDTO) (*Allocation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	alloc, err := s.repo.GetByID(allocationID)
	if err != nil {
		return nil, err
	}
	if !alloc.IsActive() {
		return nil, errors.ErrAlreadyReturned
	}

	now := time.Now()
	alloc.Status = StatusReturned
	alloc.ReturnDate = &now
	alloc.Condition = dto.Condition
	if dto.Notes != "" {
		alloc.Notes = dto.Notes
	}

	if err := s.repo.Update(alloc); err != nil {
		s.logger.Error("failed to close allocation", "error", err, "allocation_id", allocationID)
		return nil, errors.NewStorageError("failed to close allocation", err)
	}

	if _, err := s.registry.SetStatus(ctx, alloc.AssetID, asset.StatusAvailable, nil); err != nil {
		s.logger.Error("failed to release asset on return",
			"error", err,
			"asset_id", alloc.AssetID,
			"allocation_id", allocationID)
		// Reopen the allocation so the books match the asset still being
		// assigned.
		alloc.Status = StatusActive
		alloc.ReturnDate = nil
		if rbErr := s.repo.Update(alloc); rbErr != nil {
			s.logger.Error("failed to reopen allocation after release failure",
				"error", rbErr,
				"allocation_id", allocationID)
		}
		return nil, err
	}

	s.logger.Info("asset returned",
		"allocation_id", alloc.ID,
		"asset_id", alloc.AssetID,
		"employee_id", alloc.EmployeeID,
		"condition", dto.Condition)

	s.eventBus.Publish(ctx, events.NewAssetReturnedEvent(alloc.AssetID, alloc.ID, alloc.EmployeeID, dto.Condition))

	return alloc, nil
}

// Update edits department, location, condition or notes of an active
// allocation. The asset record is not touched.
func (s *Service) Update(ctx context.Context, allocationID int64, dto UpdateDTO) (*Allocation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	alloc, err := s.repo.GetByID(allocationID)
	if err != nil {
		return nil, err
	}
	if !alloc.IsActive() {
		return nil, errors.ErrAlreadyReturned
	}

	if dto.Department != nil {
		alloc.Department = *dto.Department
	}
	if dto.Location != nil {
		alloc.Location = *dto.Location
	}
	if dto.Condition != nil {
		alloc.Condition = *dto.Condition
	}
	if dto.Notes != nil {
		alloc.Notes = *dto.Notes
	}

	if err := s.repo.Update(alloc); err != nil {
		s.logger.Error("failed to update allocation", "error", err, "allocation_id", allocationID)
		return nil, errors.NewStorageError("failed to update allocation", err)
	}

	return alloc, nil
}

// CloseForTransfer marks an allocation returned without touching the asset
// record; the transfer workflow reassigns the asset itself.
func (s *Service) CloseForTransfer(ctx context.Context, allocationID int64, notes string) error {
	alloc, err := s.repo.GetByID(allocationID)
	if err != nil {
		return err
	}
	if !alloc.IsActive() {
		return errors.ErrAlreadyReturned
	}

	now := time.Now()
	alloc.Status = StatusReturned
	alloc.ReturnDate = &now
	if notes != "" {
		alloc.Notes = notes
	}

	if err := s.repo.Update(alloc); err != nil {
		return errors.NewStorageError("failed to close allocation", err)
	}

	s.logger.Info("allocation closed for transfer",
		"allocation_id", alloc.ID,
		"asset_id", alloc.AssetID,
		"employee_id", alloc.EmployeeID)

	return nil
}

// OpenForTransfer creates an active allocation for a transfer recipient. The
// asset has already been reassigned by the transfer workflow.
func (s *Service) OpenForTransfer(ctx context.Context, assetID, employeeID int64, notes string) (*Allocation, error) {
	alloc := &Allocation{
		AssetID:       assetID,
		EmployeeID:    employeeID,
		Status:        StatusActive,
		Condition:     ConditionGood,
		Notes:         notes,
		AllocatedDate: time.Now(),
	}

	if err := s.repo.Create(alloc); err != nil {
		return nil, errors.NewStorageError("failed to open allocation", err)
	}

	s.logger.Info("allocation opened for transfer",
		"allocation_id", alloc.ID,
		"asset_id", assetID,
		"employee_id", employeeID)

	return alloc, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Allocation, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ActiveForAsset(ctx context.Context, assetID int64) (*Allocation, error) {
	return s.repo.ActiveForAsset(assetID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Allocation, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	allocations, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list allocations", "error", err)
		return nil, errors.NewStorageError("failed to list allocations", err)
	}
	return allocations, nil
}
