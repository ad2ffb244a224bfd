package asset

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/core/events"
)

// Repository defines the data access methods for assets. UpdateStatusIf must
// be a single conditional update: it succeeds only when the stored status
// still equals expectedStatus, so concurrent writers cannot both win.
type Repository interface {
	Create(a *Asset) error
	GetByID(id int64) (*Asset, error)
	GetByTag(tag string) (*Asset, error)
	List(filter ListFilter) ([]*Asset, error)
	Update(a *Asset) error
	UpdateStatusIf(id int64, expectedStatus, newStatus string, assigneeID *int64) (bool, error)
}

// Service owns asset records and their lifecycle status.
type Service struct {
	repo     Repository
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, actorID int64, dto CreateAssetDTO) (*Asset, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("asset validation failed", "error", err, "actor_id", actorID)
		return nil, err
	}

	a := &Asset{
		AssetTag:       dto.AssetTag,
		Name:           dto.Name,
		Category:       dto.Category,
		Brand:          dto.Brand,
		Model:          dto.Model,
		SerialNumber:   dto.SerialNumber,
		Status:         StatusAvailable,
		Specifications: dto.Specifications,
		PurchaseDate:   dto.PurchaseDate,
		PurchaseCost:   dto.PurchaseCost,
		WarrantyEnd:    dto.WarrantyEnd,
	}

	if err := s.repo.Create(a); err != nil {
		s.logger.Error("failed to create asset", "error", err, "asset_tag", dto.AssetTag)
		return nil, errors.NewStorageError("failed to create asset", err)
	}

	s.logger.Info("asset registered",
		"asset_id", a.ID,
		"asset_tag", a.AssetTag,
		"category", a.Category,
		"actor_id", actorID)

	return a, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Asset, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetByTag(ctx context.Context, tag string) (*Asset, error) {
	return s.repo.GetByTag(tag)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Asset, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	assets, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list assets", "error", err)
		return nil, errors.NewStorageError("failed to list assets", err)
	}
	return assets, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateAssetDTO) (*Asset, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		a.Name = *dto.Name
	}
	if dto.Category != nil {
		a.Category = *dto.Category
	}
	if dto.Brand != nil {
		a.Brand = *dto.Brand
	}
	if dto.Model != nil {
		a.Model = *dto.Model
	}
	if dto.SerialNumber != nil {
		a.SerialNumber = *dto.SerialNumber
	}
	if dto.Specifications != nil {
		a.Specifications = dto.Specifications
	}
	if dto.PurchaseDate != nil {
		a.PurchaseDate = dto.PurchaseDate
	}
	if dto.PurchaseCost != nil {
		a.PurchaseCost = dto.PurchaseCost
	}
	if dto.WarrantyEnd != nil {
		a.WarrantyEnd = dto.WarrantyEnd
	}

	if err := s.repo.Update(a); err != nil {
		s.logger.Error("failed to update asset", "error", err, "asset_id", id)
		return nil, errors.NewStorageError("failed to update asset", err)
	}

	return a, nil
}

// SetStatus moves an asset through its lifecycle. It validates the
// assigned⇔assignee invariant and the transition table, then applies the
// change with a compare-and-swap on the current status so a concurrent writer
// loses with a conflict instead of silently overwriting.
func (s *Service) SetStatus(ctx context.Context, id int64, status string, assigneeID *int64) (*Asset, error) {
	if !IsValidStatus(status) {
		return nil, errors.NewValidationError("unknown asset status", errors.ErrCodeInvalidStatus)
	}
	if err := ValidateStatusAssignee(status, assigneeID); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(a.Status, status) {
		s.logger.Warn("illegal asset status transition",
			"asset_id", id,
			"from", a.Status,
			"to", status)
		return nil, errors.NewConflictError("asset cannot move to the requested status", errors.ErrCodeStatusChangeBlocked)
	}

	ok, err := s.repo.UpdateStatusIf(id, a.Status, status, assigneeID)
	if err != nil {
		s.logger.Error("failed to update asset status", "error", err, "asset_id", id)
		return nil, errors.NewStorageError("failed to update asset status", err)
	}
	if !ok {
		// Another writer changed the status between our read and the
		// conditional update.
		return nil, errors.NewConflictError("asset status changed concurrently", errors.ErrCodeStatusChangeBlocked)
	}

	fromStatus := a.Status
	a.Status = status
	a.CurrentAssigneeID = assigneeID

	s.logger.Info("asset status changed",
		"asset_id", a.ID,
		"asset_tag", a.AssetTag,
		"from", fromStatus,
		"to", status)

	s.eventBus.Publish(ctx, events.NewAssetStatusChangedEvent(a.ID, a.AssetTag, fromStatus, status, assigneeID))

	return a, nil
}

// Retire permanently removes an asset from circulation. Assets are never
// deleted; retired is terminal.
func (s *Service) Retire(ctx context.Context, actorID, id int64) (*Asset, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if a.Status == StatusAssigned {
		return nil, errors.ErrAssetStillAssigned
	}
	if a.Status == StatusRetired {
		return nil, errors.NewStateError("asset is already retired", errors.ErrCodeInvalidStatus)
	}

	retired, err := s.SetStatus(ctx, id, StatusRetired, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("asset retired", "asset_id", id, "actor_id", actorID)

	return retired, nil
}
