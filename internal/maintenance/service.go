package maintenance

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/core/events"
)

// Repository defines the data access methods for maintenance schedules
// and their history records.
type Repository interface {
	CreateSchedule(s *Schedule) error
	GetSchedule(id int64) (*Schedule, error)
	ListSchedules(filter ListFilter) ([]*Schedule, error)
	UpdateSchedule(s *Schedule) error
	UpdateScheduleStatusIf(id int64, expectedStatus, newStatus string) (bool, error)
	CreateRecord(r *Record) error
	ListRecords(scheduleID int64) ([]*Record, error)
	ListDue(before time.Time) ([]*Schedule, error)
}

// AssetRegistry is the slice of the asset service the scheduler needs.
type AssetRegistry interface {
	Get(ctx context.Context, id int64) (*asset.Asset, error)
}

// Service owns recurring maintenance schedules. Marking a schedule overdue
// is driven by an external sweep calling ListDue and MarkOverdue; the
// service itself never runs timers.
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

func (s *Service) Schedule(ctx context.Context, actorID int64, dto ScheduleDTO) (*Schedule, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("maintenance schedule validation failed", "error", err, "actor_id", actorID)
		return nil, err
	}

	if _, err := s.registry.Get(ctx, dto.AssetID); err != nil {
		return nil, err
	}

	sched := &Schedule{
		AssetID:             dto.AssetID,
		MaintenanceType:     dto.MaintenanceType,
		Frequency:           dto.Frequency,
		NextMaintenanceDate: dto.NextMaintenanceDate,
		Status:              StatusScheduled,
		Notes:               dto.Notes,
	}

	if err := s.repo.CreateSchedule(sched); err != nil {
		s.logger.Error("failed to create maintenance schedule", "error", err, "asset_id", dto.AssetID)
		return nil, errors.NewStorageError("failed to create maintenance schedule", err)
	}

	s.logger.Info("maintenance schedule created",
		"schedule_id", sched.ID,
		"asset_id", sched.AssetID,
		"frequency", sched.Frequency)

	return sched, nil
}

// Complete appends a history record and rolls the schedule forward one
// frequency unit from the performed date, not from the previous due date,
// so a late completion does not leave the next slot already in the past.
func (s *Service) Complete(ctx context.Context, scheduleID int64, dto CompleteDTO) (*Schedule, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	sched, err := s.repo.GetSchedule(scheduleID)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ScheduleID:    sched.ID,
		AssetID:       sched.AssetID,
		PerformedDate: dto.PerformedDate,
		Cost:          dto.Cost,
		Vendor:        dto.Vendor,
		Notes:         dto.Notes,
	}
	if err := s.repo.CreateRecord(rec); err != nil {
		s.logger.Error("failed to create maintenance record", "error", err, "schedule_id", sched.ID)
		return nil, errors.NewStorageError("failed to record maintenance completion", err)
	}

	sched.NextMaintenanceDate = NextDate(dto.PerformedDate, sched.Frequency)
	sched.Status = StatusScheduled
	if err := s.repo.UpdateSchedule(sched); err != nil {
		s.logger.Error("failed to advance maintenance schedule", "error", err, "schedule_id", sched.ID)
		return nil, errors.NewStorageError("failed to advance maintenance schedule", err)
	}

	s.eventBus.Publish(ctx, events.NewMaintenanceEvent(
		events.EventTypeMaintenanceCompleted, sched.ID, sched.AssetID, sched.MaintenanceType, sched.NextMaintenanceDate))

	s.logger.Info("maintenance completed",
		"schedule_id", sched.ID,
		"asset_id", sched.AssetID,
		"next_maintenance_date", sched.NextMaintenanceDate)

	return sched, nil
}

// MarkOverdue is called by the external sweep for each schedule ListDue
// returned. The conditional update means two overlapping sweeps record the
// transition once.
func (s *Service) MarkOverdue(ctx context.Context, scheduleID int64) (*Schedule, error) {
	sched, err := s.repo.GetSchedule(scheduleID)
	if err != nil {
		return nil, err
	}
	if sched.Status != StatusScheduled || !sched.IsDue(time.Now()) {
		return nil, errors.ErrScheduleNotDue
	}

	ok, err := s.repo.UpdateScheduleStatusIf(sched.ID, StatusScheduled, StatusOverdue)
	if err != nil {
		s.logger.Error("failed to mark schedule overdue", "error", err, "schedule_id", sched.ID)
		return nil, errors.NewStorageError("failed to mark schedule overdue", err)
	}
	if !ok {
		return nil, errors.ErrScheduleNotDue
	}
	sched.Status = StatusOverdue

	s.eventBus.Publish(ctx, events.NewMaintenanceEvent(
		events.EventTypeMaintenanceDue, sched.ID, sched.AssetID, sched.MaintenanceType, sched.NextMaintenanceDate))

	s.logger.Warn("maintenance schedule overdue",
		"schedule_id", sched.ID,
		"asset_id", sched.AssetID,
		"due", sched.NextMaintenanceDate)

	return sched, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Schedule, error) {
	return s.repo.GetSchedule(id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Schedule, error) {
	if filter.Status != "" && filter.Status != StatusScheduled && filter.Status != StatusCompleted && filter.Status != StatusOverdue {
		return nil, errors.NewValidationError("invalid schedule status filter", errors.ErrCodeInvalidStatus)
	}
	return s.repo.ListSchedules(filter)
}

func (s *Service) History(ctx context.Context, scheduleID int64) ([]*Record, error) {
	if _, err := s.repo.GetSchedule(scheduleID); err != nil {
		return nil, err
	}
	return s.repo.ListRecords(scheduleID)
}

// ListDue feeds the external sweep.
func (s *Service) ListDue(ctx context.Context, before time.Time) ([]*Schedule, error) {
	return s.repo.ListDue(before)
}
