package maintenance_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	apperrors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/maintenance"
)

func TestMaintenanceService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Maintenance Service Suite")
}

// Mock repository for testing
type mockMaintenanceRepository struct {
	schedules    map[int64]*maintenance.Schedule
	records      map[int64][]*maintenance.Record
	nextID       int64
	nextRecordID int64
}

func newMockMaintenanceRepository() *mockMaintenanceRepository {
	return &mockMaintenanceRepository{
		schedules:    make(map[int64]*maintenance.Schedule),
		records:      make(map[int64][]*maintenance.Record),
		nextID:       1,
		nextRecordID: 1,
	}
}

func (m *mockMaintenanceRepository) CreateSchedule(s *maintenance.Schedule) error {
	s.ID = m.nextID
	m.nextID++
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	copied := *s
	m.schedules[s.ID] = &copied
	return nil
}

func (m *mockMaintenanceRepository) GetSchedule(id int64) (*maintenance.Schedule, error) {
	s, exists := m.schedules[id]
	if !exists {
		return nil, apperrors.ErrScheduleNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockMaintenanceRepository) ListSchedules(filter maintenance.ListFilter) ([]*maintenance.Schedule, error) {
	result := make([]*maintenance.Schedule, 0)
	for _, s := range m.schedules {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (m *mockMaintenanceRepository) UpdateSchedule(s *maintenance.Schedule) error {
	s.UpdatedAt = time.Now()
	copied := *s
	m.schedules[s.ID] = &copied
	return nil
}

func (m *mockMaintenanceRepository) UpdateScheduleStatusIf(id int64, expectedStatus, newStatus string) (bool, error) {
	s, exists := m.schedules[id]
	if !exists || s.Status != expectedStatus {
		return false, nil
	}
	s.Status = newStatus
	s.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockMaintenanceRepository) CreateRecord(r *maintenance.Record) error {
	r.ID = m.nextRecordID
	m.nextRecordID++
	r.CreatedAt = time.Now()
	copied := *r
	m.records[r.ScheduleID] = append(m.records[r.ScheduleID], &copied)
	return nil
}

func (m *mockMaintenanceRepository) ListRecords(scheduleID int64) ([]*maintenance.Record, error) {
	return m.records[scheduleID], nil
}

func (m *mockMaintenanceRepository) ListDue(before time.Time) ([]*maintenance.Schedule, error) {
	result := make([]*maintenance.Schedule, 0)
	for _, s := range m.schedules {
		if s.Status == maintenance.StatusScheduled && s.NextMaintenanceDate.Before(before) {
			result = append(result, s)
		}
	}
	return result, nil
}

type mockAssetRegistry struct {
	assets map[int64]*asset.Asset
}

func newMockAssetRegistry() *mockAssetRegistry {
	return &mockAssetRegistry{assets: make(map[int64]*asset.Asset)}
}

func (m *mockAssetRegistry) Get(ctx context.Context, id int64) (*asset.Asset, error) {
	a, exists := m.assets[id]
	if !exists {
		return nil, apperrors.ErrAssetNotFound
	}
	return a, nil
}

var _ = Describe("MaintenanceService", func() {
	var (
		service  *maintenance.Service
		mockRepo *mockMaintenanceRepository
		registry *mockAssetRegistry
		logger   *slog.Logger
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockMaintenanceRepository()
		registry = newMockAssetRegistry()
		registry.assets[1] = &asset.Asset{ID: 1, AssetTag: "LT-0001", Status: asset.StatusAvailable}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		eventBus := events.NewEventBus(logger)
		service = maintenance.NewService(mockRepo, registry, eventBus, logger)
		ctx = context.Background()
	})

	Describe("Schedule", func() {
		Context("with a valid payload", func() {
			It("should create a scheduled entry", func() {
				dto := maintenance.ScheduleDTO{
					AssetID:             1,
					MaintenanceType:     "battery check",
					Frequency:           maintenance.FrequencyMonthly,
					NextMaintenanceDate: time.Now().AddDate(0, 1, 0),
				}

				result, err := service.Schedule(ctx, 1, dto)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.ID).To(BeNumerically(">", 0))
				Expect(result.Status).To(Equal(maintenance.StatusScheduled))
			})
		})

		Context("with an unknown frequency", func() {
			It("should return a validation error", func() {
				dto := maintenance.ScheduleDTO{
					AssetID:             1,
					MaintenanceType:     "battery check",
					Frequency:           "fortnightly",
					NextMaintenanceDate: time.Now().AddDate(0, 1, 0),
				}

				_, err := service.Schedule(ctx, 1, dto)

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
			})
		})

		Context("for a missing asset", func() {
			It("should return not found", func() {
				dto := maintenance.ScheduleDTO{
					AssetID:             999,
					MaintenanceType:     "battery check",
					Frequency:           maintenance.FrequencyMonthly,
					NextMaintenanceDate: time.Now().AddDate(0, 1, 0),
				}

				_, err := service.Schedule(ctx, 1, dto)

				Expect(err).To(Equal(apperrors.ErrAssetNotFound))
			})
		})
	})

	Describe("Complete", func() {
		var scheduleID int64

		BeforeEach(func() {
			sched, err := service.Schedule(ctx, 1, maintenance.ScheduleDTO{
				AssetID:             1,
				MaintenanceType:     "battery check",
				Frequency:           maintenance.FrequencyMonthly,
				NextMaintenanceDate: time.Now().AddDate(0, 0, -3),
			})
			Expect(err).ToNot(HaveOccurred())
			scheduleID = sched.ID
		})

		It("should append a record and advance the due date from the performed date", func() {
			performed := time.Now().AddDate(0, 0, -1)
			cost := decimal.NewFromInt(150000)

			result, err := service.Complete(ctx, scheduleID, maintenance.CompleteDTO{
				PerformedDate: performed,
				Cost:          &cost,
				Vendor:        "ServiceCo",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(maintenance.StatusScheduled))
			Expect(result.NextMaintenanceDate).To(BeTemporally("~", performed.AddDate(0, 1, 0), time.Second))

			records, err := service.History(ctx, scheduleID)
			Expect(err).ToNot(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].Vendor).To(Equal("ServiceCo"))
		})

		It("should reset an overdue schedule back to scheduled", func() {
			_, err := service.MarkOverdue(ctx, scheduleID)
			Expect(err).ToNot(HaveOccurred())

			result, err := service.Complete(ctx, scheduleID, maintenance.CompleteDTO{
				PerformedDate: time.Now(),
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(maintenance.StatusScheduled))
		})

		It("should reject a future performed date", func() {
			_, err := service.Complete(ctx, scheduleID, maintenance.CompleteDTO{
				PerformedDate: time.Now().AddDate(0, 0, 2),
			})

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})
	})

	Describe("MarkOverdue", func() {
		Context("when the schedule is past due", func() {
			It("should flip it to overdue", func() {
				sched, err := service.Schedule(ctx, 1, maintenance.ScheduleDTO{
					AssetID:             1,
					MaintenanceType:     "battery check",
					Frequency:           maintenance.FrequencyWeekly,
					NextMaintenanceDate: time.Now().AddDate(0, 0, -2),
				})
				Expect(err).ToNot(HaveOccurred())

				result, err := service.MarkOverdue(ctx, sched.ID)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Status).To(Equal(maintenance.StatusOverdue))
			})
		})

		Context("when the schedule is not yet due", func() {
			It("should return a state error", func() {
				sched, err := service.Schedule(ctx, 1, maintenance.ScheduleDTO{
					AssetID:             1,
					MaintenanceType:     "battery check",
					Frequency:           maintenance.FrequencyWeekly,
					NextMaintenanceDate: time.Now().AddDate(0, 0, 5),
				})
				Expect(err).ToNot(HaveOccurred())

				_, err = service.MarkOverdue(ctx, sched.ID)

				Expect(err).To(Equal(apperrors.ErrScheduleNotDue))
			})
		})

		Context("when a second sweep hits the same schedule", func() {
			It("should record the transition once", func() {
				sched, err := service.Schedule(ctx, 1, maintenance.ScheduleDTO{
					AssetID:             1,
					MaintenanceType:     "battery check",
					Frequency:           maintenance.FrequencyWeekly,
					NextMaintenanceDate: time.Now().AddDate(0, 0, -2),
				})
				Expect(err).ToNot(HaveOccurred())

				_, err = service.MarkOverdue(ctx, sched.ID)
				Expect(err).ToNot(HaveOccurred())

				_, err = service.MarkOverdue(ctx, sched.ID)

				Expect(err).To(Equal(apperrors.ErrScheduleNotDue))
			})
		})
	})

	Describe("ListDue", func() {
		It("should only return scheduled entries past the cutoff", func() {
			_, err := service.Schedule(ctx, 1, maintenance.ScheduleDTO{
				AssetID:             1,
				MaintenanceType:     "battery check",
				Frequency:           maintenance.FrequencyWeekly,
				NextMaintenanceDate: time.Now().AddDate(0, 0, -2),
			})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Schedule(ctx, 1, maintenance.ScheduleDTO{
				AssetID:             1,
				MaintenanceType:     "screen check",
				Frequency:           maintenance.FrequencyMonthly,
				NextMaintenanceDate: time.Now().AddDate(0, 0, 10),
			})
			Expect(err).ToNot(HaveOccurred())

			due, err := service.ListDue(ctx, time.Now())

			Expect(err).ToNot(HaveOccurred())
			Expect(due).To(HaveLen(1))
			Expect(due[0].MaintenanceType).To(Equal("battery check"))
		})
	})

	Describe("List", func() {
		It("should reject an unknown status filter", func() {
			_, err := service.List(ctx, maintenance.ListFilter{Status: "paused"})

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})
	})
})
