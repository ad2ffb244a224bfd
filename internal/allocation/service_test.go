package allocation_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/allocation"
	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/core/events"
)

func TestAllocationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Allocation Service Suite")
}

// Mock repository for testing
type mockAllocationRepository struct {
	mu          sync.Mutex
	allocations map[int64]*allocation.Allocation
	createError error
	getError    error
	updateError error
	nextID      int64
}

func newMockAllocationRepository() *mockAllocationRepository {
	return &mockAllocationRepository{
		allocations: make(map[int64]*allocation.Allocation),
		nextID:      1,
	}
}

func (m *mockAllocationRepository) Create(a *allocation.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	a.ID = m.nextID
	m.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	copied := *a
	m.allocations[a.ID] = &copied
	return nil
}

func (m *mockAllocationRepository) GetByID(id int64) (*allocation.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	a, exists := m.allocations[id]
	if !exists {
		return nil, apperrors.ErrAllocationNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAllocationRepository) ActiveForAsset(assetID int64) (*allocation.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.allocations {
		if a.AssetID == assetID && a.Status == allocation.StatusActive {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperrors.ErrAllocationNotFound
}

func (m *mockAllocationRepository) List(filter allocation.ListFilter) ([]*allocation.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*allocation.Allocation, 0)
	for _, a := range m.allocations {
		result = append(result, a)
	}
	return result, nil
}

func (m *mockAllocationRepository) Update(a *allocation.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return m.updateError
	}
	a.UpdatedAt = time.Now()
	copied := *a
	m.allocations[a.ID] = &copied
	return nil
}

// mockAssetRegistry reproduces the asset service's compare-and-swap SetStatus
// so allocation races behave the way they do against the real registry.
type mockAssetRegistry struct {
	mu             sync.Mutex
	assets         map[int64]*asset.Asset
	setStatusError error
}

func newMockAssetRegistry() *mockAssetRegistry {
	return &mockAssetRegistry{assets: make(map[int64]*asset.Asset)}
}

func (m *mockAssetRegistry) add(a *asset.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.ID] = a
}

func (m *mockAssetRegistry) Get(ctx context.Context, id int64) (*asset.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, exists := m.assets[id]
	if !exists {
		return nil, apperrors.ErrAssetNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAssetRegistry) SetStatus(ctx context.Context, id int64, status string, assigneeID *int64) (*asset.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setStatusError != nil {
		return nil, m.setStatusError
	}
	a, exists := m.assets[id]
	if !exists {
		return nil, apperrors.ErrAssetNotFound
	}
	if !asset.CanTransition(a.Status, status) {
		return nil, apperrors.NewConflictError("asset cannot move to the requested status", apperrors.ErrCodeStatusChangeBlocked)
	}
	if status == asset.StatusAssigned && a.Status == asset.StatusAssigned {
		// Reassignment is legal for transfers but a second allocation must
		// not slip through; the real CAS rejects it because the expected
		// status read by the caller was available.
		return nil, apperrors.NewConflictError("asset status changed concurrently", apperrors.ErrCodeStatusChangeBlocked)
	}
	a.Status = status
	a.CurrentAssigneeID = assigneeID
	copied := *a
	return &copied, nil
}

var _ = Describe("AllocationService", func() {
	var (
		service  *allocation.Service
		mockRepo *mockAllocationRepository
		registry *mockAssetRegistry
		logger   *slog.Logger
		ctx      context.Context
	)

	availableAsset := func(id int64) *asset.Asset {
		return &asset.Asset{
			ID:       id,
			AssetTag: "LT-0001",
			Name:     "ThinkPad X1",
			Category: "laptop",
			Status:   asset.StatusAvailable,
		}
	}

	validDTO := func(assetID, employeeID int64) allocation.AllocateDTO {
		return allocation.AllocateDTO{
			AssetID:       assetID,
			EmployeeID:    employeeID,
			Department:    "Engineering",
			Condition:     allocation.ConditionGood,
			AllocatedDate: time.Now().Add(-time.Hour),
		}
	}

	BeforeEach(func() {
		mockRepo = newMockAllocationRepository()
		registry = newMockAssetRegistry()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		eventBus := events.NewEventBus(logger)
		service = allocation.NewService(mockRepo, registry, eventBus, logger)
		ctx = context.Background()
	})

	Describe("Allocate", func() {
		Context("when the asset is available", func() {
			It("should create an active allocation and assign the asset", func() {
				registry.add(availableAsset(1))

				result, err := service.Allocate(ctx, 99, validDTO(1, 42))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Status).To(Equal(allocation.StatusActive))
				Expect(result.EmployeeID).To(Equal(int64(42)))

				a, err := registry.Get(ctx, 1)
				Expect(err).ToNot(HaveOccurred())
				Expect(a.Status).To(Equal(asset.StatusAssigned))
				Expect(*a.CurrentAssigneeID).To(Equal(int64(42)))
			})
		})

		Context("when the asset is already assigned", func() {
			It("should return a conflict", func() {
				holder := int64(7)
				a := availableAsset(1)
				a.Status = asset.StatusAssigned
				a.CurrentAssigneeID = &holder
				registry.add(a)

				_, err := service.Allocate(ctx, 99, validDTO(1, 42))

				Expect(err).To(Equal(apperrors.ErrAssetNotAvailable))
			})
		})

		Context("when the asset is under maintenance", func() {
			It("should return a conflict", func() {
				a := availableAsset(1)
				a.Status = asset.StatusUnderMaintenance
				registry.add(a)

				_, err := service.Allocate(ctx, 99, validDTO(1, 42))

				Expect(err).To(Equal(apperrors.ErrAssetNotAvailable))
			})
		})

		Context("when the asset does not exist", func() {
			It("should return not found", func() {
				_, err := service.Allocate(ctx, 99, validDTO(1, 42))

				Expect(err).To(Equal(apperrors.ErrAssetNotFound))
			})
		})

		Context("with an invalid condition", func() {
			It("should return a validation error", func() {
				registry.add(availableAsset(1))
				dto := validDTO(1, 42)
				dto.Condition = "pristine"

				_, err := service.Allocate(ctx, 99, dto)

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
			})
		})

		Context("when two allocations race for the same asset", func() {
			It("should let exactly one win", func() {
				registry.add(availableAsset(1))

				var wg sync.WaitGroup
				results := make([]error, 2)
				for i := 0; i < 2; i++ {
					wg.Add(1)
					go func(idx int) {
						defer wg.Done()
						employeeID := int64(100 + idx)
						_, err := service.Allocate(ctx, 99, validDTO(1, employeeID))
						results[idx] = err
					}(i)
				}
				wg.Wait()

				winners := 0
				for _, err := range results {
					if err == nil {
						winners++
					} else {
						Expect(err).To(Equal(apperrors.ErrAssetNotAvailable))
					}
				}
				Expect(winners).To(Equal(1))
			})
		})

		Context("when persisting the allocation fails", func() {
			It("should release the asset again", func() {
				registry.add(availableAsset(1))
				mockRepo.createError = errors.New("connection refused")

				_, err := service.Allocate(ctx, 99, validDTO(1, 42))

				Expect(err).To(HaveOccurred())
				a, gerr := registry.Get(ctx, 1)
				Expect(gerr).ToNot(HaveOccurred())
				Expect(a.Status).To(Equal(asset.StatusAvailable))
				Expect(a.CurrentAssigneeID).To(BeNil())
			})
		})
	})

	Describe("Return", func() {
		var allocID int64

		BeforeEach(func() {
			registry.add(availableAsset(1))
			alloc, err := service.Allocate(ctx, 99, validDTO(1, 42))
			Expect(err).ToNot(HaveOccurred())
			allocID = alloc.ID
		})

		Context("when the allocation is active", func() {
			It("should close it and free the asset", func() {
				result, err := service.Return(ctx, allocID, allocation.ReturnDTO{Condition: allocation.ConditionFair})

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Status).To(Equal(allocation.StatusReturned))
				Expect(result.ReturnDate).ToNot(BeNil())
				Expect(result.Condition).To(Equal(allocation.ConditionFair))

				a, err := registry.Get(ctx, 1)
				Expect(err).ToNot(HaveOccurred())
				Expect(a.Status).To(Equal(asset.StatusAvailable))
				Expect(a.CurrentAssigneeID).To(BeNil())
			})
		})

		Context("when freeing the asset fails", func() {
			It("should reopen the allocation so the books stay consistent", func() {
				registry.setStatusError = errors.New("connection refused")

				_, err := service.Return(ctx, allocID, allocation.ReturnDTO{Condition: allocation.ConditionFair})

				Expect(err).To(HaveOccurred())
				stored, gerr := mockRepo.GetByID(allocID)
				Expect(gerr).ToNot(HaveOccurred())
				Expect(stored.Status).To(Equal(allocation.StatusActive))
				Expect(stored.ReturnDate).To(BeNil())

				// A retry once the registry recovers still goes through.
				registry.setStatusError = nil
				result, err := service.Return(ctx, allocID, allocation.ReturnDTO{Condition: allocation.ConditionFair})
				Expect(err).ToNot(HaveOccurred())
				Expect(result.Status).To(Equal(allocation.StatusReturned))
			})
		})

		Context("when the allocation was already returned", func() {
			It("should return a state error", func() {
				_, err := service.Return(ctx, allocID, allocation.ReturnDTO{Condition: allocation.ConditionGood})
				Expect(err).ToNot(HaveOccurred())

				_, err = service.Return(ctx, allocID, allocation.ReturnDTO{Condition: allocation.ConditionGood})

				Expect(err).To(Equal(apperrors.ErrAlreadyReturned))
			})
		})
	})

	Describe("Update", func() {
		It("should edit the active allocation without touching the asset", func() {
			registry.add(availableAsset(1))
			alloc, err := service.Allocate(ctx, 99, validDTO(1, 42))
			Expect(err).ToNot(HaveOccurred())

			location := "Jakarta HQ floor 3"
			result, err := service.Update(ctx, alloc.ID, allocation.UpdateDTO{Location: &location})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Location).To(Equal(location))

			a, err := registry.Get(ctx, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(a.Status).To(Equal(asset.StatusAssigned))
		})
	})
})
