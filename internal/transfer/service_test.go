package transfer_test

import (
	"context"
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
	"github.com/frahmantamala/asset-management/internal/transfer"
)

func TestTransferService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transfer Service Suite")
}

// Mock repository for testing
type mockTransferRepository struct {
	mu          sync.Mutex
	transfers   map[int64]*transfer.Transfer
	nextID      int64
	casConflict bool
}

func newMockTransferRepository() *mockTransferRepository {
	return &mockTransferRepository{
		transfers: make(map[int64]*transfer.Transfer),
		nextID:    1,
	}
}

func (m *mockTransferRepository) Create(t *transfer.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID
	m.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	copied := *t
	m.transfers[t.ID] = &copied
	return nil
}

func (m *mockTransferRepository) GetByID(id int64) (*transfer.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, exists := m.transfers[id]
	if !exists {
		return nil, apperrors.ErrTransferNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockTransferRepository) List(filter transfer.ListFilter) ([]*transfer.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*transfer.Transfer, 0)
	for _, t := range m.transfers {
		result = append(result, t)
	}
	return result, nil
}

// UpdateStatusIf applies the transition only while the stored status still
// matches, the same contract as the real conditional update.
func (m *mockTransferRepository) UpdateStatusIf(id int64, expectedStatus, newStatus, rejectReason string, completedAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.casConflict {
		return false, nil
	}
	t, exists := m.transfers[id]
	if !exists || t.Status != expectedStatus {
		return false, nil
	}
	t.Status = newStatus
	if rejectReason != "" {
		t.RejectReason = rejectReason
	}
	t.CompletedAt = completedAt
	t.UpdatedAt = time.Now()
	return true, nil
}

type mockAssetRegistry struct {
	mu             sync.Mutex
	assets         map[int64]*asset.Asset
	setStatusCalls int
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
	m.setStatusCalls++
	if m.setStatusError != nil {
		return nil, m.setStatusError
	}
	a, exists := m.assets[id]
	if !exists {
		return nil, apperrors.ErrAssetNotFound
	}
	a.Status = status
	a.CurrentAssigneeID = assigneeID
	copied := *a
	return &copied, nil
}

// mockAllocationManager records close/open calls so completion side effects
// can be asserted.
type mockAllocationManager struct {
	mu          sync.Mutex
	active      map[int64]*allocation.Allocation
	closedIDs   []int64
	opened      []*allocation.Allocation
	nextAllocID int64
}

func newMockAllocationManager() *mockAllocationManager {
	return &mockAllocationManager{
		active:      make(map[int64]*allocation.Allocation),
		nextAllocID: 1000,
	}
}

func (m *mockAllocationManager) addActive(assetID, employeeID int64) *allocation.Allocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	alloc := &allocation.Allocation{
		ID:         m.nextAllocID,
		AssetID:    assetID,
		EmployeeID: employeeID,
		Status:     allocation.StatusActive,
	}
	m.nextAllocID++
	m.active[assetID] = alloc
	return alloc
}

func (m *mockAllocationManager) ActiveForAsset(ctx context.Context, assetID int64) (*allocation.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	alloc, exists := m.active[assetID]
	if !exists {
		return nil, apperrors.ErrAllocationNotFound
	}
	return alloc, nil
}

func (m *mockAllocationManager) CloseForTransfer(ctx context.Context, allocationID int64, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closedIDs = append(m.closedIDs, allocationID)
	for assetID, alloc := range m.active {
		if alloc.ID == allocationID {
			delete(m.active, assetID)
		}
	}
	return nil
}

func (m *mockAllocationManager) OpenForTransfer(ctx context.Context, assetID, employeeID int64, notes string) (*allocation.Allocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	alloc := &allocation.Allocation{
		ID:         m.nextAllocID,
		AssetID:    assetID,
		EmployeeID: employeeID,
		Status:     allocation.StatusActive,
	}
	m.nextAllocID++
	m.active[assetID] = alloc
	m.opened = append(m.opened, alloc)
	return alloc, nil
}

var _ = Describe("TransferService", func() {
	var (
		service     *transfer.Service
		mockRepo    *mockTransferRepository
		registry    *mockAssetRegistry
		allocations *mockAllocationManager
		logger      *slog.Logger
		ctx         context.Context
	)

	const (
		holderID    = int64(10)
		recipientID = int64(20)
		outsiderID  = int64(30)
	)

	heldAsset := func(id int64) *asset.Asset {
		holder := holderID
		return &asset.Asset{
			ID:                id,
			AssetTag:          "LT-0001",
			Name:              "ThinkPad X1",
			Category:          "laptop",
			Status:            asset.StatusAssigned,
			CurrentAssigneeID: &holder,
		}
	}

	BeforeEach(func() {
		mockRepo = newMockTransferRepository()
		registry = newMockAssetRegistry()
		allocations = newMockAllocationManager()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		eventBus := events.NewEventBus(logger)
		service = transfer.NewService(mockRepo, registry, allocations, eventBus, logger)
		ctx = context.Background()
	})

	Describe("Initiate", func() {
		Context("for a held asset", func() {
			It("should open a pending transfer requiring both parties", func() {
				registry.add(heldAsset(1))

				result, err := service.Initiate(ctx, holderID, transfer.InitiateDTO{AssetID: 1, ToEmployeeID: recipientID})

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Status).To(Equal(transfer.StatusPending))
				Expect(result.FromEmployeeID).ToNot(BeNil())
				Expect(*result.FromEmployeeID).To(Equal(holderID))
				Expect(result.NeedsFromApproval()).To(BeTrue())
			})
		})

		Context("for an unheld asset", func() {
			It("should open a transfer with no from-side", func() {
				a := heldAsset(1)
				a.Status = asset.StatusAvailable
				a.CurrentAssigneeID = nil
				registry.add(a)

				result, err := service.Initiate(ctx, outsiderID, transfer.InitiateDTO{AssetID: 1, ToEmployeeID: recipientID})

				Expect(err).ToNot(HaveOccurred())
				Expect(result.FromEmployeeID).To(BeNil())
				Expect(result.NeedsFromApproval()).To(BeFalse())
			})
		})

		Context("for a retired asset", func() {
			It("should return a conflict", func() {
				a := heldAsset(1)
				a.Status = asset.StatusRetired
				a.CurrentAssigneeID = nil
				registry.add(a)

				_, err := service.Initiate(ctx, holderID, transfer.InitiateDTO{AssetID: 1, ToEmployeeID: recipientID})

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeConflict))
			})
		})

		Context("when the recipient already holds the asset", func() {
			It("should reject the transfer", func() {
				a := heldAsset(1)
				holder := int64(recipientID)
				a.CurrentAssigneeID = &holder
				registry.add(a)

				_, err := service.Initiate(ctx, holderID, transfer.InitiateDTO{AssetID: 1, ToEmployeeID: recipientID})

				Expect(err).To(Equal(apperrors.ErrSameHolder))
			})
		})
	})

	Describe("Approve", func() {
		var transferID int64

		BeforeEach(func() {
			registry.add(heldAsset(1))
			allocations.addActive(1, holderID)
			t, err := service.Initiate(ctx, holderID, transfer.InitiateDTO{AssetID: 1, ToEmployeeID: recipientID})
			Expect(err).ToNot(HaveOccurred())
			transferID = t.ID
		})

		Context("when the holder approves first", func() {
			It("should record a partial approval", func() {
				result, err := service.Approve(ctx, transferID, holderID)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Status).To(Equal(transfer.StatusApprovedByFrom))
			})
		})

		Context("when both parties approve", func() {
			It("should complete: reassign the asset, close the old allocation and open a new one", func() {
				priorAlloc, err := allocations.ActiveForAsset(ctx, 1)
				Expect(err).ToNot(HaveOccurred())

				_, err = service.Approve(ctx, transferID, holderID)
				Expect(err).ToNot(HaveOccurred())

				result, err := service.Approve(ctx, transferID, recipientID)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Status).To(Equal(transfer.StatusCompleted))
				Expect(result.CompletedAt).ToNot(BeNil())

				a, err := registry.Get(ctx, 1)
				Expect(err).ToNot(HaveOccurred())
				Expect(a.Status).To(Equal(asset.StatusAssigned))
				Expect(*a.CurrentAssigneeID).To(Equal(recipientID))

				Expect(allocations.closedIDs).To(ContainElement(priorAlloc.ID))
				Expect(allocations.opened).To(HaveLen(1))
				Expect(allocations.opened[0].EmployeeID).To(Equal(recipientID))
				Expect(allocations.opened[0].Status).To(Equal(allocation.StatusActive))
			})
		})

		Context("when a concurrent writer advances the transfer between read and write", func() {
			It("should return a conflict without touching the asset or allocations", func() {
				_, err := service.Approve(ctx, transferID, holderID)
				Expect(err).ToNot(HaveOccurred())

				mockRepo.casConflict = true
				_, err = service.Approve(ctx, transferID, recipientID)

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeConflict))

				Expect(registry.setStatusCalls).To(Equal(0))
				Expect(allocations.closedIDs).To(BeEmpty())
				Expect(allocations.opened).To(BeEmpty())

				a, err := registry.Get(ctx, 1)
				Expect(err).ToNot(HaveOccurred())
				Expect(a.Status).To(Equal(asset.StatusAssigned))
				Expect(*a.CurrentAssigneeID).To(Equal(holderID))
			})
		})

		Context("when the asset reassignment fails", func() {
			It("should roll the transfer back so approval can be retried", func() {
				_, err := service.Approve(ctx, transferID, holderID)
				Expect(err).ToNot(HaveOccurred())

				registry.setStatusError = apperrors.NewStorageError("asset write failed", nil)
				_, err = service.Approve(ctx, transferID, recipientID)
				Expect(err).To(HaveOccurred())

				stored, err := mockRepo.GetByID(transferID)
				Expect(err).ToNot(HaveOccurred())
				Expect(stored.Status).To(Equal(transfer.StatusApprovedByFrom))
				Expect(stored.CompletedAt).To(BeNil())
				Expect(allocations.closedIDs).To(BeEmpty())
				Expect(allocations.opened).To(BeEmpty())
			})
		})

		Context("when the same side approves twice", func() {
			It("should return a state error", func() {
				_, err := service.Approve(ctx, transferID, holderID)
				Expect(err).ToNot(HaveOccurred())

				_, err = service.Approve(ctx, transferID, holderID)

				Expect(err).To(Equal(apperrors.ErrAlreadyApproved))
			})
		})

		Context("when an outsider approves", func() {
			It("should refuse", func() {
				_, err := service.Approve(ctx, transferID, outsiderID)

				Expect(err).To(Equal(apperrors.ErrNotAnApprover))
			})
		})

		Context("when the transfer is already terminal", func() {
			It("should return a state error", func() {
				_, err := service.Reject(ctx, transferID, recipientID, transfer.RejectDTO{Reason: "wrong asset"})
				Expect(err).ToNot(HaveOccurred())

				_, err = service.Approve(ctx, transferID, holderID)

				Expect(err).To(Equal(apperrors.ErrTransferTerminal))
			})
		})
	})

	Describe("Approve without a holder", func() {
		It("should complete on the recipient's single approval", func() {
			a := heldAsset(1)
			a.Status = asset.StatusAvailable
			a.CurrentAssigneeID = nil
			registry.add(a)
			t, err := service.Initiate(ctx, outsiderID, transfer.InitiateDTO{AssetID: 1, ToEmployeeID: recipientID})
			Expect(err).ToNot(HaveOccurred())

			result, err := service.Approve(ctx, t.ID, recipientID)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(transfer.StatusCompleted))
			// No prior holder means nothing to close.
			Expect(allocations.closedIDs).To(BeEmpty())
			Expect(allocations.opened).To(HaveLen(1))
		})
	})

	Describe("Reject", func() {
		var transferID int64

		BeforeEach(func() {
			registry.add(heldAsset(1))
			t, err := service.Initiate(ctx, holderID, transfer.InitiateDTO{AssetID: 1, ToEmployeeID: recipientID})
			Expect(err).ToNot(HaveOccurred())
			transferID = t.ID
		})

		It("should let either party reject with a reason", func() {
			result, err := service.Reject(ctx, transferID, holderID, transfer.RejectDTO{Reason: "still needed"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(transfer.StatusRejected))
			Expect(result.RejectReason).To(Equal("still needed"))
		})

		It("should require a reason", func() {
			_, err := service.Reject(ctx, transferID, holderID, transfer.RejectDTO{})

			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
		})

		It("should refuse an outsider", func() {
			_, err := service.Reject(ctx, transferID, outsiderID, transfer.RejectDTO{Reason: "nope"})

			Expect(err).To(Equal(apperrors.ErrNotAnApprover))
		})

		It("should refuse once the transfer is terminal", func() {
			_, err := service.Reject(ctx, transferID, holderID, transfer.RejectDTO{Reason: "still needed"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Reject(ctx, transferID, recipientID, transfer.RejectDTO{Reason: "me too"})

			Expect(err).To(Equal(apperrors.ErrTransferTerminal))
		})

		It("should leave the asset with its current holder", func() {
			_, err := service.Reject(ctx, transferID, recipientID, transfer.RejectDTO{Reason: "wrong person"})
			Expect(err).ToNot(HaveOccurred())

			a, err := registry.Get(ctx, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(a.Status).To(Equal(asset.StatusAssigned))
			Expect(*a.CurrentAssigneeID).To(Equal(holderID))
		})
	})
})
