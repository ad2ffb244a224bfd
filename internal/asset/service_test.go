package asset_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/core/events"
)

func TestAssetService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Asset Service Suite")
}

// Mock repository for testing
type mockAssetRepository struct {
	assets      map[int64]*asset.Asset
	createError error
	getError    error
	updateError error
	casError    error
	nextID      int64
}

func newMockAssetRepository() *mockAssetRepository {
	return &mockAssetRepository{
		assets: make(map[int64]*asset.Asset),
		nextID: 1,
	}
}

func (m *mockAssetRepository) Create(a *asset.Asset) error {
	if m.createError != nil {
		return m.createError
	}
	a.ID = m.nextID
	m.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.assets[a.ID] = a
	return nil
}

func (m *mockAssetRepository) GetByID(id int64) (*asset.Asset, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	a, exists := m.assets[id]
	if !exists {
		return nil, apperrors.ErrAssetNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAssetRepository) GetByTag(tag string) (*asset.Asset, error) {
	for _, a := range m.assets {
		if a.AssetTag == tag {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperrors.ErrAssetNotFound
}

func (m *mockAssetRepository) List(filter asset.ListFilter) ([]*asset.Asset, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	result := make([]*asset.Asset, 0)
	for _, a := range m.assets {
		result = append(result, a)
	}
	return result, nil
}

func (m *mockAssetRepository) Update(a *asset.Asset) error {
	if m.updateError != nil {
		return m.updateError
	}
	a.UpdatedAt = time.Now()
	m.assets[a.ID] = a
	return nil
}

// UpdateStatusIf mirrors the conditional update in the real repository: it
// succeeds only while the stored status still matches the expectation.
func (m *mockAssetRepository) UpdateStatusIf(id int64, expectedStatus, newStatus string, assigneeID *int64) (bool, error) {
	if m.casError != nil {
		return false, m.casError
	}
	a, exists := m.assets[id]
	if !exists || a.Status != expectedStatus {
		return false, nil
	}
	a.Status = newStatus
	a.CurrentAssigneeID = assigneeID
	a.UpdatedAt = time.Now()
	return true, nil
}

var _ = Describe("AssetService", func() {
	var (
		service  *asset.Service
		mockRepo *mockAssetRepository
		logger   *slog.Logger
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockAssetRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		eventBus := events.NewEventBus(logger)
		service = asset.NewService(mockRepo, eventBus, logger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		Context("with a valid payload", func() {
			It("should register the asset as available", func() {
				dto := asset.CreateAssetDTO{
					AssetTag: "LT-0001",
					Name:     "ThinkPad X1",
					Category: "laptop",
				}

				result, err := service.Create(ctx, 1, dto)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.ID).To(BeNumerically(">", 0))
				Expect(result.Status).To(Equal(asset.StatusAvailable))
				Expect(result.CurrentAssigneeID).To(BeNil())
			})
		})

		Context("with a missing tag", func() {
			It("should return a validation error", func() {
				dto := asset.CreateAssetDTO{
					Name:     "ThinkPad X1",
					Category: "laptop",
				}

				_, err := service.Create(ctx, 1, dto)

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
			})
		})

		Context("when the repository fails", func() {
			It("should wrap the error as a storage error", func() {
				mockRepo.createError = errors.New("connection refused")
				dto := asset.CreateAssetDTO{
					AssetTag: "LT-0001",
					Name:     "ThinkPad X1",
					Category: "laptop",
				}

				_, err := service.Create(ctx, 1, dto)

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeStorage))
			})
		})
	})

	Describe("SetStatus", func() {
		var assetID int64

		BeforeEach(func() {
			created, err := service.Create(ctx, 1, asset.CreateAssetDTO{
				AssetTag: "LT-0001",
				Name:     "ThinkPad X1",
				Category: "laptop",
			})
			Expect(err).ToNot(HaveOccurred())
			assetID = created.ID
		})

		Context("assigning with an assignee", func() {
			It("should move the asset to assigned and record the holder", func() {
				employeeID := int64(42)

				result, err := service.SetStatus(ctx, assetID, asset.StatusAssigned, &employeeID)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Status).To(Equal(asset.StatusAssigned))
				Expect(result.CurrentAssigneeID).ToNot(BeNil())
				Expect(*result.CurrentAssigneeID).To(Equal(employeeID))
			})
		})

		Context("assigning without an assignee", func() {
			It("should reject the change", func() {
				_, err := service.SetStatus(ctx, assetID, asset.StatusAssigned, nil)

				Expect(err).To(Equal(apperrors.ErrAssigneeRequired))
			})
		})

		Context("setting a non-assigned status with an assignee", func() {
			It("should reject the change", func() {
				employeeID := int64(42)

				_, err := service.SetStatus(ctx, assetID, asset.StatusUnderMaintenance, &employeeID)

				Expect(err).To(Equal(apperrors.ErrAssigneeNotAllowed))
			})
		})

		Context("with an unknown status", func() {
			It("should return a validation error", func() {
				_, err := service.SetStatus(ctx, assetID, "lost", nil)

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeValidation))
			})
		})

		Context("with an illegal transition", func() {
			It("should return a conflict", func() {
				_, err := service.SetStatus(ctx, assetID, asset.StatusRetired, nil)
				Expect(err).ToNot(HaveOccurred())

				_, err = service.SetStatus(ctx, assetID, asset.StatusAvailable, nil)

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeConflict))
			})
		})

		Context("when a concurrent writer changed the status first", func() {
			It("should return a conflict instead of overwriting", func() {
				employeeID := int64(42)
				// Sneak a status change underneath the service's read.
				mockRepo.assets[assetID].Status = asset.StatusUnderMaintenance

				_, err := service.SetStatus(ctx, assetID, asset.StatusAssigned, &employeeID)

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeConflict))
			})
		})
	})

	Describe("Retire", func() {
		var assetID int64

		BeforeEach(func() {
			created, err := service.Create(ctx, 1, asset.CreateAssetDTO{
				AssetTag: "LT-0001",
				Name:     "ThinkPad X1",
				Category: "laptop",
			})
			Expect(err).ToNot(HaveOccurred())
			assetID = created.ID
		})

		Context("when the asset is available", func() {
			It("should retire it", func() {
				result, err := service.Retire(ctx, 1, assetID)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Status).To(Equal(asset.StatusRetired))
			})
		})

		Context("when the asset is assigned", func() {
			It("should refuse to retire it", func() {
				employeeID := int64(42)
				_, err := service.SetStatus(ctx, assetID, asset.StatusAssigned, &employeeID)
				Expect(err).ToNot(HaveOccurred())

				_, err = service.Retire(ctx, 1, assetID)

				Expect(err).To(Equal(apperrors.ErrAssetStillAssigned))
			})
		})

		Context("when the asset is already retired", func() {
			It("should return a state error", func() {
				_, err := service.Retire(ctx, 1, assetID)
				Expect(err).ToNot(HaveOccurred())

				_, err = service.Retire(ctx, 1, assetID)

				Expect(err).To(HaveOccurred())
				appErr, ok := apperrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(apperrors.ErrorTypeState))
			})
		})
	})

	Describe("Update", func() {
		It("should only change the provided fields", func() {
			created, err := service.Create(ctx, 1, asset.CreateAssetDTO{
				AssetTag: "LT-0001",
				Name:     "ThinkPad X1",
				Category: "laptop",
				Brand:    "Lenovo",
			})
			Expect(err).ToNot(HaveOccurred())

			newName := "ThinkPad X1 Carbon"
			result, err := service.Update(ctx, created.ID, asset.UpdateAssetDTO{Name: &newName})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Name).To(Equal(newName))
			Expect(result.Brand).To(Equal("Lenovo"))
			Expect(result.AssetTag).To(Equal("LT-0001"))
		})
	})
})
