package postgres

import (
	"time"

	internal "github.com/frahmantamala/asset-management/internal"
	ticketDatamodel "github.com/frahmantamala/asset-management/internal/core/datamodel/ticket"
	"github.com/frahmantamala/asset-management/internal/ticket"
	"gorm.io/gorm"
)

// TicketRepository implements the ticket.Repository interface using GORM
type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) ticket.Repository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(t *ticket.Ticket) error {
	dm := ticket.ToDataModel(t)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	t.ID = dm.ID
	t.CreatedAt = dm.CreatedAt
	t.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *TicketRepository) GetByID(id int64) (*ticket.Ticket, error) {
	var dm ticketDatamodel.Ticket
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTicketNotFound
		}
		return nil, internal.NewStorageError("failed to load ticket", err)
	}
	return ticket.FromDataModel(&dm), nil
}

func (r *TicketRepository) List(filter ticket.ListFilter) ([]*ticket.Ticket, error) {
	var dms []*ticketDatamodel.Ticket

	q := r.db.Model(&ticketDatamodel.Ticket{})
	if filter.AssetID != 0 {
		q = q.Where("asset_id = ?", filter.AssetID)
	}
	if filter.ReporterID != 0 {
		q = q.Where("reporter_id = ?", filter.ReporterID)
	}
	if filter.AssigneeID != 0 {
		q = q.Where("assignee_id = ?", filter.AssigneeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}

	err := q.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]*ticket.Ticket, len(dms))
	for i, dm := range dms {
		result[i] = ticket.FromDataModel(dm)
	}
	return result, nil
}

func (r *TicketRepository) Update(t *ticket.Ticket) error {
	t.UpdatedAt = time.Now()
	return r.db.Model(&ticketDatamodel.Ticket{}).
		Where("id = ?", t.ID).
		Updates(map[string]interface{}{
			"status":      t.Status,
			"priority":    t.Priority,
			"assignee_id": t.AssigneeID,
			"resolution":  t.Resolution,
			"resolved_at": t.ResolvedAt,
			"updated_at":  t.UpdatedAt,
		}).Error
}

// UpdateStatusIf cancels (or otherwise flips) a ticket only while its status
// still matches. Returns false when the row moved on already.
func (r *TicketRepository) UpdateStatusIf(id int64, expectedStatus, newStatus string, cancelledAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     newStatus,
		"updated_at": time.Now(),
	}
	if cancelledAt != nil {
		updates["cancelled_at"] = cancelledAt
	}
	res := r.db.Model(&ticketDatamodel.Ticket{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
