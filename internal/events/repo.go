package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmoreau/gatherly-backend/pkg/db/models"
)

// Repository exposes event and ticket persistence scoped to organizations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an event row.
func (r *Repository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindInOrganization loads an event only when it belongs to the given
// organization, so handlers cannot cross tenant boundaries by ID guessing.
func (r *Repository) FindInOrganization(ctx context.Context, orgID, eventID uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", eventID, orgID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListByOrganization returns the organization's events, soonest first.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("start_date").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Update applies a partial update and returns the fresh row.
func (r *Repository) Update(ctx context.Context, orgID, eventID uuid.UUID, updates map[string]interface{}) (*models.Event, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.Event{}).
			Where("id = ? AND organization_id = ?", eventID, orgID).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindInOrganization(ctx, orgID, eventID)
}

// Delete removes the event and its tickets. Runs inside the caller's
// transaction.
func (r *Repository) Delete(ctx context.Context, orgID, eventID uuid.UUID) error {
	tx := r.db.WithContext(ctx)

	result := tx.Where("id = ? AND organization_id = ?", eventID, orgID).Delete(&models.Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return tx.Where("event_id = ?", eventID).Delete(&models.Ticket{}).Error
}

// ListTickets returns the tickets issued for an event.
func (r *Repository) ListTickets(ctx context.Context, eventID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// CountTickets returns the number of issued tickets for an event.
func (r *Repository) CountTickets(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}
