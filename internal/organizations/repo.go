package organizations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmoreau/gatherly-backend/pkg/db/models"
)

// Repository exposes organization persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new organization row.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

// FindByID loads an organization.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Update applies a partial update to the organization's mutable columns.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Organization, error) {
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.Organization{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, id)
}

// DeleteCascade removes the organization and everything scoped under it:
// tickets of its events, the events, pending invitations, memberships, and
// finally the organization row. Runs inside the caller's transaction.
func (r *Repository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)

	eventIDs := tx.Model(&models.Event{}).Select("id").Where("organization_id = ?", id)
	if err := tx.Where("event_id IN (?)", eventIDs).Delete(&models.Ticket{}).Error; err != nil {
		return err
	}
	if err := tx.Where("organization_id = ?", id).Delete(&models.Event{}).Error; err != nil {
		return err
	}
	if err := tx.Where("organization_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
		return err
	}
	if err := tx.Where("organization_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Organization{}, "id = ?", id).Error
}
