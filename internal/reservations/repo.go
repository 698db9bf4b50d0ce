package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// Repository exposes the persistence surface of public booking.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindBookableEvent loads an event only when it is still open to the
// public: scheduled and not yet started. Booking closes at the start date.
// Anything else is invisible here.
func (r *Repository) FindBookableEvent(ctx context.Context, eventID uuid.UUID, now time.Time) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ? AND start_date > ?", eventID, enums.EventStatusScheduled, now).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// CountTickets returns the number of tickets already issued for the event.
func (r *Repository) CountTickets(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}

// HasTicketForEmail reports whether the email already holds a ticket.
func (r *Repository) HasTicketForEmail(ctx context.Context, eventID uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("event_id = ? AND owner_email = ?", eventID, email).
		Count(&count).Error
	return count > 0, err
}

// CreateTicket issues a ticket. The unique (event, email) index backstops
// the duplicate check under concurrency.
func (r *Repository) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

// OrganizationName resolves the host organization's display name for the
// public event page.
func (r *Repository) OrganizationName(ctx context.Context, orgID uuid.UUID) (string, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).
		Select("name").
		First(&org, "id = ?", orgID).Error
	if err != nil {
		return "", err
	}
	return org.Name, nil
}
