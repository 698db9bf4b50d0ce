package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// Ticket is an issued reservation for an event. One ticket per
// (event, attendee email); the ticket id doubles as the scan token.
type Ticket struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey"`
	EventID    uuid.UUID          `gorm:"column:event_id;type:uuid;not null;uniqueIndex:idx_tickets_event_email"`
	OwnerEmail string             `gorm:"column:owner_email;not null;uniqueIndex:idx_tickets_event_email"`
	OwnerName  string             `gorm:"column:owner_name;not null"`
	Status     enums.TicketStatus `gorm:"column:status;type:text;not null;default:'accepted'"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
