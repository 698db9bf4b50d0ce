package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// Event is an organization's bookable happening. A nil Location means the
// event is online; MaxTickets == 0 means unlimited capacity.
type Event struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID         `gorm:"column:organization_id;type:uuid;not null;index"`
	Name           string            `gorm:"column:name;not null"`
	Description    *string           `gorm:"column:description"`
	Location       *string           `gorm:"column:location"`
	StartDate      time.Time         `gorm:"column:start_date;not null"`
	EndDate        time.Time         `gorm:"column:end_date;not null"`
	MaxTickets     int               `gorm:"column:max_tickets;not null;default:0"`
	Price          decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null;default:0"`
	Tags           pq.StringArray    `gorm:"column:tags;type:text[]"`
	Status         enums.EventStatus `gorm:"column:status;type:text;not null;default:'scheduled'"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
