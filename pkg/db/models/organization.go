package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant boundary. OwnerID is set at creation and never
// reassigned; the owner always also holds the creator membership.
type Organization struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	OwnerID      uuid.UUID `gorm:"column:owner_id;type:uuid;not null"`
	ContactEmail *string   `gorm:"column:contact_email"`
	Description  *string   `gorm:"column:description"`
	LogoURL      *string   `gorm:"column:logo_url"`
	WebsiteURL   *string   `gorm:"column:website_url"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
