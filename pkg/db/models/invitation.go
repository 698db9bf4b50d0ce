package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// Invitation is a pending grant of future membership. Accepting or rejecting
// deletes the row, so a persisted invitation is always pending.
type Invitation struct {
	ID             uuid.UUID              `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	InviterID      uuid.UUID              `gorm:"column:inviter_id;type:uuid;not null"`
	OrganizationID uuid.UUID              `gorm:"column:organization_id;type:uuid;not null;index"`
	Role           enums.MemberRole       `gorm:"column:role;type:text;not null"`
	Status         enums.InvitationStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
