package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// Membership links a user with an organization and carries their role.
// The (user_id, organization_id) pair is unique; the composite index is the
// final backstop against concurrent duplicate grants.
type Membership struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_memberships_user_org"`
	OrganizationID uuid.UUID        `gorm:"column:organization_id;type:uuid;not null;uniqueIndex:idx_memberships_user_org"`
	Role           enums.MemberRole `gorm:"column:role;type:text;not null"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
