package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// MemberDTO describes a member of an organization: the membership row
// enriched with the user's profile fields.
type MemberDTO struct {
	UserID    uuid.UUID        `json:"user_id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	AvatarURL *string          `json:"avatar_url,omitempty"`
	Role      enums.MemberRole `json:"role"`
	JoinedAt  time.Time        `json:"joined_at"`
}

type memberRow struct {
	UserID    uuid.UUID
	Name      string
	Email     string
	AvatarURL *string
	Role      enums.MemberRole
	CreatedAt time.Time
}

func membersFromRows(rows []memberRow) []MemberDTO {
	members := make([]MemberDTO, 0, len(rows))
	for _, row := range rows {
		members = append(members, MemberDTO{
			UserID:    row.UserID,
			Name:      row.Name,
			Email:     row.Email,
			AvatarURL: row.AvatarURL,
			Role:      row.Role,
			JoinedAt:  row.CreatedAt,
		})
	}
	return members
}

// OrganizationWithRole pairs an organization with the role the requesting
// user holds in it.
type OrganizationWithRole struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	ContactEmail *string          `json:"contact_email,omitempty"`
	Description  *string          `json:"description,omitempty"`
	LogoURL      *string          `json:"logo_url,omitempty"`
	WebsiteURL   *string          `json:"website_url,omitempty"`
	Role         enums.MemberRole `json:"role"`
	CreatedAt    time.Time        `json:"created_at"`
}

type organizationWithRoleRow struct {
	ID           uuid.UUID
	Name         string
	ContactEmail *string
	Description  *string
	LogoURL      *string
	WebsiteURL   *string
	Role         enums.MemberRole
	CreatedAt    time.Time
}

func organizationsFromRows(rows []organizationWithRoleRow) []OrganizationWithRole {
	orgs := make([]OrganizationWithRole, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, OrganizationWithRole{
			ID:           row.ID,
			Name:         row.Name,
			ContactEmail: row.ContactEmail,
			Description:  row.Description,
			LogoURL:      row.LogoURL,
			WebsiteURL:   row.WebsiteURL,
			Role:         row.Role,
			CreatedAt:    row.CreatedAt,
		})
	}
	return orgs
}
