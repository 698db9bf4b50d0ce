package organizations

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// CreateOrganizationDTO is the request body for organization creation.
type CreateOrganizationDTO struct {
	Name         string  `json:"name" validate:"required,min=2,max=120"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
	WebsiteURL   *string `json:"website_url" validate:"omitempty,url"`
}

// UpdateOrganizationDTO carries a partial update; nil fields are untouched.
type UpdateOrganizationDTO struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=120"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
	WebsiteURL   *string `json:"website_url" validate:"omitempty,url"`
}

func (d UpdateOrganizationDTO) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if d.Name != nil {
		updates["name"] = *d.Name
	}
	if d.ContactEmail != nil {
		updates["contact_email"] = *d.ContactEmail
	}
	if d.Description != nil {
		updates["description"] = *d.Description
	}
	if d.LogoURL != nil {
		updates["logo_url"] = *d.LogoURL
	}
	if d.WebsiteURL != nil {
		updates["website_url"] = *d.WebsiteURL
	}
	return updates
}

// ChangeRoleDTO is the request body for a member role change.
type ChangeRoleDTO struct {
	Role enums.MemberRole `json:"role" validate:"required"`
}

// OrganizationDTO is the transport shape for an organization.
type OrganizationDTO struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	OwnerID      uuid.UUID         `json:"owner_id"`
	ContactEmail *string           `json:"contact_email,omitempty"`
	Description  *string           `json:"description,omitempty"`
	LogoURL      *string           `json:"logo_url,omitempty"`
	WebsiteURL   *string           `json:"website_url,omitempty"`
	Role         *enums.MemberRole `json:"role,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ToDTO converts a model, optionally annotated with the caller's role.
func ToDTO(org *models.Organization, role *enums.MemberRole) *OrganizationDTO {
	if org == nil {
		return nil
	}
	return &OrganizationDTO{
		ID:           org.ID,
		Name:         org.Name,
		OwnerID:      org.OwnerID,
		ContactEmail: org.ContactEmail,
		Description:  org.Description,
		LogoURL:      org.LogoURL,
		WebsiteURL:   org.WebsiteURL,
		Role:         role,
		CreatedAt:    org.CreatedAt,
	}
}
