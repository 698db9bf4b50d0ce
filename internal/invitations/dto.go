package invitations

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// InviteDTO is the request body for sending an invitation. The invitee is
// addressed by email and must already have an account.
type InviteDTO struct {
	Email string           `json:"email" validate:"required,email"`
	Role  enums.MemberRole `json:"role" validate:"required"`
}

// RespondDTO carries the invitee's decision.
type RespondDTO struct {
	Accept bool `json:"accept"`
}

// OrganizationInvitationDTO is an invitation as seen by organization
// managers.
type OrganizationInvitationDTO struct {
	ID           uuid.UUID        `json:"id"`
	InviteeID    uuid.UUID        `json:"invitee_id"`
	InviteeName  string           `json:"invitee_name"`
	InviteeEmail string           `json:"invitee_email"`
	InviterName  string           `json:"inviter_name"`
	Role         enums.MemberRole `json:"role"`
	CreatedAt    time.Time        `json:"created_at"`
}

type organizationInvitationRow struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	InviteeName  string
	InviteeEmail string
	InviterName  string
	Role         enums.MemberRole
	CreatedAt    time.Time
}

func organizationInvitationsFromRows(rows []organizationInvitationRow) []OrganizationInvitationDTO {
	out := make([]OrganizationInvitationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, OrganizationInvitationDTO{
			ID:           row.ID,
			InviteeID:    row.UserID,
			InviteeName:  row.InviteeName,
			InviteeEmail: row.InviteeEmail,
			InviterName:  row.InviterName,
			Role:         row.Role,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out
}

// UserInvitationDTO is an invitation as seen by its invitee.
type UserInvitationDTO struct {
	ID               uuid.UUID        `json:"id"`
	OrganizationID   uuid.UUID        `json:"organization_id"`
	OrganizationName string           `json:"organization_name"`
	InviterName      string           `json:"inviter_name"`
	Role             enums.MemberRole `json:"role"`
	CreatedAt        time.Time        `json:"created_at"`
}

type userInvitationRow struct {
	ID               uuid.UUID
	OrganizationID   uuid.UUID
	OrganizationName string
	InviterName      string
	Role             enums.MemberRole
	CreatedAt        time.Time
}

func userInvitationsFromRows(rows []userInvitationRow) []UserInvitationDTO {
	out := make([]UserInvitationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, UserInvitationDTO{
			ID:               row.ID,
			OrganizationID:   row.OrganizationID,
			OrganizationName: row.OrganizationName,
			InviterName:      row.InviterName,
			Role:             row.Role,
			CreatedAt:        row.CreatedAt,
		})
	}
	return out
}
