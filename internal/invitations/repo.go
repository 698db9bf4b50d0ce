package invitations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// Repository exposes invitation persistence. Resolved invitations are
// deleted, so every row read here is pending.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a pending invitation.
func (r *Repository) Create(ctx context.Context, invitation *models.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

// FindByID loads an invitation.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).First(&invitation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ExistsEquivalent reports whether the same inviter already has a pending
// invitation for this user, organization, and role.
func (r *Repository) ExistsEquivalent(ctx context.Context, userID, orgID, inviterID uuid.UUID, role enums.MemberRole) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("user_id = ? AND organization_id = ? AND inviter_id = ? AND role = ?", userID, orgID, inviterID, role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the invitation row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Invitation{}, "id = ?", id).Error
}

// ListByOrganization returns the organization's pending invitations with
// invitee and inviter profiles resolved.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]OrganizationInvitationDTO, error) {
	var rows []organizationInvitationRow
	err := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Select("invitations.*, invitees.name AS invitee_name, invitees.email AS invitee_email, inviters.name AS inviter_name").
		Joins("JOIN users invitees ON invitees.id = invitations.user_id").
		Joins("JOIN users inviters ON inviters.id = invitations.inviter_id").
		Where("invitations.organization_id = ?", orgID).
		Order("invitations.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return organizationInvitationsFromRows(rows), nil
}

// ListByUser returns the user's incoming invitations with organization and
// inviter context.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]UserInvitationDTO, error) {
	var rows []userInvitationRow
	err := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Select("invitations.*, organizations.name AS organization_name, inviters.name AS inviter_name").
		Joins("JOIN organizations ON organizations.id = invitations.organization_id").
		Joins("JOIN users inviters ON inviters.id = invitations.inviter_id").
		Where("invitations.user_id = ?", userID).
		Order("invitations.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return userInvitationsFromRows(rows), nil
}
