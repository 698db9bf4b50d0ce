package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// Repository exposes membership persistence operations. Constructed over a
// transaction handle, its reads and writes share that transaction scope, so
// authorization checks and the mutation they guard never straddle
// transactions.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetRole returns the role a user holds in an organization, or
// gorm.ErrRecordNotFound when the user is not a member.
func (r *Repository) GetRole(ctx context.Context, userID, orgID uuid.UUID) (enums.MemberRole, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Select("role").
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&membership).Error
	if err != nil {
		return "", err
	}
	return membership.Role, nil
}

// Get retrieves the full membership row for a user and organization.
func (r *Repository) Get(ctx context.Context, userID, orgID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// Create persists a new membership record. A duplicate (user, organization)
// pair surfaces as gorm.ErrDuplicatedKey for the caller to translate.
func (r *Repository) Create(ctx context.Context, userID, orgID uuid.UUID, role enums.MemberRole) (*models.Membership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}

	membership := &models.Membership{
		ID:             uuid.New(),
		UserID:         userID,
		OrganizationID: orgID,
		Role:           role,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// UpdateRole rewrites the role on an existing membership. Only the role
// transitions validated by the authorization engine reach this method.
func (r *Repository) UpdateRole(ctx context.Context, userID, orgID uuid.UUID, role enums.MemberRole) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid member role %q", role)
	}
	result := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the membership for a user and organization.
func (r *Repository) Delete(ctx context.Context, userID, orgID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Delete(&models.Membership{}).Error
}

// DeleteByOrganization removes every membership of an organization. Used by
// the organization-deletion cascade.
func (r *Repository) DeleteByOrganization(ctx context.Context, orgID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Delete(&models.Membership{}).Error
}

// ListMembers returns memberships for the organization along with user
// metadata, resolved by an explicit join.
func (r *Repository) ListMembers(ctx context.Context, orgID uuid.UUID) ([]MemberDTO, error) {
	var rows []memberRow
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Select("memberships.*, users.name, users.email, users.avatar_url").
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.organization_id = ?", orgID).
		Order("memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return membersFromRows(rows), nil
}

// ListOrganizations returns the organizations a user belongs to along with
// the role held in each.
func (r *Repository) ListOrganizations(ctx context.Context, userID uuid.UUID) ([]OrganizationWithRole, error) {
	var rows []organizationWithRoleRow
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Select("organizations.*, memberships.role").
		Joins("JOIN organizations ON organizations.id = memberships.organization_id").
		Where("memberships.user_id = ?", userID).
		Order("organizations.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return organizationsFromRows(rows), nil
}

// GetOrganizationForMember resolves an organization through the actor's own
// membership join; absence of either hides the organization entirely.
func (r *Repository) GetOrganizationForMember(ctx context.Context, userID, orgID uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Joins("JOIN memberships ON memberships.organization_id = organizations.id").
		Where("memberships.user_id = ? AND organizations.id = ?", userID, orgID).
		First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}
