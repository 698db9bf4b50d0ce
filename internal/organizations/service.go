// Package organizations implements the tenant lifecycle and the member
// management operations guarded by the role rules.
package organizations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmoreau/gatherly-backend/internal/authz"
	"github.com/nmoreau/gatherly-backend/internal/memberships"
	"github.com/nmoreau/gatherly-backend/pkg/db"
	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
	pkgerrors "github.com/nmoreau/gatherly-backend/pkg/errors"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
)

type Service struct {
	db  *db.Client
	log *logger.Logger
}

func NewService(client *db.Client, log *logger.Logger) *Service {
	return &Service{db: client, log: log}
}

// Create provisions a new organization and its creator membership in one
// transaction; a half-created organization never becomes visible.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, dto CreateOrganizationDTO) (*OrganizationDTO, error) {
	org := &models.Organization{
		ID:           uuid.New(),
		Name:         dto.Name,
		OwnerID:      userID,
		ContactEmail: dto.ContactEmail,
		Description:  dto.Description,
		LogoURL:      dto.LogoURL,
		WebsiteURL:   dto.WebsiteURL,
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Create(ctx, org); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating organization")
		}
		if _, err := memberships.NewRepository(tx).Create(ctx, userID, org.ID, enums.MemberRoleCreator); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating creator membership")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithOrganizationID(ctx, org.ID.String()), "organization created")
	return ToDTO(org, authz.RolePtr(enums.MemberRoleCreator)), nil
}

// List returns every organization the user belongs to, annotated with the
// role held in each.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]memberships.OrganizationWithRole, error) {
	orgs, err := memberships.NewRepository(s.db.DB()).ListOrganizations(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing organizations")
	}
	return orgs, nil
}

// Get returns a single organization through the caller's membership.
// Non-members get NotFound regardless of whether the organization exists.
func (s *Service) Get(ctx context.Context, userID, orgID uuid.UUID) (*OrganizationDTO, error) {
	repo := memberships.NewRepository(s.db.DB())

	org, err := repo.GetOrganizationForMember(ctx, userID, orgID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading organization")
	}

	role, err := repo.GetRole(ctx, userID, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading membership role")
	}
	return ToDTO(org, &role), nil
}

// Update edits organization metadata. Creator only.
func (s *Service) Update(ctx context.Context, userID, orgID uuid.UUID, dto UpdateOrganizationDTO) (*OrganizationDTO, error) {
	var updated *models.Organization

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.requireRole(ctx, tx, userID, orgID, authz.Request{Action: authz.ActionManageOrganization}); err != nil {
			return err
		}

		var err error
		updated, err = NewRepository(tx).Update(ctx, orgID, dto.updates())
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating organization")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(updated, authz.RolePtr(enums.MemberRoleCreator)), nil
}

// Delete removes the organization and all of its scoped data. Creator only.
func (s *Service) Delete(ctx context.Context, userID, orgID uuid.UUID) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.requireRole(ctx, tx, userID, orgID, authz.Request{Action: authz.ActionManageOrganization}); err != nil {
			return err
		}
		if err := NewRepository(tx).DeleteCascade(ctx, orgID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting organization")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info(s.log.WithOrganizationID(ctx, orgID.String()), "organization deleted")
	return nil
}

// ListMembers returns the organization's member roster. Visible to any
// member; outsiders get NotFound.
func (s *Service) ListMembers(ctx context.Context, userID, orgID uuid.UUID) ([]memberships.MemberDTO, error) {
	repo := memberships.NewRepository(s.db.DB())

	if _, err := repo.GetRole(ctx, userID, orgID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading membership role")
	}

	members, err := repo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing members")
	}
	return members, nil
}

// ChangeRole sets a member's role after running the full transition rule
// set. The creator role is never grantable; each organization has exactly
// one, held by its owner. The authorization read and the write share one
// transaction.
func (s *Service) ChangeRole(ctx context.Context, actorID, orgID, targetUserID uuid.UUID, requested enums.MemberRole) error {
	if !requested.IsValid() || requested == enums.MemberRoleCreator {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role").
			WithDetails(map[string]any{"role": string(requested)})
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := memberships.NewRepository(tx)

		actorRole, err := repo.GetRole(ctx, actorID, orgID)
		actorRolePtr := &actorRole
		if err != nil {
			if !db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading actor role")
			}
			actorRolePtr = nil
		}

		var targetRolePtr *enums.MemberRole
		if targetRole, err := repo.GetRole(ctx, targetUserID, orgID); err == nil {
			targetRolePtr = &targetRole
		} else if !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading target role")
		}

		decision := authz.Decide(authz.Request{
			ActorRole:     actorRolePtr,
			Action:        authz.ActionChangeRole,
			TargetRole:    targetRolePtr,
			RequestedRole: requested,
			SelfTarget:    actorID == targetUserID,
		})
		if err := decision.Err(); err != nil {
			return err
		}

		if err := repo.UpdateRole(ctx, targetUserID, orgID, requested); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating member role")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"organization_id": orgID.String(),
		"target_user_id":  targetUserID.String(),
		"role":            string(requested),
	}), "member role changed")
	return nil
}

// RemoveMember drops a member from the organization.
func (s *Service) RemoveMember(ctx context.Context, actorID, orgID, targetUserID uuid.UUID) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := memberships.NewRepository(tx)

		actorRole, err := repo.GetRole(ctx, actorID, orgID)
		actorRolePtr := &actorRole
		if err != nil {
			if !db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading actor role")
			}
			actorRolePtr = nil
		}

		var targetRolePtr *enums.MemberRole
		if targetRole, err := repo.GetRole(ctx, targetUserID, orgID); err == nil {
			targetRolePtr = &targetRole
		} else if !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading target role")
		}

		decision := authz.Decide(authz.Request{
			ActorRole:  actorRolePtr,
			Action:     authz.ActionRemoveMember,
			TargetRole: targetRolePtr,
			SelfTarget: actorID == targetUserID,
		})
		if err := decision.Err(); err != nil {
			return err
		}

		if err := repo.Delete(ctx, targetUserID, orgID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing member")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"organization_id": orgID.String(),
		"target_user_id":  targetUserID.String(),
	}), "member removed")
	return nil
}

// requireRole loads the actor's role inside the transaction and runs the
// decision for the given request, filling in ActorRole.
func (s *Service) requireRole(ctx context.Context, tx *gorm.DB, userID, orgID uuid.UUID, req authz.Request) (*enums.MemberRole, error) {
	role, err := memberships.NewRepository(tx).GetRole(ctx, userID, orgID)
	if err != nil {
		if db.IsNotFound(err) {
			req.ActorRole = nil
			return nil, authz.Decide(req).Err()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading membership role")
	}

	req.ActorRole = &role
	if err := authz.Decide(req).Err(); err != nil {
		return nil, err
	}
	return &role, nil
}
