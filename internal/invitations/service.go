// Package invitations implements the membership invitation workflow:
// managers extend invitations, invitees accept or reject them, and an
// accepted invitation converts into a membership atomically.
package invitations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmoreau/gatherly-backend/internal/authz"
	"github.com/nmoreau/gatherly-backend/internal/memberships"
	"github.com/nmoreau/gatherly-backend/internal/organizations"
	"github.com/nmoreau/gatherly-backend/internal/users"
	"github.com/nmoreau/gatherly-backend/pkg/db"
	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
	pkgerrors "github.com/nmoreau/gatherly-backend/pkg/errors"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
)

// Notifier is the slice of the dispatcher this service needs.
type Notifier interface {
	Notify(kind enums.NotificationKind, recipient string, data map[string]string) bool
}

type Service struct {
	db       *db.Client
	notifier Notifier
	log      *logger.Logger
}

func NewService(client *db.Client, notifier Notifier, log *logger.Logger) *Service {
	return &Service{db: client, notifier: notifier, log: log}
}

// Invite extends an invitation to an existing user. Creators invite any
// role; admins invite staff only; staff cannot invite. Inviting a current
// member or duplicating one's own pending invitation is a conflict.
func (s *Service) Invite(ctx context.Context, actorID, orgID uuid.UUID, dto InviteDTO) (*models.Invitation, error) {
	if !dto.Role.IsValid() || dto.Role == enums.MemberRoleCreator {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invitation role").
			WithDetails(map[string]any{"role": string(dto.Role)})
	}

	var (
		invitation   *models.Invitation
		inviteeEmail string
		orgName      string
		inviterName  string
	)

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		memberRepo := memberships.NewRepository(tx)

		actorRole, err := memberRepo.GetRole(ctx, actorID, orgID)
		actorRolePtr := &actorRole
		if err != nil {
			if !db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading actor role")
			}
			actorRolePtr = nil
		}

		decision := authz.Decide(authz.Request{
			ActorRole:     actorRolePtr,
			Action:        authz.ActionInviteMember,
			RequestedRole: dto.Role,
		})
		if err := decision.Err(); err != nil {
			return err
		}

		invitee, err := users.NewRepository(tx).FindByEmail(ctx, dto.Email)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no account exists for this email")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving invitee")
		}

		if _, err := memberRepo.GetRole(ctx, invitee.ID, orgID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "user is already a member of this organization")
		} else if !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking existing membership")
		}

		inviteRepo := NewRepository(tx)
		exists, err := inviteRepo.ExistsEquivalent(ctx, invitee.ID, orgID, actorID, dto.Role)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking pending invitations")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "an identical invitation is already pending")
		}

		org, err := organizations.NewRepository(tx).FindByID(ctx, orgID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading organization")
		}
		inviter, err := users.NewRepository(tx).FindByID(ctx, actorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inviter")
		}

		invitation = &models.Invitation{
			ID:             uuid.New(),
			UserID:         invitee.ID,
			InviterID:      actorID,
			OrganizationID: orgID,
			Role:           dto.Role,
			Status:         enums.InvitationStatusPending,
		}
		if err := inviteRepo.Create(ctx, invitation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating invitation")
		}

		inviteeEmail = invitee.Email
		orgName = org.Name
		inviterName = inviter.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(enums.NotificationInvitationReceived, inviteeEmail, map[string]string{
		"inviter":      inviterName,
		"organization": orgName,
		"role":         string(invitation.Role),
	})
	s.log.Info(s.log.WithOrganizationID(ctx, orgID.String()), "invitation sent")
	return invitation, nil
}

// ListForOrganization returns the pending invitations of an organization.
// Admin or creator only; staff and outsiders are refused.
func (s *Service) ListForOrganization(ctx context.Context, actorID, orgID uuid.UUID) ([]OrganizationInvitationDTO, error) {
	conn := s.db.DB()

	actorRole, err := memberships.NewRepository(conn).GetRole(ctx, actorID, orgID)
	actorRolePtr := &actorRole
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading actor role")
		}
		actorRolePtr = nil
	}

	decision := authz.Decide(authz.Request{ActorRole: actorRolePtr, Action: authz.ActionViewInvitations})
	if err := decision.Err(); err != nil {
		return nil, err
	}

	list, err := NewRepository(conn).ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing invitations")
	}
	return list, nil
}

// ListForUser returns the caller's incoming invitations.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]UserInvitationDTO, error) {
	list, err := NewRepository(s.db.DB()).ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing invitations")
	}
	return list, nil
}

// Respond resolves an invitation addressed to the caller. Accepting creates
// the membership and deletes the invitation in one transaction; rejecting
// just deletes it. A membership granted through another invitation in the
// meantime makes acceptance a no-op rather than an error.
func (s *Service) Respond(ctx context.Context, userID, invitationID uuid.UUID, accept bool) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		inviteRepo := NewRepository(tx)

		invitation, err := inviteRepo.FindByID(ctx, invitationID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading invitation")
		}
		// Invitations are only visible to their invitee.
		if invitation.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
		}

		if accept {
			_, err := memberships.NewRepository(tx).Create(ctx, userID, invitation.OrganizationID, invitation.Role)
			if err != nil && !db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating membership")
			}
		}
		if err := inviteRepo.Delete(ctx, invitation.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting invitation")
		}
		return nil
	})
	if err != nil {
		return err
	}

	outcome := "rejected"
	if accept {
		outcome = "accepted"
	}
	s.log.Info(s.log.WithUserID(ctx, userID.String()), "invitation "+outcome)
	return nil
}

// Revoke withdraws a pending invitation before the invitee responds. The
// same role matrix as Invite applies, so an admin can only revoke staff
// invitations.
func (s *Service) Revoke(ctx context.Context, actorID, orgID, invitationID uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		inviteRepo := NewRepository(tx)

		invitation, err := inviteRepo.FindByID(ctx, invitationID)
		if err != nil || invitation.OrganizationID != orgID {
			if err != nil && !db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading invitation")
			}
			return pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
		}

		actorRole, err := memberships.NewRepository(tx).GetRole(ctx, actorID, orgID)
		actorRolePtr := &actorRole
		if err != nil {
			if !db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading actor role")
			}
			actorRolePtr = nil
		}

		decision := authz.Decide(authz.Request{
			ActorRole:     actorRolePtr,
			Action:        authz.ActionInviteMember,
			RequestedRole: invitation.Role,
		})
		if err := decision.Err(); err != nil {
			return err
		}

		if err := inviteRepo.Delete(ctx, invitation.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoking invitation")
		}
		return nil
	})
}
