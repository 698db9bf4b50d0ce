// Package authz holds the pure organization-permission decision logic.
// The capability lattice (creator > admin > staff) is encoded here once;
// callers never compare roles directly.
package authz

import (
	"github.com/nmoreau/gatherly-backend/pkg/enums"
	pkgerrors "github.com/nmoreau/gatherly-backend/pkg/errors"
)

// Action names a guarded operation on an organization.
type Action string

const (
	ActionManageOrganization Action = "manage_organization"
	ActionInviteMember       Action = "invite_member"
	ActionChangeRole         Action = "change_role"
	ActionRemoveMember       Action = "remove_member"
	ActionManageEvent        Action = "manage_event"
	ActionViewInvitations    Action = "view_invitations"
)

// Reason is a stable denial code, specific enough for UI messaging.
type Reason string

const (
	ReasonOrganizationNotFound    Reason = "organization_not_found"
	ReasonCreatorOnly             Reason = "creator_role_required"
	ReasonStaffCannotInvite       Reason = "staff_cannot_invite"
	ReasonAdminInvitesStaffOnly   Reason = "admin_may_only_invite_staff"
	ReasonCannotChangeOwnRole     Reason = "cannot_change_own_role"
	ReasonCreatorRoleImmutable    Reason = "creator_role_immutable"
	ReasonRoleUnchanged           Reason = "member_already_in_role"
	ReasonStaffCannotManageRoles  Reason = "staff_cannot_manage_roles"
	ReasonAdminCannotPromote      Reason = "admin_cannot_promote_to_admin"
	ReasonStaffCannotRemove       Reason = "staff_cannot_remove_members"
	ReasonCannotRemoveCreator     Reason = "cannot_remove_creator"
	ReasonAdminCannotRemoveAdmin  Reason = "admin_cannot_remove_admin"
	ReasonManagerRoleRequired     Reason = "admin_or_creator_role_required"
	ReasonUnknownAction           Reason = "unknown_action"
	ReasonTargetMembershipMissing Reason = "member_not_in_organization"
)

var reasonMessages = map[Reason]string{
	ReasonOrganizationNotFound:    "organization not found",
	ReasonCreatorOnly:             "only the organization creator may do this",
	ReasonStaffCannotInvite:       "staff members cannot send invitations",
	ReasonAdminInvitesStaffOnly:   "admins may only invite staff members",
	ReasonCannotChangeOwnRole:     "cannot change own role",
	ReasonCreatorRoleImmutable:    "the creator role cannot be changed",
	ReasonRoleUnchanged:           "member already holds this role",
	ReasonStaffCannotManageRoles:  "staff members cannot change roles",
	ReasonAdminCannotPromote:      "admins cannot promote members to admin",
	ReasonStaffCannotRemove:       "staff members cannot remove members",
	ReasonCannotRemoveCreator:     "the organization creator cannot be removed",
	ReasonAdminCannotRemoveAdmin:  "admins cannot remove other admins",
	ReasonManagerRoleRequired:     "admin or creator role required",
	ReasonUnknownAction:           "unsupported action",
	ReasonTargetMembershipMissing: "member not found in the organization",
}

// Request is one authorization question. ActorRole nil means the actor holds
// no membership in the target organization. TargetRole is the current role of
// the member being acted on; RequestedRole is the role being granted or set.
type Request struct {
	ActorRole     *enums.MemberRole
	Action        Action
	TargetRole    *enums.MemberRole
	RequestedRole enums.MemberRole
	SelfTarget    bool
}

// Decision is the outcome of a Request; Reason is set only on denial.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Decide evaluates the rules in order; the first matching rule wins.
// It is pure and never touches storage.
func Decide(req Request) Decision {
	// Lack of membership is reported as organization-not-found so that
	// outsiders cannot probe which organizations exist.
	if req.ActorRole == nil {
		return deny(ReasonOrganizationNotFound)
	}
	actor := *req.ActorRole

	switch req.Action {
	case ActionManageOrganization:
		if actor != enums.MemberRoleCreator {
			return deny(ReasonCreatorOnly)
		}
		return allow()

	case ActionInviteMember:
		switch actor {
		case enums.MemberRoleStaff:
			return deny(ReasonStaffCannotInvite)
		case enums.MemberRoleAdmin:
			if req.RequestedRole != enums.MemberRoleStaff {
				return deny(ReasonAdminInvitesStaffOnly)
			}
			return allow()
		default:
			return allow()
		}

	case ActionChangeRole:
		if req.SelfTarget {
			return deny(ReasonCannotChangeOwnRole)
		}
		if req.TargetRole == nil {
			return deny(ReasonTargetMembershipMissing)
		}
		if *req.TargetRole == enums.MemberRoleCreator {
			return deny(ReasonCreatorRoleImmutable)
		}
		if req.RequestedRole == *req.TargetRole {
			return deny(ReasonRoleUnchanged)
		}
		if actor == enums.MemberRoleStaff {
			return deny(ReasonStaffCannotManageRoles)
		}
		if actor == enums.MemberRoleAdmin && req.RequestedRole == enums.MemberRoleAdmin {
			return deny(ReasonAdminCannotPromote)
		}
		return allow()

	case ActionRemoveMember:
		if actor == enums.MemberRoleStaff {
			return deny(ReasonStaffCannotRemove)
		}
		if req.TargetRole == nil {
			return deny(ReasonTargetMembershipMissing)
		}
		if *req.TargetRole == enums.MemberRoleCreator {
			return deny(ReasonCannotRemoveCreator)
		}
		if actor == enums.MemberRoleAdmin && *req.TargetRole == enums.MemberRoleAdmin {
			return deny(ReasonAdminCannotRemoveAdmin)
		}
		return allow()

	case ActionManageEvent, ActionViewInvitations:
		if actor == enums.MemberRoleStaff {
			return deny(ReasonManagerRoleRequired)
		}
		return allow()
	}

	return deny(ReasonUnknownAction)
}

// Err maps a denial to the externally visible error taxonomy. Missing
// membership hides behind NotFound; self-targeting and no-op transitions are
// conflicts; everything else is a forbidden with the rule that fired.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}

	message, ok := reasonMessages[d.Reason]
	if !ok {
		message = "access denied"
	}

	switch d.Reason {
	case ReasonOrganizationNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case ReasonTargetMembershipMissing:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case ReasonCannotChangeOwnRole, ReasonRoleUnchanged:
		return pkgerrors.New(pkgerrors.CodeConflict, message).
			WithDetails(map[string]any{"reason": string(d.Reason)})
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, message).
			WithDetails(map[string]any{"reason": string(d.Reason)})
	}
}

// RolePtr is a convenience for building requests.
func RolePtr(role enums.MemberRole) *enums.MemberRole {
	return &role
}
