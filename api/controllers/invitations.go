package controllers

import (
	"net/http"

	"github.com/nmoreau/gatherly-backend/api/middleware"
	"github.com/nmoreau/gatherly-backend/api/responses"
	"github.com/nmoreau/gatherly-backend/api/validators"
	"github.com/nmoreau/gatherly-backend/internal/invitations"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
	"github.com/nmoreau/gatherly-backend/pkg/types"
)

func InviteMember(svc *invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := validators.ParsePathUUID(r, "orgID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto invitations.InviteDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invitation, err := svc.Invite(r.Context(), middleware.UserIDFromContext(r.Context()), orgID, dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"id":   invitation.ID.String(),
			"role": string(invitation.Role),
		})
	}
}

func ListOrganizationInvitations(svc *invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := validators.ParsePathUUID(r, "orgID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForOrganization(r.Context(), middleware.UserIDFromContext(r.Context()), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func RevokeInvitation(svc *invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := validators.ParsePathUUID(r, "orgID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invitationID, err := validators.ParsePathUUID(r, "invitationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Revoke(r.Context(), middleware.UserIDFromContext(r.Context()), orgID, invitationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.StatusOK)
	}
}

func ListMyInvitations(svc *invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func RespondToInvitation(svc *invitations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invitationID, err := validators.ParsePathUUID(r, "invitationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto invitations.RespondDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Respond(r.Context(), middleware.UserIDFromContext(r.Context()), invitationID, dto.Accept); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.StatusOK)
	}
}
