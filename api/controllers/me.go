package controllers

import (
	"net/http"

	"github.com/nmoreau/gatherly-backend/api/middleware"
	"github.com/nmoreau/gatherly-backend/api/responses"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
)

// Me returns the authenticated user's profile as resolved by the auth
// middleware.
func Me(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"id":    middleware.UserIDFromContext(r.Context()).String(),
			"email": middleware.UserEmailFromContext(r.Context()),
			"name":  middleware.UserNameFromContext(r.Context()),
		})
	}
}
