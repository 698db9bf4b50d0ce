package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nmoreau/gatherly-backend/api/responses"
	pkgauth "github.com/nmoreau/gatherly-backend/pkg/auth"
	"github.com/nmoreau/gatherly-backend/pkg/config"
	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	pkgerrors "github.com/nmoreau/gatherly-backend/pkg/errors"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
)

// IdentityResolver maps verified token claims onto a user record.
type IdentityResolver interface {
	Resolve(ctx context.Context, identity pkgauth.Identity) (*models.User, error)
}

// Auth verifies the bearer token, resolves the asserted identity to a user
// row, and seeds the request context. Users come into existence on their
// first authenticated request.
func Auth(cfg config.JWTConfig, resolver IdentityResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			identity, err := pkgauth.ParseIdentityToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			user, err := resolver.Resolve(r.Context(), identity)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUser(r.Context(), user.ID, user.Email, user.Name)
			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
