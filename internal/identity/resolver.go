// Package identity turns externally asserted identities into user records.
// The frontend authenticates and mints the session token; this service only
// trusts the verified claims and materializes a user row on first sight.
package identity

import (
	"context"

	"gorm.io/gorm"

	"github.com/nmoreau/gatherly-backend/internal/users"
	"github.com/nmoreau/gatherly-backend/pkg/auth"
	"github.com/nmoreau/gatherly-backend/pkg/db"
	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
	pkgerrors "github.com/nmoreau/gatherly-backend/pkg/errors"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
)

// Notifier is the slice of the dispatcher the resolver needs.
type Notifier interface {
	Notify(kind enums.NotificationKind, recipient string, data map[string]string) bool
}

type Resolver struct {
	db       *db.Client
	notifier Notifier
	log      *logger.Logger
}

func NewResolver(client *db.Client, notifier Notifier, log *logger.Logger) *Resolver {
	return &Resolver{db: client, notifier: notifier, log: log}
}

// Resolve maps a verified identity to a user row, creating one on first
// sight. An existing row wins over the assertion: name and avatar are only
// written at creation, never refreshed from later claims. Two concurrent
// first requests race on the unique email index; the loser re-reads the
// winner's row.
func (r *Resolver) Resolve(ctx context.Context, identity auth.Identity) (*models.User, error) {
	repo := users.NewRepository(r.db.DB())

	user, err := repo.FindByEmail(ctx, identity.Email)
	if err == nil {
		return user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving user")
	}

	var avatar *string
	if identity.AvatarURL != "" {
		avatar = &identity.AvatarURL
	}
	user, err = repo.Create(ctx, users.CreateUserDTO{
		Email:     identity.Email,
		Name:      identity.Name,
		AvatarURL: avatar,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			user, err = repo.FindByEmail(ctx, identity.Email)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving user after create race")
			}
			return user, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	r.log.Info(r.log.WithUserID(ctx, user.ID.String()), "user created on first sight")
	r.notifier.Notify(enums.NotificationWelcome, user.Email, map[string]string{
		"name": user.Name,
	})
	return user, nil
}
