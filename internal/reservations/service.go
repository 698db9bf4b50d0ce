// Package reservations implements the unauthenticated booking surface:
// a public event page and ticket issuance with capacity enforcement.
package reservations

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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
	now      func() time.Time
}

func NewService(client *db.Client, notifier Notifier, log *logger.Logger) *Service {
	return &Service{db: client, notifier: notifier, log: log, now: time.Now}
}

// GetEvent returns the public view of a bookable event. Cancelled and
// completed events, and events that have already started, are not found.
func (s *Service) GetEvent(ctx context.Context, eventID uuid.UUID) (*PublicEventDTO, error) {
	repo := NewRepository(s.db.DB())

	event, err := repo.FindBookableEvent(ctx, eventID, s.now())
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading event")
	}

	organizer, err := repo.OrganizationName(ctx, event.OrganizationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading organizer")
	}

	var issued int64
	if event.MaxTickets > 0 {
		issued, err = repo.CountTickets(ctx, event.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting tickets")
		}
	}
	return publicEvent(event, organizer, issued), nil
}

// Book issues one ticket per email per event, enforcing capacity. The
// capacity and duplicate checks run in the insert's transaction. The unique
// (event, email) index backstops the duplicate check under concurrency; the
// capacity count has no equivalent constraint, so two simultaneous bookings
// with different emails can exceed MaxTickets by one under read committed.
func (s *Service) Book(ctx context.Context, eventID uuid.UUID, dto BookDTO) (*ReservationDTO, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	var reservation *ReservationDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		event, err := repo.FindBookableEvent(ctx, eventID, s.now())
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading event")
		}

		taken, err := repo.HasTicketForEmail(ctx, event.ID, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking existing ticket")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "this email already holds a ticket for the event")
		}

		if event.MaxTickets > 0 {
			issued, err := repo.CountTickets(ctx, event.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting tickets")
			}
			if issued >= int64(event.MaxTickets) {
				return pkgerrors.New(pkgerrors.CodeConflict, "event is sold out")
			}
		}

		ticket := &models.Ticket{
			ID:         uuid.New(),
			EventID:    event.ID,
			OwnerEmail: email,
			OwnerName:  dto.Name,
			Status:     enums.TicketStatusAccepted,
		}
		if err := repo.CreateTicket(ctx, ticket); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "this email already holds a ticket for the event")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating ticket")
		}

		reservation = &ReservationDTO{
			TicketID:   ticket.ID,
			EventID:    event.ID,
			EventName:  event.Name,
			OwnerEmail: email,
			OwnerName:  dto.Name,
			StartDate:  event.StartDate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(enums.NotificationTicketConfirmation, email, map[string]string{
		"name":  reservation.OwnerName,
		"event": reservation.EventName,
		"start": reservation.StartDate.Format(time.RFC1123),
	})
	s.log.Info(s.log.WithField(ctx, "event_id", reservation.EventID.String()), "ticket issued")
	return reservation, nil
}
