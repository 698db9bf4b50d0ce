// Package events implements organization event management. Reads are open
// to every member; writes require the admin or creator role.
package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nmoreau/gatherly-backend/internal/authz"
	"github.com/nmoreau/gatherly-backend/internal/memberships"
	"github.com/nmoreau/gatherly-backend/pkg/db"
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

// Create schedules a new event for the organization.
func (s *Service) Create(ctx context.Context, actorID, orgID uuid.UUID, dto CreateEventDTO) (*EventDTO, error) {
	if dto.EndDate.Before(dto.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event end date precedes its start date")
	}
	if dto.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event price cannot be negative")
	}

	event := dto.toModel(orgID)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.requireAction(ctx, tx, actorID, orgID, authz.ActionManageEvent); err != nil {
			return err
		}
		if err := NewRepository(tx).Create(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithOrganizationID(ctx, orgID.String()), "event created")
	return ToDTO(event), nil
}

// List returns the organization's events to any member.
func (s *Service) List(ctx context.Context, actorID, orgID uuid.UUID) ([]EventDTO, error) {
	if err := s.requireMembership(ctx, s.db.DB(), actorID, orgID); err != nil {
		return nil, err
	}

	rows, err := NewRepository(s.db.DB()).ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing events")
	}

	out := make([]EventDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out, nil
}

// Get returns a single event to any member.
func (s *Service) Get(ctx context.Context, actorID, orgID, eventID uuid.UUID) (*EventDTO, error) {
	if err := s.requireMembership(ctx, s.db.DB(), actorID, orgID); err != nil {
		return nil, err
	}

	event, err := NewRepository(s.db.DB()).FindInOrganization(ctx, orgID, eventID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading event")
	}
	return ToDTO(event), nil
}

// Update edits an event. The resulting schedule must still be coherent.
func (s *Service) Update(ctx context.Context, actorID, orgID, eventID uuid.UUID, dto UpdateEventDTO) (*EventDTO, error) {
	if dto.Status != nil && !dto.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid event status").
			WithDetails(map[string]any{"status": string(*dto.Status)})
	}
	if dto.Price != nil && dto.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event price cannot be negative")
	}

	var updated *EventDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.requireAction(ctx, tx, actorID, orgID, authz.ActionManageEvent); err != nil {
			return err
		}

		repo := NewRepository(tx)
		current, err := repo.FindInOrganization(ctx, orgID, eventID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading event")
		}

		start, end := current.StartDate, current.EndDate
		if dto.StartDate != nil {
			start = *dto.StartDate
		}
		if dto.EndDate != nil {
			end = *dto.EndDate
		}
		if end.Before(start) {
			return pkgerrors.New(pkgerrors.CodeValidation, "event end date precedes its start date")
		}

		event, err := repo.Update(ctx, orgID, eventID, dto.updates())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating event")
		}
		updated = ToDTO(event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an event and its issued tickets.
func (s *Service) Delete(ctx context.Context, actorID, orgID, eventID uuid.UUID) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.requireAction(ctx, tx, actorID, orgID, authz.ActionManageEvent); err != nil {
			return err
		}
		if err := NewRepository(tx).Delete(ctx, orgID, eventID); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting event")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(s.log.WithOrganizationID(ctx, orgID.String()), "event deleted")
	return nil
}

// ListTickets returns the attendee roster. Open to every member so staff
// can check attendees in at the door.
func (s *Service) ListTickets(ctx context.Context, actorID, orgID, eventID uuid.UUID) ([]TicketDTO, error) {
	if err := s.requireMembership(ctx, s.db.DB(), actorID, orgID); err != nil {
		return nil, err
	}

	repo := NewRepository(s.db.DB())
	if _, err := repo.FindInOrganization(ctx, orgID, eventID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading event")
	}

	tickets, err := repo.ListTickets(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing tickets")
	}

	out := make([]TicketDTO, 0, len(tickets))
	for i := range tickets {
		out = append(out, *TicketToDTO(&tickets[i]))
	}
	return out, nil
}

func (s *Service) requireMembership(ctx context.Context, tx *gorm.DB, actorID, orgID uuid.UUID) error {
	if _, err := memberships.NewRepository(tx).GetRole(ctx, actorID, orgID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading membership role")
	}
	return nil
}

func (s *Service) requireAction(ctx context.Context, tx *gorm.DB, actorID, orgID uuid.UUID, action authz.Action) error {
	role, err := memberships.NewRepository(tx).GetRole(ctx, actorID, orgID)
	rolePtr := &role
	if err != nil {
		if !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading membership role")
		}
		rolePtr = nil
	}
	return authz.Decide(authz.Request{ActorRole: rolePtr, Action: action}).Err()
}
