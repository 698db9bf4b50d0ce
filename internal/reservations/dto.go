package reservations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nmoreau/gatherly-backend/pkg/db/models"
)

// BookDTO is the public booking request. No account is required; attendees
// are identified by email.
type BookDTO struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=120"`
}

// PublicEventDTO is the event as shown on the public booking page. It
// omits organization internals and reports remaining capacity.
type PublicEventDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      *string         `json:"description,omitempty"`
	Location         *string         `json:"location,omitempty"`
	Organizer        string          `json:"organizer"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	Price            decimal.Decimal `json:"price"`
	Tags             []string        `json:"tags,omitempty"`
	TicketsRemaining *int64          `json:"tickets_remaining,omitempty"`
}

func publicEvent(event *models.Event, organizer string, issued int64) *PublicEventDTO {
	dto := &PublicEventDTO{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		Location:    event.Location,
		Organizer:   organizer,
		StartDate:   event.StartDate,
		EndDate:     event.EndDate,
		Price:       event.Price,
		Tags:        []string(event.Tags),
	}
	if event.MaxTickets > 0 {
		remaining := int64(event.MaxTickets) - issued
		if remaining < 0 {
			remaining = 0
		}
		dto.TicketsRemaining = &remaining
	}
	return dto
}

// ReservationDTO is the confirmation returned to the attendee. The ticket
// id doubles as the entry token.
type ReservationDTO struct {
	TicketID   uuid.UUID `json:"ticket_id"`
	EventID    uuid.UUID `json:"event_id"`
	EventName  string    `json:"event_name"`
	OwnerEmail string    `json:"owner_email"`
	OwnerName  string    `json:"owner_name"`
	StartDate  time.Time `json:"start_date"`
}
