package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

// CreateEventDTO is the request body for creating an event. A nil Location
// means online; MaxTickets zero means unlimited capacity.
type CreateEventDTO struct {
	Name        string          `json:"name" validate:"required,min=2,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=5000"`
	Location    *string         `json:"location" validate:"omitempty,max=500"`
	StartDate   time.Time       `json:"start_date" validate:"required"`
	EndDate     time.Time       `json:"end_date" validate:"required"`
	MaxTickets  int             `json:"max_tickets" validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
	Tags        []string        `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
}

func (d CreateEventDTO) toModel(orgID uuid.UUID) *models.Event {
	return &models.Event{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           d.Name,
		Description:    d.Description,
		Location:       d.Location,
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		MaxTickets:     d.MaxTickets,
		Price:          d.Price,
		Tags:           pq.StringArray(d.Tags),
		Status:         enums.EventStatusScheduled,
	}
}

// UpdateEventDTO carries a partial update; nil fields are untouched.
type UpdateEventDTO struct {
	Name        *string            `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=5000"`
	Location    *string            `json:"location" validate:"omitempty,max=500"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
	MaxTickets  *int               `json:"max_tickets" validate:"omitempty,gte=0"`
	Price       *decimal.Decimal   `json:"price"`
	Tags        []string           `json:"tags" validate:"omitempty,max=10,dive,min=1,max=40"`
	Status      *enums.EventStatus `json:"status"`
}

func (d UpdateEventDTO) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if d.Name != nil {
		updates["name"] = *d.Name
	}
	if d.Description != nil {
		updates["description"] = *d.Description
	}
	if d.Location != nil {
		updates["location"] = *d.Location
	}
	if d.StartDate != nil {
		updates["start_date"] = *d.StartDate
	}
	if d.EndDate != nil {
		updates["end_date"] = *d.EndDate
	}
	if d.MaxTickets != nil {
		updates["max_tickets"] = *d.MaxTickets
	}
	if d.Price != nil {
		updates["price"] = *d.Price
	}
	if d.Tags != nil {
		updates["tags"] = pq.StringArray(d.Tags)
	}
	if d.Status != nil {
		updates["status"] = *d.Status
	}
	return updates
}

// EventDTO is the transport shape for an event as seen by members.
type EventDTO struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	Name           string            `json:"name"`
	Description    *string           `json:"description,omitempty"`
	Location       *string           `json:"location,omitempty"`
	StartDate      time.Time         `json:"start_date"`
	EndDate        time.Time         `json:"end_date"`
	MaxTickets     int               `json:"max_tickets"`
	Price          decimal.Decimal   `json:"price"`
	Tags           []string          `json:"tags,omitempty"`
	Status         enums.EventStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ToDTO converts a model event to its transport shape.
func ToDTO(event *models.Event) *EventDTO {
	if event == nil {
		return nil
	}
	return &EventDTO{
		ID:             event.ID,
		OrganizationID: event.OrganizationID,
		Name:           event.Name,
		Description:    event.Description,
		Location:       event.Location,
		StartDate:      event.StartDate,
		EndDate:        event.EndDate,
		MaxTickets:     event.MaxTickets,
		Price:          event.Price,
		Tags:           []string(event.Tags),
		Status:         event.Status,
		CreatedAt:      event.CreatedAt,
	}
}

// TicketDTO is the roster entry managers and staff see for an event.
type TicketDTO struct {
	ID         uuid.UUID          `json:"id"`
	EventID    uuid.UUID          `json:"event_id"`
	OwnerEmail string             `json:"owner_email"`
	OwnerName  string             `json:"owner_name"`
	Status     enums.TicketStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}

// TicketToDTO converts a ticket model.
func TicketToDTO(ticket *models.Ticket) *TicketDTO {
	if ticket == nil {
		return nil
	}
	return &TicketDTO{
		ID:         ticket.ID,
		EventID:    ticket.EventID,
		OwnerEmail: ticket.OwnerEmail,
		OwnerName:  ticket.OwnerName,
		Status:     ticket.Status,
		CreatedAt:  ticket.CreatedAt,
	}
}
