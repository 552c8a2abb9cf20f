package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/transit-booking/internal/domain"
	"github.com/spec-kit/transit-booking/internal/events"
	"github.com/spec-kit/transit-booking/internal/repository"
	apperrors "github.com/spec-kit/transit-booking/pkg/util"
)

// BookingService coordinates ticket workflows.
type BookingService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// BookingDependencies bundles repositories for the booking service.
type BookingDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. All fields optional;
// Persons defaults to 1.
type TicketCreateInput struct {
	Persons *int
	FromLoc *string
	ToLoc   *string
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	return &BookingService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket issues a ticket owned by the given user key. Tickets start
// valid.
func (s *BookingService) CreateTicket(ctx context.Context, customerID string, input TicketCreateInput) (*domain.Ticket, error) {
	customer, err := s.users.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	persons := 1
	if input.Persons != nil {
		if *input.Persons < 1 {
			return nil, apperrors.NewValidationError("persons must be at least 1", nil)
		}
		persons = *input.Persons
	}

	ticket := &domain.Ticket{
		Reference:  generateBookingReference(),
		CustomerID: customer.ID,
		Persons:    persons,
		Valid:      true,
	}
	if input.FromLoc != nil {
		ticket.FromLoc = strings.TrimSpace(*input.FromLoc)
	}
	if input.ToLoc != nil {
		ticket.ToLoc = strings.TrimSpace(*input.ToLoc)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type: events.EventTicketIssued,
		Payload: events.TicketIssuedPayload{
			TicketID:   ticket.ID,
			Reference:  ticket.Reference,
			CustomerID: ticket.CustomerID,
			FromLoc:    ticket.FromLoc,
			ToLoc:      ticket.ToLoc,
			Persons:    ticket.Persons,
		},
	})
	return ticket, nil
}

// ListCustomerTickets returns a user's tickets, newest first.
func (s *BookingService) ListCustomerTickets(ctx context.Context, customerID string) ([]domain.Ticket, error) {
	if _, err := s.users.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.tickets.ListByCustomer(ctx, customerID)
}

// GetTicket fetches one ticket by key.
func (s *BookingService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// CheckIn records the boarding location on a ticket. Per the product
// contract this copies the location and persists, nothing more; the valid
// flag is untouched.
func (s *BookingService) CheckIn(ctx context.Context, ticketID, fromLoc string) (*domain.Ticket, error) {
	return s.recordMovement(ctx, ticketID, fromLoc, events.EventTicketCheckedIn)
}

// CheckOut records the alighting location on a ticket, symmetric with
// CheckIn.
func (s *BookingService) CheckOut(ctx context.Context, ticketID, toLoc string) (*domain.Ticket, error) {
	return s.recordMovement(ctx, ticketID, toLoc, events.EventTicketCheckedOut)
}

func (s *BookingService) recordMovement(ctx context.Context, ticketID, location string, eventType events.EventType) (*domain.Ticket, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, apperrors.NewValidationError("location required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	switch eventType {
	case events.EventTicketCheckedIn:
		ticket.FromLoc = location
	case events.EventTicketCheckedOut:
		ticket.ToLoc = location
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type: eventType,
		Payload: events.TicketMovementPayload{
			TicketID:   ticket.ID,
			CustomerID: ticket.CustomerID,
			Location:   location,
		},
	})
	return ticket, nil
}

func generateBookingReference() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *BookingService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
