package dto

import (
	"strconv"
	"time"

	"github.com/spec-kit/transit-booking/internal/domain"
)

// CreateTicketRequest payload for POST|PUT /user/:id/ticket. Everything is
// optional; persons defaults to 1 downstream.
type CreateTicketRequest struct {
	Persons *int    `json:"persons"`
	From    *string `json:"from"`
	To      *string `json:"to"`
}

// CheckInRequest payload for POST /ticket/:id.
type CheckInRequest struct {
	From string `json:"from"`
}

// CheckOutRequest payload for PUT /ticket/:id.
type CheckOutRequest struct {
	To string `json:"to"`
}

// TicketResponse mirrors the legacy wire shape. Persons and Valid are
// strings ("3", "True") because existing clients parse them that way.
type TicketResponse struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Persons string    `json:"persons"`
	Valid   string    `json:"valid"`
	Created time.Time `json:"created"`
}

// NewTicketResponse maps a domain ticket onto the wire shape.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:      ticket.ID,
		From:    ticket.FromLoc,
		To:      ticket.ToLoc,
		Persons: strconv.Itoa(ticket.Persons),
		Valid:   BoolText(ticket.Valid),
		Created: ticket.CreatedAt,
	}
}

// NewTicketList maps a slice of tickets, preserving order.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, NewTicketResponse(&tickets[i]))
	}
	return result
}

// BoolText renders a validity flag the way the legacy clients expect it.
func BoolText(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
