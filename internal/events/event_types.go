package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered   EventType = "user_registered"
	EventUserOTPIssued    EventType = "user_otp_issued"
	EventUserVerified     EventType = "user_verified"
	EventTicketIssued     EventType = "ticket_issued"
	EventTicketCheckedIn  EventType = "ticket_checked_in"
	EventTicketCheckedOut EventType = "ticket_checked_out"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID       string `json:"user_id"`
	MobileNumber int64  `json:"mobile_number"`
	Status       string `json:"status"`
}

// UserOTPIssuedPayload carries the code to the in-process delivery stub.
// This event stays local: the AMQP forwarder never subscribes to it.
type UserOTPIssuedPayload struct {
	UserID       string `json:"user_id"`
	MobileNumber int64  `json:"mobile_number"`
	Code         string `json:"code"`
}

// UserVerifiedPayload payload.
type UserVerifiedPayload struct {
	UserID       string `json:"user_id"`
	MobileNumber int64  `json:"mobile_number"`
}

// TicketIssuedPayload payload.
type TicketIssuedPayload struct {
	TicketID   string `json:"ticket_id"`
	Reference  string `json:"reference"`
	CustomerID string `json:"customer_id"`
	FromLoc    string `json:"from_loc,omitempty"`
	ToLoc      string `json:"to_loc,omitempty"`
	Persons    int    `json:"persons"`
}

// TicketMovementPayload payload for check-in and check-out.
type TicketMovementPayload struct {
	TicketID   string `json:"ticket_id"`
	CustomerID string `json:"customer_id"`
	Location   string `json:"location"`
}
