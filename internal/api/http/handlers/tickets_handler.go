package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/transit-booking/internal/api/dto"
	"github.com/spec-kit/transit-booking/internal/service"
	apperrors "github.com/spec-kit/transit-booking/pkg/util"
)

// TicketsHandler manages booking endpoints.
type TicketsHandler struct {
	bookings *service.BookingService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(bookingService *service.BookingService) *TicketsHandler {
	return &TicketsHandler{bookings: bookingService}
}

// Create handles POST|PUT /user/:id/ticket.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	customerID, err := pathKey(c, "user")
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.bookings.CreateTicket(c.UserContext(), customerID, service.TicketCreateInput{
		Persons: req.Persons,
		FromLoc: req.From,
		ToLoc:   req.To,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON([]dto.TicketResponse{dto.NewTicketResponse(ticket)})
}

// List handles GET /user/:id/ticket.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	customerID, err := pathKey(c, "user")
	if err != nil {
		return err
	}
	tickets, err := h.bookings.ListCustomerTickets(c.UserContext(), customerID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketList(tickets))
}

// Validity handles GET /ticket/:id, answering the valid flag as plain text.
func (h *TicketsHandler) Validity(c *fiber.Ctx) error {
	id, err := pathKey(c, "ticket")
	if err != nil {
		return err
	}
	ticket, err := h.bookings.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.SendString(dto.BoolText(ticket.Valid))
}

// CheckIn handles POST /ticket/:id, recording the boarding location.
func (h *TicketsHandler) CheckIn(c *fiber.Ctx) error {
	id, err := pathKey(c, "ticket")
	if err != nil {
		return err
	}
	var req dto.CheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.From == "" {
		return apperrors.NewValidationError("from required", nil)
	}

	ticket, err := h.bookings.CheckIn(c.UserContext(), id, req.From)
	if err != nil {
		return err
	}
	return c.SendString(dto.BoolText(ticket.Valid))
}

// CheckOut handles PUT /ticket/:id, recording the alighting location.
func (h *TicketsHandler) CheckOut(c *fiber.Ctx) error {
	id, err := pathKey(c, "ticket")
	if err != nil {
		return err
	}
	var req dto.CheckOutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.To == "" {
		return apperrors.NewValidationError("to required", nil)
	}

	ticket, err := h.bookings.CheckOut(c.UserContext(), id, req.To)
	if err != nil {
		return err
	}
	return c.SendString(dto.BoolText(ticket.Valid))
}

// pathKey validates the opaque key format up front so a malformed key reads
// as an unknown record, not a datastore fault.
func pathKey(c *fiber.Ctx, resource string) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return id, nil
}
