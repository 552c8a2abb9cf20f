package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transit-booking/internal/api/dto"
	"github.com/spec-kit/transit-booking/internal/auth"
	"github.com/spec-kit/transit-booking/internal/service"
	apperrors "github.com/spec-kit/transit-booking/pkg/util"
)

// UsersHandler exposes user registration and verification endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Upsert handles POST|PUT /user.
func (h *UsersHandler) Upsert(c *fiber.Ctx) error {
	var req dto.UpsertUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.MobileNumber == nil {
		return apperrors.NewValidationError("mobile_number required", nil)
	}

	user, err := h.users.Register(c.UserContext(), service.RegisterInput{
		MobileNumber: *req.MobileNumber,
		Name:         req.Name,
		Address:      req.Address,
	})
	if err != nil {
		return err
	}

	// Legacy clients expect the single record wrapped in an array.
	return c.JSON([]dto.UserResponse{dto.NewUserResponse(user)})
}

// List handles GET /user.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserList(users))
}

// Get handles GET /user/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := pathKey(c, "user")
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// VerifyOTP handles POST /user/:id/otp. A mismatched code is not an error;
// the caller reads the outcome off the status field of the returned record.
func (h *UsersHandler) VerifyOTP(c *fiber.Ctx) error {
	id, err := pathKey(c, "user")
	if err != nil {
		return err
	}
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, err := h.users.VerifyOTP(c.UserContext(), id, req.OTPNumber)
	if err != nil {
		return err
	}

	response := dto.NewUserResponse(user)
	response.Token = token
	return c.JSON([]dto.UserResponse{response})
}

// Me handles GET /me for bearer-authenticated callers.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing bearer token")
	}
	return c.JSON(dto.NewUserResponse(user))
}
