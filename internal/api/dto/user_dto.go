package dto

import (
	"time"

	"github.com/spec-kit/transit-booking/internal/domain"
)

// UpsertUserRequest payload for POST|PUT /user. Pointer fields distinguish
// absent from empty so re-registering without a name keeps the stored one.
type UpsertUserRequest struct {
	MobileNumber *int64  `json:"mobile_number"`
	Name         *string `json:"name"`
	Address      *string `json:"address"`
}

// VerifyOTPRequest payload for POST /user/:id/otp.
type VerifyOTPRequest struct {
	OTPNumber string `json:"otp_number"`
}

// UserResponse mirrors the legacy wire shape: id, name, role, status,
// created. Address and the OTP hash never leave the service. Token is only
// present on a successful verification.
type UserResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Role    string    `json:"role"`
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
	Token   string    `json:"token,omitempty"`
}

// NewUserResponse maps a domain user onto the wire shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Role:    user.Role,
		Status:  string(user.Status),
		Created: user.CreatedAt,
	}
}

// NewUserList maps a slice of users, preserving order.
func NewUserList(users []domain.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, NewUserResponse(&users[i]))
	}
	return result
}
