package domain

import "time"

// UserStatus represents verification states for a user.
type UserStatus string

const (
	// The mixed casing is load-bearing: existing mobile clients compare
	// against these literals.
	UserStatusUnverified UserStatus = "unverified"
	UserStatusVerified   UserStatus = "Verified"
)

// User is the domain model for a rider identified by mobile number.
// MobileNumber is the natural lookup key; the store does not enforce
// uniqueness on it, and lookups resolve to the most-recently-created match.
type User struct {
	ID           string
	MobileNumber int64
	Name         string
	Address      string
	Role         string
	Status       UserStatus
	OTPHash      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
