package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/transit-booking/internal/auth"
	"github.com/spec-kit/transit-booking/internal/domain"
	"github.com/spec-kit/transit-booking/internal/events"
	"github.com/spec-kit/transit-booking/internal/otp"
	"github.com/spec-kit/transit-booking/internal/repository"
)

// UserService coordinates registration and OTP verification.
type UserService struct {
	users      repository.UserRepository
	codes      *otp.Generator
	throttle   *otp.Throttle
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Codes      *otp.Generator
	Throttle   *otp.Throttle
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
}

// RegisterInput describes the registration payload. Name and Address are
// optional; absent fields leave existing values untouched on re-register.
type RegisterInput struct {
	MobileNumber int64
	Name         *string
	Address      *string
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		codes:      deps.Codes,
		throttle:   deps.Throttle,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
	}
}

// Register upserts a user by mobile number. Every call, create or update,
// resets the status to unverified and regenerates the OTP; delivery of the
// new code is paced by the throttle.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	code, err := s.codes.Code()
	if err != nil {
		return nil, err
	}
	hash, err := s.codes.Hash(code)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpsertByMobile(ctx, repository.UserDraft{
		MobileNumber: input.MobileNumber,
		Name:         input.Name,
		Address:      input.Address,
		Status:       domain.UserStatusUnverified,
		OTPHash:      hash,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type: events.EventUserRegistered,
		Payload: events.UserRegisteredPayload{
			UserID:       user.ID,
			MobileNumber: user.MobileNumber,
			Status:       string(user.Status),
		},
	})
	if s.throttle.AllowDelivery(ctx, user.MobileNumber) {
		s.publish(ctx, events.Event{
			Type: events.EventUserOTPIssued,
			Payload: events.UserOTPIssuedPayload{
				UserID:       user.ID,
				MobileNumber: user.MobileNumber,
				Code:         code,
			},
		})
	}
	return user, nil
}

// VerifyOTP compares a submitted code against the stored hash. A match
// promotes the user to Verified and mints a session token. A mismatch is not
// an error: the unchanged record comes back with an empty token, and callers
// read the outcome off the status field.
func (s *UserService) VerifyOTP(ctx context.Context, userID, code string) (*domain.User, string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if !otp.Matches(user.OTPHash, code) {
		return user, "", nil
	}

	if user.Status != domain.UserStatusVerified {
		user.Status = domain.UserStatusVerified
		if err := s.users.Update(ctx, user); err != nil {
			return nil, "", err
		}
		s.publish(ctx, events.Event{
			Type: events.EventUserVerified,
			Payload: events.UserVerifiedPayload{
				UserID:       user.ID,
				MobileNumber: user.MobileNumber,
			},
		})
	}

	token, _, err := s.tokens.GenerateToken(user.ID, user.MobileNumber)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUser fetches one user by key.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns all users, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListAll(ctx)
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
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
