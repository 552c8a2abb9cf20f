package service

import (
	"context"
	"testing"

	"github.com/spec-kit/transit-booking/internal/auth"
	"github.com/spec-kit/transit-booking/internal/domain"
	"github.com/spec-kit/transit-booking/internal/events"
	"github.com/spec-kit/transit-booking/internal/otp"
	"github.com/spec-kit/transit-booking/internal/repository"
)

// codeCapture records delivered OTP codes per user by listening on the
// dispatcher, the same way the SMS stub receives them.
type codeCapture struct {
	byUser map[string]string
}

func newUserServiceForTest() (*UserService, *repository.MemoryUserRepository, *codeCapture, *auth.TokenManager) {
	users := repository.NewMemoryUserRepository()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager("test-secret", 5)

	capture := &codeCapture{byUser: map[string]string{}}
	dispatcher.Subscribe(events.EventUserOTPIssued, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.UserOTPIssuedPayload); ok {
			capture.byUser[payload.UserID] = payload.Code
		}
		return nil
	})

	svc := NewUserService(UserDependencies{
		UserRepo:   users,
		Codes:      otp.NewGenerator(6, 4),
		Throttle:   nil, // nil throttle allows every delivery
		Tokens:     tokens,
		Dispatcher: dispatcher,
	})
	return svc, users, capture, tokens
}

func strPtr(s string) *string { return &s }

func TestRegisterCreatesUnverifiedUser(t *testing.T) {
	svc, _, capture, _ := newUserServiceForTest()

	user, err := svc.Register(context.Background(), RegisterInput{
		MobileNumber: 5551234,
		Name:         strPtr("asha"),
		Address:      strPtr("dwarka"),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("store should assign an id")
	}
	if user.Status != domain.UserStatusUnverified {
		t.Fatalf("want status unverified, got %q", user.Status)
	}
	if user.Name != "asha" || user.Address != "dwarka" {
		t.Fatalf("fields not applied: %+v", user)
	}
	if capture.byUser[user.ID] == "" {
		t.Fatal("registration should deliver an OTP")
	}
	if user.OTPHash == capture.byUser[user.ID] {
		t.Fatal("stored OTP must be hashed, not plaintext")
	}
}

func TestRegisterUpsertsByMobileNumber(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest()
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{MobileNumber: 5551234, Name: strPtr("asha")})
	if err != nil {
		t.Fatalf("first Register: %v", err)
	}
	second, err := svc.Register(ctx, RegisterInput{MobileNumber: 5551234, Name: strPtr("binod")})
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("same mobile number forked into two records: %s vs %s", first.ID, second.ID)
	}
	all, err := users.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("want exactly one stored record, got %d", len(all))
	}
	if all[0].Name != "binod" {
		t.Fatalf("update should win: got name %q", all[0].Name)
	}
}

func TestRegisterKeepsFieldsWhenAbsent(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{MobileNumber: 777, Name: strPtr("asha"), Address: strPtr("rohini")}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	user, err := svc.Register(ctx, RegisterInput{MobileNumber: 777})
	if err != nil {
		t.Fatalf("re-Register: %v", err)
	}
	if user.Name != "asha" || user.Address != "rohini" {
		t.Fatalf("absent fields must keep stored values, got %+v", user)
	}
}

func TestRegisterResetsVerification(t *testing.T) {
	svc, _, capture, _ := newUserServiceForTest()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{MobileNumber: 42})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.VerifyOTP(ctx, user.ID, capture.byUser[user.ID]); err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}

	again, err := svc.Register(ctx, RegisterInput{MobileNumber: 42})
	if err != nil {
		t.Fatalf("re-Register: %v", err)
	}
	if again.Status != domain.UserStatusUnverified {
		t.Fatalf("re-registering must reset status, got %q", again.Status)
	}
}

func TestVerifyOTPMatch(t *testing.T) {
	svc, _, capture, tokens := newUserServiceForTest()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{MobileNumber: 5551234})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	verified, token, err := svc.VerifyOTP(ctx, user.ID, capture.byUser[user.ID])
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if verified.Status != domain.UserStatusVerified {
		t.Fatalf("want Verified, got %q", verified.Status)
	}
	if token == "" {
		t.Fatal("verification should mint a token")
	}
	claims, err := tokens.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != user.ID || claims.MobileNumber != 5551234 {
		t.Fatalf("claims do not match user: %+v", claims)
	}
}

func TestVerifyOTPMismatchLeavesStatus(t *testing.T) {
	svc, users, capture, _ := newUserServiceForTest()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{MobileNumber: 5551234})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	wrong := "000000"
	if capture.byUser[user.ID] == wrong {
		wrong = "000001"
	}
	unchanged, token, err := svc.VerifyOTP(ctx, user.ID, wrong)
	if err != nil {
		t.Fatalf("VerifyOTP with wrong code should not error: %v", err)
	}
	if token != "" {
		t.Fatal("mismatch must not mint a token")
	}
	if unchanged.Status != domain.UserStatusUnverified {
		t.Fatalf("mismatch must leave status, got %q", unchanged.Status)
	}

	stored, err := users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.UserStatusUnverified {
		t.Fatalf("stored status mutated on mismatch: %q", stored.Status)
	}
}

func TestListUsersNewestFirst(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	ctx := context.Background()

	a, err := svc.Register(ctx, RegisterInput{MobileNumber: 1, Name: strPtr("a")})
	if err != nil {
		t.Fatalf("Register a: %v", err)
	}
	b, err := svc.Register(ctx, RegisterInput{MobileNumber: 2, Name: strPtr("b")})
	if err != nil {
		t.Fatalf("Register b: %v", err)
	}

	all, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 users, got %d", len(all))
	}
	if all[0].ID != b.ID || all[1].ID != a.ID {
		t.Fatalf("want [b, a] newest first, got [%s, %s]", all[0].Name, all[1].Name)
	}
}
