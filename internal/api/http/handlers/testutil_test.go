package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/transit-booking/internal/api/http"
	"github.com/spec-kit/transit-booking/internal/api/http/handlers"
	"github.com/spec-kit/transit-booking/internal/auth"
	"github.com/spec-kit/transit-booking/internal/events"
	"github.com/spec-kit/transit-booking/internal/observability"
	"github.com/spec-kit/transit-booking/internal/otp"
	"github.com/spec-kit/transit-booking/internal/persistence"
	"github.com/spec-kit/transit-booking/internal/repository"
	"github.com/spec-kit/transit-booking/internal/service"
)

// testEnv stands up the full HTTP surface over the in-memory repositories.
// OTP codes are captured off the dispatcher, exactly where the SMS stub
// reads them.
type testEnv struct {
	app     *fiber.App
	users   *repository.MemoryUserRepository
	tokens  *auth.TokenManager
	metrics *observability.Metrics
	codes   map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	users := repository.NewMemoryUserRepository()
	tickets := repository.NewMemoryTicketRepository()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager("test-secret", 5)

	env := &testEnv{users: users, tokens: tokens, metrics: metrics, codes: map[string]string{}}
	dispatcher.Subscribe(events.EventUserOTPIssued, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.UserOTPIssuedPayload); ok {
			env.codes[payload.UserID] = payload.Code
		}
		return nil
	})

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   users,
		Codes:      otp.NewGenerator(6, 4),
		Tokens:     tokens,
		Dispatcher: dispatcher,
	})
	bookingService := service.NewBookingService(service.BookingDependencies{
		TicketRepo: tickets,
		UserRepo:   users,
		Dispatcher: dispatcher,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Users:          handlers.NewUsersHandler(userService),
		Tickets:        handlers.NewTicketsHandler(bookingService),
		AuthMiddleware: auth.NewMiddleware(tokens, users),
	})
	env.app = app
	return env
}

func (e *testEnv) request(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp, raw
}

func decodeJSON[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return out
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// registerUser creates a user through the public endpoint and returns its id.
func (e *testEnv) registerUser(t *testing.T, mobile int64, name string) string {
	t.Helper()
	body := map[string]any{"mobile_number": mobile}
	if name != "" {
		body["name"] = name
	}
	resp, raw := e.request(t, http.MethodPost, "/user", body, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register user: status %d body %s", resp.StatusCode, raw)
	}
	users := decodeJSON[[]map[string]any](t, raw)
	if len(users) != 1 {
		t.Fatalf("want single-element array, got %d", len(users))
	}
	id, _ := users[0]["id"].(string)
	if id == "" {
		t.Fatalf("missing id in %s", raw)
	}
	return id
}

// issueTicket creates a ticket through the public endpoint and returns its id.
func (e *testEnv) issueTicket(t *testing.T, userID string, body map[string]any) string {
	t.Helper()
	resp, raw := e.request(t, http.MethodPost, "/user/"+userID+"/ticket", body, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("issue ticket: status %d body %s", resp.StatusCode, raw)
	}
	tickets := decodeJSON[[]map[string]any](t, raw)
	if len(tickets) != 1 {
		t.Fatalf("want single-element array, got %d", len(tickets))
	}
	id, _ := tickets[0]["id"].(string)
	if id == "" {
		t.Fatalf("missing id in %s", raw)
	}
	return id
}
