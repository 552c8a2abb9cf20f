package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/transit-booking/internal/config"
	"github.com/spec-kit/transit-booking/internal/events"
)

// NotificationService handles emitting notifications for domain events. SMS
// and webhook delivery are stubs that log what a real gateway would send.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserOTPIssued, n.handleOTPIssued)
	n.dispatcher.Subscribe(events.EventUserVerified, n.handleUserVerified)
	n.dispatcher.Subscribe(events.EventTicketIssued, n.handleTicketIssued)
	n.dispatcher.Subscribe(events.EventTicketCheckedIn, n.handleTicketMovement)
	n.dispatcher.Subscribe(events.EventTicketCheckedOut, n.handleTicketMovement)
}

func (n *NotificationService) handleOTPIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserOTPIssuedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("OTPIssued",
		zap.String("user_id", payload.UserID),
		zap.String("code", maskCode(payload.Code)))
	n.sendSMSStub(ctx, payload)
	return nil
}

func (n *NotificationService) handleUserVerified(ctx context.Context, event events.Event) error {
	n.logger.Info("UserVerified", zap.Any("payload", event.Payload))
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketIssued", zap.Any("payload", event.Payload))
	n.sendWebhookStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketMovement(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.Any("payload", event.Payload))
	n.sendWebhookStub(ctx, event)
	return nil
}

// sendSMSStub stands in for an SMS gateway. The full code is logged at
// debug level only, for local development.
func (n *NotificationService) sendSMSStub(_ context.Context, payload events.UserOTPIssuedPayload) {
	if strings.TrimSpace(n.cfg.SMSSender) == "" {
		return
	}
	n.logger.Debug("sendSMSStub",
		zap.String("sender", n.cfg.SMSSender),
		zap.Int64("mobile_number", payload.MobileNumber),
		zap.String("code", payload.Code))
}

func (n *NotificationService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}

func maskCode(code string) string {
	if len(code) <= 2 {
		return strings.Repeat("*", len(code))
	}
	return strings.Repeat("*", len(code)-2) + code[len(code)-2:]
}
