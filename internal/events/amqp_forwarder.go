package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// forwardedTypes lists the events mirrored to the broker. EventUserOTPIssued
// is excluded on purpose: its payload carries the raw code.
var forwardedTypes = []EventType{
	EventUserRegistered,
	EventUserVerified,
	EventTicketIssued,
	EventTicketCheckedIn,
	EventTicketCheckedOut,
}

// AMQPForwarder mirrors selected domain events onto a durable RabbitMQ
// queue. Publish failures are logged, never surfaced to the request path.
type AMQPForwarder struct {
	url    string
	queue  string
	logger *zap.Logger
}

// NewAMQPForwarder builds a forwarder; returns nil when no broker URL is
// configured so callers can skip registration.
func NewAMQPForwarder(url, queue string, logger *zap.Logger) *AMQPForwarder {
	if url == "" {
		return nil
	}
	if queue == "" {
		queue = "booking.events"
	}
	return &AMQPForwarder{url: url, queue: queue, logger: logger}
}

// Register subscribes the forwarder to the dispatcher.
func (f *AMQPForwarder) Register(dispatcher Dispatcher) {
	if f == nil || dispatcher == nil {
		return
	}
	for _, eventType := range forwardedTypes {
		dispatcher.Subscribe(eventType, f.forward)
	}
}

func (f *AMQPForwarder) forward(ctx context.Context, event Event) error {
	conn, err := amqp.Dial(f.url)
	if err != nil {
		f.logger.Warn("amqp dial failed", zap.Error(err))
		return err
	}
	defer conn.Close() //nolint:errcheck

	ch, err := conn.Channel()
	if err != nil {
		f.logger.Warn("amqp channel open failed", zap.Error(err))
		return err
	}
	defer ch.Close() //nolint:errcheck

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(f.queue, true, false, false, false, nil); err != nil {
		f.logger.Warn("amqp queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		f.logger.Warn("amqp marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", f.queue, false, false, pub); err != nil {
		f.logger.Warn("amqp publish failed", zap.Error(err))
		return err
	}
	return nil
}
