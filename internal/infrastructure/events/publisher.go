// Package events publishes domain events to RabbitMQ. Publishing is best
// effort: failures are logged and returned, and callers do not fail the
// request because of them.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	TypeCustomerCreated          = "customer.created"
	TypeAppointmentCreated       = "appointment.created"
	TypeAppointmentStatusChanged = "appointment.status_changed"
)

// Event is the JSON envelope written to the queue.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// New stamps an event of the given type.
func New(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards events; used when AMQP_URL is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Fanout delivers each event to every publisher and returns the joined errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AMQPPublisher dials the broker per publish and writes persistent messages to
// a durable queue through the default exchange.
type AMQPPublisher struct {
	url    string
	queue  string
	logger *slog.Logger
}

// NewAMQPPublisher creates a publisher for the given broker URL and queue
func NewAMQPPublisher(url, queue string, logger *slog.Logger) *AMQPPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPPublisher{url: url, queue: queue, logger: logger}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.fail(event, "dial", err)
		return fmt.Errorf("failed to dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.fail(event, "channel", err)
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.fail(event, "queue_declare", err)
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.fail(event, "publish", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event published", slog.String("type", event.Type), slog.String("queue", p.queue))
	return nil
}

func (p *AMQPPublisher) fail(event Event, stage string, err error) {
	p.logger.Warn("event publish failed",
		slog.String("type", event.Type),
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}
