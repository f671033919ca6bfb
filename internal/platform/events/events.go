// Package events publishes appointment lifecycle events to RabbitMQ.
// Publishing is best-effort: failures are logged by callers and never
// interrupt the request that produced the event.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AppointmentQueue is the durable queue appointment events are published to.
const AppointmentQueue = "appointment.events"

// AppointmentEvent describes a single appointment state change.
type AppointmentEvent struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	UserID        uuid.UUID `json:"user_id"`
	Action        string    `json:"action"` // booked, confirmed, completed, cancelled, rescheduled
	Status        string    `json:"status"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers appointment events somewhere. Implementations must be
// safe for concurrent use.
type Publisher interface {
	PublishAppointment(ctx context.Context, evt AppointmentEvent) error
}

// Noop discards every event. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishAppointment(context.Context, AppointmentEvent) error { return nil }

// AMQPPublisher publishes events over a fresh AMQP connection per call.
// Opening a connection per publish keeps the publisher stateless across
// broker restarts at the cost of latency, acceptable on this low-volume path.
type AMQPPublisher struct {
	url    string
	logger zerolog.Logger
}

// NewAMQPPublisher creates a publisher for the given broker URL.
func NewAMQPPublisher(url string, logger zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

// PublishAppointment sends the event to the appointment queue as a persistent
// JSON message. Errors are logged and returned so callers can ignore them.
func (p *AMQPPublisher) PublishAppointment(ctx context.Context, evt AppointmentEvent) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn().Err(err).Msg("amqp dial failed")
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn().Err(err).Msg("amqp channel open failed")
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(AppointmentQueue, true, false, false, false, nil); err != nil {
		p.logger.Warn().Err(err).Msg("amqp queue declare failed")
		return err
	}

	body, err := json.Marshal(evt)
	if err != nil {
		p.logger.Warn().Err(err).Msg("amqp event marshal failed")
		return err
	}

	err = ch.PublishWithContext(ctx, "", AppointmentQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.OccurredAt,
		Body:         body,
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("amqp publish failed")
		return err
	}

	return nil
}
