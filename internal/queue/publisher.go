// Package queue forwards reservation lifecycle events to RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"rentacar/internal/events"
)

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher writes events as persistent JSON messages to one durable queue.
type Publisher struct {
	conn   *amqp.Connection
	ch     Channel
	queue  string
	logger *zerolog.Logger
	now    func() time.Time
}

// Dial connects to the broker at url and declares queue.
func Dial(url, queue string, logger *zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	p, err := NewPublisher(ch, queue, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares queue on ch and returns a publisher bound to it.
func NewPublisher(ch Channel, queue string, logger *zerolog.Logger) (*Publisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &Publisher{ch: ch, queue: queue, logger: logger, now: time.Now}, nil
}

// Publish sends e to the queue through the default exchange.
func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID,
		Type:         e.Type,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}

	p.logger.Debug().Str("event_id", e.ID).Str("type", e.Type).Str("queue", p.queue).Msg("Event published")
	return nil
}

// Subscribe forwards reservation events from bus to the queue.
func (p *Publisher) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.ReservationCreated, "amqp", p.Publish)
	bus.Subscribe(events.ReservationStatusChanged, "amqp", p.Publish)
}

// Close releases the channel and the connection.
func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
