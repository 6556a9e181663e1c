package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rentacar/internal/models"
)

// Event types.
const (
	ReservationCreated       = "reservation.created"
	ReservationStatusChanged = "reservation.status_changed"
	PartnerApplied           = "partner.applied"
)

// Event represents a lightweight domain event.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReservationPayload is carried by reservation events.
type ReservationPayload struct {
	Reservation    models.Reservation `json:"reservation"`
	CarTitle       string             `json:"car_title,omitempty"`
	PreviousStatus string             `json:"previous_status,omitempty"`
}

// PartnerPayload is carried by partner.applied.
type PartnerPayload struct {
	Application models.PartnerApplication `json:"application"`
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// EventHandler reacts to an event.
type EventHandler func(ctx context.Context, event Event) error

type subscriber struct {
	name    string
	handler EventHandler
}

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]subscriber
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

// NewEventBus constructs an empty bus.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	return &EventBus{subscribers: make(map[string][]subscriber), logger: logger}
}

// Subscribe registers a named handler for a given event type.
func (b *EventBus) Subscribe(eventType, name string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber{name: name, handler: handler})
}

// Publish notifies subscribers of the event type in subscription order.
// Handler errors are logged and do not stop the remaining handlers.
func (b *EventBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	for _, s := range subs {
		if err := s.handler(ctx, event); err != nil {
			b.logger.Error().Err(err).
				Str("event", event.Type).
				Str("event_id", event.ID).
				Str("subscriber", s.name).
				Msg("Event handler failed")
		}
	}
}

// PublishJSON marshals payload into an event of the given type and publishes it.
func (b *EventBus) PublishJSON(ctx context.Context, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	b.Publish(ctx, Event{Type: eventType, Payload: data})
	return nil
}
