package events

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar/internal/models"
)

func TestEventBus_PublishOrderAndIsolation(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	bus := NewEventBus(&logger)

	var calls []string
	bus.Subscribe(ReservationCreated, "first", func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("smtp down")
	})
	bus.Subscribe(ReservationCreated, "second", func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	bus.Subscribe(ReservationStatusChanged, "other", func(ctx context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	bus.Publish(context.Background(), Event{Type: ReservationCreated})

	assert.Equal(t, []string{"first", "second"}, calls, "failing handler does not stop later ones")
	assert.Contains(t, buf.String(), "smtp down")
	assert.Contains(t, buf.String(), `"subscriber":"first"`)
}

func TestEventBus_PublishJSON(t *testing.T) {
	logger := zerolog.Nop()
	bus := NewEventBus(&logger)

	var got Event
	bus.Subscribe(ReservationCreated, "capture", func(ctx context.Context, e Event) error {
		got = e
		return nil
	})

	payload := ReservationPayload{
		Reservation: models.Reservation{ID: "r1", Status: models.StatusPending, TotalPrice: 3500},
		CarTitle:    "Dacia Duster",
	}
	require.NoError(t, bus.PublishJSON(context.Background(), ReservationCreated, payload))

	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())

	var decoded ReservationPayload
	require.NoError(t, got.Decode(&decoded))
	assert.Equal(t, "r1", decoded.Reservation.ID)
	assert.Equal(t, 3500.0, decoded.Reservation.TotalPrice)
	assert.Equal(t, "Dacia Duster", decoded.CarTitle)

	assert.Error(t, bus.PublishJSON(context.Background(), ReservationCreated, make(chan int)))
	assert.Error(t, Event{Type: "x", Payload: []byte("{")}.Decode(&decoded))
}
