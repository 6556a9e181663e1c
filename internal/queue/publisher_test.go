package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentacar/internal/events"
	"rentacar/internal/models"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name, durable)
	return amqp.Queue{Name: name}, a.Error(0)
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func TestNewPublisher_DeclaresDurableQueue(t *testing.T) {
	ch := new(mockChannel)
	ch.On("QueueDeclare", "reservations", true).Return(nil).Once()

	_, err := NewPublisher(ch, "reservations", testLogger())
	require.NoError(t, err)

	failing := new(mockChannel)
	failing.On("QueueDeclare", "reservations", true).Return(errors.New("access refused")).Once()
	_, err = NewPublisher(failing, "reservations", testLogger())
	assert.ErrorContains(t, err, "access refused")

	ch.AssertExpectations(t)
}

func TestPublisher_ForwardsBusEvents(t *testing.T) {
	ch := new(mockChannel)
	ch.On("QueueDeclare", "reservations", true).Return(nil)

	var published []amqp.Publishing
	ch.On("PublishWithContext", "", "reservations", mock.Anything).
		Run(func(args mock.Arguments) {
			published = append(published, args.Get(2).(amqp.Publishing))
		}).
		Return(nil)

	p, err := NewPublisher(ch, "reservations", testLogger())
	require.NoError(t, err)

	bus := events.NewEventBus(testLogger())
	p.Subscribe(bus)

	payload := events.ReservationPayload{Reservation: models.Reservation{ID: "r1", CarID: "duster"}}
	ctx := context.Background()
	require.NoError(t, bus.PublishJSON(ctx, events.ReservationCreated, payload))
	require.NoError(t, bus.PublishJSON(ctx, events.ReservationStatusChanged, payload))
	require.NoError(t, bus.PublishJSON(ctx, events.PartnerApplied, events.PartnerPayload{}))

	require.Len(t, published, 2)
	msg := published[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, events.ReservationCreated, msg.Type)
	assert.NotEmpty(t, msg.MessageId)

	var e events.Event
	require.NoError(t, json.Unmarshal(msg.Body, &e))
	assert.Equal(t, msg.MessageId, e.ID)
	var got events.ReservationPayload
	require.NoError(t, e.Decode(&got))
	assert.Equal(t, "r1", got.Reservation.ID)

	assert.Equal(t, events.ReservationStatusChanged, published[1].Type)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := new(mockChannel)
	ch.On("QueueDeclare", "reservations", true).Return(nil)
	ch.On("PublishWithContext", "", "reservations", mock.Anything).Return(amqp.ErrClosed)
	ch.On("Close").Return(nil)

	p, err := NewPublisher(ch, "reservations", testLogger())
	require.NoError(t, err)

	err = p.Publish(context.Background(), events.Event{ID: "e1", Type: events.ReservationCreated})
	assert.ErrorIs(t, err, amqp.ErrClosed)
	assert.NoError(t, p.Close())
}
