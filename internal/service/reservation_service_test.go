package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentacar/internal/booking"
	"rentacar/internal/calendar"
	"rentacar/internal/database"
	"rentacar/internal/events"
	"rentacar/internal/models"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetCar(ctx context.Context, id string) (*models.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Car), args.Error(1)
}
func (m *mockRepo) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRepo) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockRepo) ListReservationsByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Reservation), args.Error(1)
}
func (m *mockRepo) UpdateReservationStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockRepo) CreatePartnerApplication(ctx context.Context, p *models.PartnerApplication) error {
	return m.Called(ctx, p).Error(0)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(ctx context.Context, et string, p interface{}) error {
	return m.Called(et, p).Error(0)
}

func newService(repo *mockRepo, bus *mockEventBus) *ReservationService {
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(repo, bus, &logger)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func validContact() Contact {
	return Contact{FirstName: "Amina", LastName: "Berrada", Email: "amina@example.com", Phone: "+212 600-000-000"}
}

func draftFor(carID string, start, end calendar.CalendarDate) booking.Draft {
	return booking.Draft{
		CarID: carID, StartDate: start, EndDate: end,
		PickupTime: "09:00", ReturnTime: "18:30",
		Days: 1, TotalPrice: 1, // client values are ignored
	}
}

func TestContact_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Contact)
		wantErr error
	}{
		{"valid", func(c *Contact) {}, nil},
		{"missing first name", func(c *Contact) { c.FirstName = "  " }, ErrInvalidContact},
		{"missing last name", func(c *Contact) { c.LastName = "" }, ErrInvalidContact},
		{"email without at", func(c *Contact) { c.Email = "amina.example.com" }, ErrInvalidContact},
		{"email ending in at", func(c *Contact) { c.Email = "amina@" }, ErrInvalidContact},
		{"short phone", func(c *Contact) { c.Phone = "06-12" }, ErrInvalidContact},
		{"six digit phone", func(c *Contact) { c.Phone = "12 34 56" }, nil},
		{"bad delivery", func(c *Contact) { c.DeliveryType = "drone" }, ErrInvalidOption},
		{"bad payment", func(c *Contact) { c.PaymentType = "crypto" }, ErrInvalidOption},
		{"online payment", func(c *Contact) { c.PaymentType = models.PaymentOnline }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContact()
			tt.mutate(&c)
			c.Normalize()
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReservationService_Submit(t *testing.T) {
	ctx := context.Background()
	car := &models.Car{ID: "duster", Brand: "Dacia", Model: "Duster", PricePerDay: 500, Deposit: 5000}

	t.Run("reprices and stores pending", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newService(repo, bus)

		repo.On("GetCar", ctx, "duster").Return(car, nil).Once()
		repo.On("CreateReservation", ctx, mock.MatchedBy(func(r *models.Reservation) bool {
			return r.Days == 7 && r.TotalPrice == 3500 && r.Deposit == 5000 &&
				r.Status == models.StatusPending && r.StartDate == "2026-02-09" && r.EndDate == "2026-02-16" &&
				r.StartTime == "09:00" && r.EndTime == "18:30" &&
				r.DeliveryType == models.DeliveryPickup && r.PaymentType == models.PaymentPickup &&
				r.UserID == "user-1"
		})).Return(nil).Once()
		bus.On("PublishJSON", events.ReservationCreated, mock.MatchedBy(func(p events.ReservationPayload) bool {
			return p.CarTitle == "Dacia Duster" && p.Reservation.TotalPrice == 3500
		})).Return(nil).Once()

		r, err := svc.Submit(ctx, draftFor("duster", calendar.New(2026, 1, 9), calendar.New(2026, 1, 16)), validContact(), "user-1")
		require.NoError(t, err)
		assert.NotEmpty(t, r.ID)
		assert.Equal(t, car, r.Car)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("same day is one day", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newService(repo, bus)

		repo.On("GetCar", ctx, "duster").Return(car, nil).Once()
		repo.On("CreateReservation", ctx, mock.Anything).Return(nil).Once()
		bus.On("PublishJSON", events.ReservationCreated, mock.Anything).Return(nil).Once()

		r, err := svc.Submit(ctx, draftFor("duster", calendar.New(2026, 1, 9), calendar.New(2026, 1, 9)), validContact(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1, r.Days)
		assert.Equal(t, 500.0, r.TotalPrice)
	})

	t.Run("publish failure does not fail submit", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newService(repo, bus)

		repo.On("GetCar", ctx, "duster").Return(car, nil).Once()
		repo.On("CreateReservation", ctx, mock.Anything).Return(nil).Once()
		bus.On("PublishJSON", events.ReservationCreated, mock.Anything).Return(errors.New("marshal")).Once()

		_, err := svc.Submit(ctx, draftFor("duster", calendar.New(2026, 1, 9), calendar.New(2026, 1, 10)), validContact(), "user-1")
		assert.NoError(t, err)
	})

	t.Run("unknown car", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newService(repo, new(mockEventBus))
		repo.On("GetCar", ctx, "ghost").Return(nil, database.ErrNotFound).Once()

		_, err := svc.Submit(ctx, draftFor("ghost", calendar.New(2026, 1, 9), calendar.New(2026, 1, 10)), validContact(), "user-1")
		assert.ErrorIs(t, err, database.ErrNotFound)
		repo.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
	})

	t.Run("invalid contact short-circuits", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newService(repo, new(mockEventBus))
		c := validContact()
		c.Email = "nope"

		_, err := svc.Submit(ctx, draftFor("duster", calendar.New(2026, 1, 9), calendar.New(2026, 1, 10)), c, "user-1")
		assert.ErrorIs(t, err, ErrInvalidContact)
		repo.AssertNotCalled(t, "GetCar", mock.Anything, mock.Anything)
	})

	t.Run("dates", func(t *testing.T) {
		svc := newService(new(mockRepo), new(mockEventBus))

		_, err := svc.Submit(ctx, draftFor("duster", calendar.New(2026, 0, 31), calendar.New(2026, 1, 2)), validContact(), "u")
		assert.ErrorIs(t, err, ErrInvalidDates, "past start")

		_, err = svc.Submit(ctx, draftFor("duster", calendar.New(2026, 1, 9), calendar.New(2026, 1, 8)), validContact(), "u")
		assert.ErrorIs(t, err, ErrInvalidDates, "end before start")

		_, err = svc.Submit(ctx, draftFor("duster", calendar.New(2026, 1, 30), calendar.New(2026, 2, 2)), validContact(), "u")
		assert.ErrorIs(t, err, ErrInvalidDates, "Feb 30")
	})
}

func TestReservationService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		from, to string
		allowed  bool
	}{
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusConfirmed, models.StatusCancelled, true},
		{models.StatusConfirmed, models.StatusPending, false},
		{models.StatusCancelled, models.StatusConfirmed, false},
		{models.StatusPending, "archived", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			repo := new(mockRepo)
			bus := new(mockEventBus)
			svc := newService(repo, bus)

			repo.On("GetReservation", ctx, "r1").Return(&models.Reservation{ID: "r1", Status: tt.from}, nil).Once()
			if tt.allowed {
				repo.On("UpdateReservationStatus", ctx, "r1", tt.to).Return(nil).Once()
				bus.On("PublishJSON", events.ReservationStatusChanged, mock.MatchedBy(func(p events.ReservationPayload) bool {
					return p.PreviousStatus == tt.from && p.Reservation.Status == tt.to
				})).Return(nil).Once()
			}

			r, err := svc.UpdateStatus(ctx, "r1", tt.to)
			if !tt.allowed {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				repo.AssertNotCalled(t, "UpdateReservationStatus", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, r.Status)
			repo.AssertExpectations(t)
			bus.AssertExpectations(t)
		})
	}

	t.Run("missing", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newService(repo, new(mockEventBus))
		repo.On("GetReservation", ctx, "nope").Return(nil, database.ErrNotFound).Once()

		_, err := svc.UpdateStatus(ctx, "nope", models.StatusConfirmed)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestReservationService_ListByUser(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := newService(repo, new(mockEventBus))

	list := []models.Reservation{{ID: "r2"}, {ID: "r1"}}
	repo.On("ListReservationsByUser", ctx, "u1").Return(list, nil).Once()
	repo.On("ListReservationsByUser", ctx, "u2").Return([]models.Reservation(nil), errors.New("db")).Once()

	got, err := svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, list, got)

	_, err = svc.ListByUser(ctx, "u2")
	assert.Error(t, err)
}

func TestReservationService_SubmitPartner(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	bus := new(mockEventBus)
	svc := newService(repo, bus)

	req := PartnerRequest{AgencyName: " Atlas Cars ", City: "Rabat", ContactName: "Youssef", Phone: "0611111111", Email: "y@atlas.example"}
	repo.On("CreatePartnerApplication", ctx, mock.MatchedBy(func(p *models.PartnerApplication) bool {
		return p.AgencyName == "Atlas Cars" && p.Status == models.PartnerStatusNew
	})).Return(nil).Once()
	bus.On("PublishJSON", events.PartnerApplied, mock.Anything).Return(nil).Once()

	app, err := svc.SubmitPartner(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	repo.AssertExpectations(t)

	req.Email = "bad"
	_, err = svc.SubmitPartner(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidContact)

	_, err = svc.SubmitPartner(ctx, PartnerRequest{Email: "a@b.c", Phone: "123456"})
	assert.ErrorIs(t, err, ErrInvalidContact)
}
