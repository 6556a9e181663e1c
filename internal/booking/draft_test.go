package booking

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar/internal/calendar"
	"rentacar/internal/models"
	"rentacar/internal/slots"
)

func TestRentalDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end calendar.CalendarDate
		want       int
	}{
		{"same day counts as one", day(2026, 2, 9), day(2026, 2, 9), 1},
		{"one week", day(2026, 2, 9), day(2026, 2, 16), 7},
		{"across month end", day(2026, 1, 30), day(2026, 2, 2), 3},
		{"across year end", day(2025, 12, 31), day(2026, 1, 1), 1},
		{"reversed uses distance", day(2026, 2, 16), day(2026, 2, 9), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RentalDays(tt.start, tt.end))
		})
	}
}

func TestBuildDraft(t *testing.T) {
	car := &models.Car{ID: "car-1", PricePerDay: 500, Deposit: 5000}

	d := BuildDraft(car, day(2026, 2, 9), day(2026, 2, 16), "09:00", "18:30")
	assert.Equal(t, 7, d.Days)
	assert.Equal(t, 3500.0, d.TotalPrice)
	assert.Equal(t, 5000.0, d.Deposit)
	assert.Equal(t, "car-1", d.CarID)

	single := BuildDraft(car, day(2026, 2, 9), day(2026, 2, 9), slots.Default, slots.Default)
	assert.Equal(t, 1, single.Days)
	assert.Equal(t, 500.0, single.TotalPrice)
}

func TestSession_Draft(t *testing.T) {
	car := &models.Car{ID: "car-1", PricePerDay: 350, Deposit: 3000}
	s := NewSession(ModeDetail, car.ID, newFakeClock().Now)

	_, err := s.Draft(car)
	require.ErrorIs(t, err, ErrIncomplete)

	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 9)})
	_, err = s.Draft(car)
	require.ErrorIs(t, err, ErrIncomplete, "open range cannot be drafted")

	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 12)})
	d, err := s.Draft(car)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Days)
	assert.Equal(t, 1050.0, d.TotalPrice)
	assert.Equal(t, slots.Default, d.PickupTime, "times default until picked")
	assert.Equal(t, slots.Default, d.ReturnTime)

	s.Apply(Action{Kind: ActionSelectPickup, Slot: "08:30"})
	s.Apply(Action{Kind: ActionSelectReturn, Slot: "20:00"})
	d, err = s.Draft(car)
	require.NoError(t, err)
	assert.Equal(t, slots.TimeSlot("08:30"), d.PickupTime)
	assert.Equal(t, slots.TimeSlot("20:00"), d.ReturnTime)
}

func TestDraft_QueryRoundTrip(t *testing.T) {
	car := &models.Car{ID: "car-1", PricePerDay: 500}
	d := BuildDraft(car, day(2026, 2, 9), day(2026, 2, 16), "09:00", "18:30")

	q := d.Query()
	assert.Equal(t, "days=7&end=2026-02-16&endTime=18%3A30&start=2026-02-09&startTime=09%3A00", q.Encode())

	c, err := ParseContinuation(q)
	require.NoError(t, err)
	assert.Equal(t, d.StartDate, c.Start)
	assert.Equal(t, d.EndDate, c.End)
	assert.Equal(t, d.PickupTime, c.StartTime)
	assert.Equal(t, d.ReturnTime, c.EndTime)
	assert.Equal(t, 7, c.Days)
}

func TestParseContinuation(t *testing.T) {
	t.Run("days recomputed", func(t *testing.T) {
		c, err := ParseContinuation(url.Values{
			ParamStart: {"2026-02-09"},
			ParamEnd:   {"2026-02-11"},
			ParamDays:  {"30"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, c.Days)
		assert.Equal(t, slots.Default, c.StartTime)
		assert.Equal(t, slots.Default, c.EndTime)
	})

	errCases := []struct {
		name   string
		values url.Values
		target error
	}{
		{"missing start", url.Values{ParamEnd: {"2026-02-11"}}, calendar.ErrInvalidDate},
		{"bad end", url.Values{ParamStart: {"2026-02-09"}, ParamEnd: {"2026-02-30"}}, calendar.ErrInvalidDate},
		{"end before start", url.Values{ParamStart: {"2026-02-09"}, ParamEnd: {"2026-02-08"}}, calendar.ErrInvalidDate},
		{"bad time", url.Values{ParamStart: {"2026-02-09"}, ParamEnd: {"2026-02-10"}, ParamStartTime: {"10:15"}}, slots.ErrInvalidSlot},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseContinuation(tt.values)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}
