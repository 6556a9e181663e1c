package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar/internal/calendar"
	"rentacar/internal/overlay"
	"rentacar/internal/search"
	"rentacar/internal/slots"
)

func day(year, month, d int) calendar.CalendarDate {
	return calendar.New(year, month-1, d)
}

func TestSession_SearchFlow(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(ModeSearch, "", clock.Now)

	v, err := s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 9)})
	require.NoError(t, err)
	assert.Equal(t, StepDate, v.Step)
	assert.Equal(t, "started", v.LastClick)

	v, err = s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 16)})
	require.NoError(t, err)
	assert.Equal(t, StepPickupTime, v.Step, "closing the range moves to pickup time")
	assert.Equal(t, "closed", v.LastClick)
	require.True(t, v.Search.Dates.IsClosed())

	v, err = s.Apply(Action{Kind: ActionSelectPickup, Slot: "09:30"})
	require.NoError(t, err)
	assert.Equal(t, StepReturnTime, v.Step)

	v, err = s.Apply(Action{Kind: ActionSelectReturn, Slot: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, StepOptions, v.Step)
	assert.Equal(t, slots.TimeSlot("09:30"), *v.Search.PickupTime)
	assert.Equal(t, slots.TimeSlot("08:00"), *v.Search.ReturnTime)
}

func TestSession_DetailFlowEndsDone(t *testing.T) {
	s := NewSession(ModeDetail, "car-1", newFakeClock().Now)

	steps := []Action{
		{Kind: ActionClickDate, Date: day(2026, 2, 9)},
		{Kind: ActionClickDate, Date: day(2026, 2, 9)},
		{Kind: ActionSelectPickup, Slot: "10:00"},
		{Kind: ActionSelectReturn, Slot: "10:00"},
	}
	var v View
	for _, a := range steps {
		var err error
		v, err = s.Apply(a)
		require.NoError(t, err)
	}
	assert.Equal(t, StepDone, v.Step)
	assert.Equal(t, "car-1", v.CarID)
}

func TestSession_OutOfOrderActionsRejected(t *testing.T) {
	s := NewSession(ModeSearch, "", newFakeClock().Now)

	_, err := s.Apply(Action{Kind: ActionSelectPickup, Slot: "10:00"})
	assert.True(t, errors.Is(err, ErrInvalidStep))

	_, err = s.Apply(Action{Kind: ActionSelectReturn, Slot: "10:00"})
	assert.True(t, errors.Is(err, ErrInvalidStep))

	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 9)})
	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 10)})

	_, err = s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 11)})
	assert.True(t, errors.Is(err, ErrInvalidStep), "calendar is closed at the pickup step")
	assert.Equal(t, StepPickupTime, s.Step())
}

func TestSession_PastClickIgnored(t *testing.T) {
	s := NewSession(ModeSearch, "", newFakeClock().Now)

	v, err := s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 1, 31)})
	require.NoError(t, err)
	assert.Equal(t, "ignored", v.LastClick)
	assert.True(t, v.Search.Dates.IsEmpty())
	assert.Equal(t, StepDate, v.Step)
}

func TestSession_ReopenDatesStartsNewRange(t *testing.T) {
	s := NewSession(ModeSearch, "", newFakeClock().Now)
	for _, a := range []Action{
		{Kind: ActionClickDate, Date: day(2026, 2, 9)},
		{Kind: ActionClickDate, Date: day(2026, 2, 12)},
		{Kind: ActionSelectPickup, Slot: "10:00"},
		{Kind: ActionSelectReturn, Slot: "10:00"},
	} {
		_, err := s.Apply(a)
		require.NoError(t, err)
	}

	v, err := s.Apply(Action{Kind: ActionOpenDates})
	require.NoError(t, err)
	assert.Equal(t, StepDate, v.Step)
	assert.True(t, v.Search.Dates.IsClosed(), "reopening keeps the previous range visible")

	v, err = s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 3, 1)})
	require.NoError(t, err)
	assert.True(t, v.Search.Dates.IsOpen())
	assert.Equal(t, day(2026, 3, 1), *v.Search.Dates.Start)
}

func TestSession_FilterActions(t *testing.T) {
	s := NewSession(ModeSearch, "", newFakeClock().Now)

	apply := func(a Action) View {
		v, err := s.Apply(a)
		require.NoError(t, err)
		return v
	}

	apply(Action{Kind: ActionSetLocation, Location: "Marrakech"})
	apply(Action{Kind: ActionToggleSeats, Seats: 5})
	apply(Action{Kind: ActionToggleTransmission, Transmission: search.Automatic})
	apply(Action{Kind: ActionToggleFuel, Fuel: search.Diesel})
	v := apply(Action{Kind: ActionToggleCategory, Category: "SUV / 4x4"})

	assert.Equal(t, "SUV / 4x4", v.Category)
	assert.Equal(t, "city=Marrakech&fuel=Diesel&seats=5&transmission=Automatique", v.Query)

	v = apply(Action{Kind: ActionToggleSeats, Seats: 5})
	assert.Nil(t, v.Search.Options.Seats)

	v = apply(Action{Kind: ActionToggleDelivery})
	assert.True(t, v.Search.Options.FreeDelivery)

	v = apply(Action{Kind: ActionResetOptions})
	assert.Equal(t, search.Options{}, v.Search.Options)
	assert.Equal(t, "Marrakech", v.Search.Location)
	assert.Equal(t, "city=Marrakech", v.Query)

	v = apply(Action{Kind: ActionToggleCategory, Category: "SUV / 4x4"})
	assert.Empty(t, v.Category)

	_, err := s.Apply(Action{Kind: "teleport"})
	assert.Error(t, err)
}

func TestSession_ObserversNotified(t *testing.T) {
	s := NewSession(ModeSearch, "", newFakeClock().Now)

	var seen []Step
	s.Subscribe(func(v View) { seen = append(seen, v.Step) })

	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 9)})
	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 10)})
	s.Apply(Action{Kind: ActionSelectReturn, Slot: "10:00"}) // rejected, no notification

	assert.Equal(t, []Step{StepDate, StepPickupTime}, seen)
}

func TestSession_Months(t *testing.T) {
	s := NewSession(ModeSearch, "", newFakeClock().Now)
	grids := s.Months(2)
	require.Len(t, grids, 2)
	assert.Equal(t, 1, grids[0].Month)
	assert.Equal(t, 2, grids[1].Month)
}

func TestSession_InvalidSlotRejected(t *testing.T) {
	s := NewSession(ModeSearch, "", newFakeClock().Now)
	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 9)})
	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 10)})

	_, err := s.Apply(Action{Kind: ActionSelectPickup, Slot: "10:15"})
	assert.ErrorIs(t, err, slots.ErrInvalidSlot)
	assert.Equal(t, StepPickupTime, s.Step())
}

func TestSession_PanelFollowsFlow(t *testing.T) {
	s := NewSession(ModeSearch, "", newFakeClock().Now)
	bounds := &overlay.Rect{X: 0, Y: 100, Width: 600, Height: 400}

	v, err := s.Apply(Action{Kind: ActionPointerDown, Point: overlay.Point{X: 20, Y: 20}, Panel: overlay.Calendar})
	require.NoError(t, err)
	assert.Equal(t, overlay.Calendar, v.Panel)

	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 9)})
	v, _ = s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 10)})
	assert.Equal(t, overlay.Times, v.Panel)

	// Click inside the times popover keeps it open.
	v, err = s.Apply(Action{Kind: ActionPointerDown, Point: overlay.Point{X: 50, Y: 150}, Bounds: bounds})
	require.NoError(t, err)
	assert.Equal(t, overlay.Times, v.Panel)

	s.Apply(Action{Kind: ActionSelectPickup, Slot: "10:00"})
	v, _ = s.Apply(Action{Kind: ActionSelectReturn, Slot: "10:00"})
	assert.Equal(t, overlay.Options, v.Panel)

	// Clicking the calendar trigger from the options panel closes options and reopens the dates.
	v, err = s.Apply(Action{Kind: ActionPointerDown, Point: overlay.Point{X: 20, Y: 20}, Panel: overlay.Calendar})
	require.NoError(t, err)
	assert.Equal(t, overlay.Calendar, v.Panel)
	assert.Equal(t, StepDate, v.Step)

	// The same trigger again toggles the calendar closed.
	v, _ = s.Apply(Action{Kind: ActionPointerDown, Point: overlay.Point{X: 20, Y: 20}, Panel: overlay.Calendar})
	assert.Equal(t, overlay.None, v.Panel)

	_, err = s.Apply(Action{Kind: ActionPointerDown, Panel: "map"})
	assert.Error(t, err)
}

func TestSession_DetailDoneClosesPanel(t *testing.T) {
	s := NewSession(ModeDetail, "car-1", newFakeClock().Now)
	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 9)})
	s.Apply(Action{Kind: ActionClickDate, Date: day(2026, 2, 10)})
	s.Apply(Action{Kind: ActionSelectPickup, Slot: "10:00"})
	v, err := s.Apply(Action{Kind: ActionSelectReturn, Slot: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, StepDone, v.Step)
	assert.Equal(t, overlay.None, v.Panel)
}

func TestSession_Resume(t *testing.T) {
	c := Continuation{Start: day(2026, 2, 9), End: day(2026, 2, 16), StartTime: "09:00", EndTime: "18:30", Days: 7}

	t.Run("detail session ends done", func(t *testing.T) {
		s := NewSession(ModeDetail, "car-1", newFakeClock().Now)
		v, err := s.Resume(c)
		require.NoError(t, err)
		assert.Equal(t, StepDone, v.Step)
		assert.Equal(t, overlay.None, v.Panel)

		r, pickup, ret, err := s.Selection()
		require.NoError(t, err)
		assert.True(t, r.Start.Equal(c.Start))
		assert.True(t, r.End.Equal(c.End))
		assert.Equal(t, slots.TimeSlot("09:00"), pickup)
		assert.Equal(t, slots.TimeSlot("18:30"), ret)
	})

	t.Run("search session ends on options", func(t *testing.T) {
		s := NewSession(ModeSearch, "", newFakeClock().Now)
		v, err := s.Resume(c)
		require.NoError(t, err)
		assert.Equal(t, StepOptions, v.Step)
		require.NotNil(t, v.Search.PickupTime)
		assert.Equal(t, slots.TimeSlot("09:00"), *v.Search.PickupTime)
	})

	t.Run("past start rejected", func(t *testing.T) {
		s := NewSession(ModeDetail, "car-1", newFakeClock().Now)
		past := c
		past.Start = day(2026, 1, 20)
		_, err := s.Resume(past)
		assert.ErrorIs(t, err, calendar.ErrInvalidDate)
		assert.Equal(t, StepDate, s.Step())
	})

	t.Run("only from the date step", func(t *testing.T) {
		s := NewSession(ModeDetail, "car-1", newFakeClock().Now)
		_, err := s.Resume(c)
		require.NoError(t, err)
		_, err = s.Resume(c)
		assert.ErrorIs(t, err, ErrInvalidStep)
	})
}
