package search

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar/internal/calendar"
	"rentacar/internal/slots"
)

var today = calendar.New(2026, 1, 5)

func TestToQuery(t *testing.T) {
	manual := Manual
	diesel := Diesel
	four := 4

	tests := []struct {
		name  string
		state State
		want  url.Values
	}{
		{
			name:  "empty state emits nothing",
			state: State{},
			want:  url.Values{},
		},
		{
			name:  "all cities sentinel is skipped",
			state: State{Location: AllCities},
			want:  url.Values{},
		},
		{
			name: "every field",
			state: State{
				Location: "Rabat",
				Options:  Options{Seats: &four, Transmission: &manual, Fuel: &diesel, FreeDelivery: true},
			},
			want: url.Values{
				"city":         {"Rabat"},
				"transmission": {"Manuelle"},
				"fuel":         {"Diesel"},
				"seats":        {"4"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.ToQuery())
		})
	}
}

func TestFromQuery_Defaults(t *testing.T) {
	s := FromQuery(url.Values{}, today)

	require.NotNil(t, s.Dates.Start)
	require.NotNil(t, s.Dates.End)
	assert.Equal(t, "2026-02-06", s.Dates.Start.ISO())
	assert.Equal(t, "2026-02-13", s.Dates.End.ISO())
	assert.Equal(t, slots.TimeSlot("10:00"), *s.PickupTime)
	assert.Equal(t, slots.TimeSlot("10:00"), *s.ReturnTime)
	assert.Zero(t, s.Options.Active())
}

func TestFromQuery_MalformedValuesAreAbsent(t *testing.T) {
	s := FromQuery(url.Values{
		"city":         {"Agadir"},
		"seats":        {"four"},
		"transmission": {"CVT"},
		"fuel":         {"Électrique"},
	}, today)

	assert.Equal(t, "Agadir", s.Location)
	assert.Nil(t, s.Options.Seats)
	assert.Nil(t, s.Options.Transmission)
	require.NotNil(t, s.Options.Fuel)
	assert.Equal(t, Electric, *s.Options.Fuel)
}

func TestQueryRoundTrip(t *testing.T) {
	cases := []url.Values{
		{},
		{"city": {"Casablanca"}},
		{"seats": {"7"}},
		{"transmission": {"Automatique"}, "fuel": {"Hybride"}},
		{"city": {"Fès"}, "transmission": {"Manuelle"}, "fuel": {"Essence"}, "seats": {"2"}},
	}

	for _, p := range cases {
		t.Run(p.Encode(), func(t *testing.T) {
			once := FromQuery(p, today).ToQuery()
			assert.Equal(t, p, once)
			assert.Equal(t, once, FromQuery(once, today).ToQuery())
		})
	}
}

func TestOptions_Toggles(t *testing.T) {
	var o Options

	o.ToggleSeats(4)
	require.NotNil(t, o.Seats)
	assert.Equal(t, 4, *o.Seats)

	o.ToggleTransmission(Automatic)
	o.ToggleSeats(4)
	assert.Nil(t, o.Seats)
	require.NotNil(t, o.Transmission, "other fields are untouched")

	o.ToggleSeats(5)
	o.ToggleSeats(7)
	assert.Equal(t, 7, *o.Seats)

	o.ToggleTransmission(Automatic)
	assert.Nil(t, o.Transmission)
	o.ToggleTransmission(Manual)
	assert.Equal(t, Manual, *o.Transmission)

	o.ToggleFuel(Hybrid)
	o.ToggleFuel(Hybrid)
	assert.Nil(t, o.Fuel)

	o.ToggleFreeDelivery()
	assert.True(t, o.FreeDelivery)
	o.ToggleFreeDelivery()
	assert.False(t, o.FreeDelivery)
}

func TestState_ResetOptions(t *testing.T) {
	s := FromQuery(url.Values{"city": {"Rabat"}, "seats": {"5"}, "fuel": {"Diesel"}}, today)
	s.Options.ToggleFreeDelivery()
	dates := s.Dates

	s.ResetOptions()

	assert.Equal(t, Options{}, s.Options)
	assert.Equal(t, "Rabat", s.Location)
	assert.Equal(t, dates, s.Dates)
	assert.NotNil(t, s.PickupTime)
}

func TestToggleCategory(t *testing.T) {
	assert.Equal(t, "SUV / 4x4", ToggleCategory("", "SUV / 4x4"))
	assert.Equal(t, "", ToggleCategory("SUV / 4x4", "SUV / 4x4"))
	assert.Equal(t, "Luxury", ToggleCategory("Sport", "Luxury"))
}

func TestCatalogs(t *testing.T) {
	assert.Equal(t, AllCities, Cities[0])
	assert.Len(t, Cities, 21)
	assert.Len(t, Categories, 8)
	assert.True(t, IsCategory("Van / MPV"))
	assert.False(t, IsCategory("Truck"))

	_, ok := ParseTransmission("Manual")
	assert.False(t, ok, "only wire values parse")
	assert.Equal(t, "", CityFilter(AllCities))
	assert.Equal(t, "casa", CityFilter("casa"))
	assert.Equal(t, "Casa", CityFilter(" Casa "))
	assert.Equal(t, "", CityFilter("  "))
}
