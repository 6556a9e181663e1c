package search

import (
	"net/url"
	"strconv"

	"rentacar/internal/calendar"
	"rentacar/internal/slots"
)

// Query parameter names carried by a committed search.
const (
	ParamCity         = "city"
	ParamCategory     = "category"
	ParamTransmission = "transmission"
	ParamFuel         = "fuel"
	ParamSeats        = "seats"
)

// Default date window, in days from today, used when the URL carries no dates.
const (
	DefaultStartOffset = 1
	DefaultEndOffset   = 8
)

// State is the active search criteria of one browsing session.
type State struct {
	Location   string             `json:"location"`
	Dates      calendar.DateRange `json:"dates"`
	PickupTime *slots.TimeSlot    `json:"pickup_time"`
	ReturnTime *slots.TimeSlot    `json:"return_time"`
	Options    Options            `json:"options"`
}

// Defaults returns an empty search with the default date and time window.
func Defaults(today calendar.CalendarDate) State {
	start := today.AddDays(DefaultStartOffset)
	end := today.AddDays(DefaultEndOffset)
	pickup, ret := slots.Default, slots.Default
	return State{
		Dates:      calendar.DateRange{Start: &start, End: &end},
		PickupTime: &pickup,
		ReturnTime: &ret,
	}
}

// ToQuery serializes the location and option filters. Dates and times are not carried.
func (s State) ToQuery() url.Values {
	v := url.Values{}
	if city := CityFilter(s.Location); city != "" {
		v.Set(ParamCity, city)
	}
	if s.Options.Transmission != nil {
		v.Set(ParamTransmission, string(*s.Options.Transmission))
	}
	if s.Options.Fuel != nil {
		v.Set(ParamFuel, string(*s.Options.Fuel))
	}
	if s.Options.Seats != nil {
		v.Set(ParamSeats, strconv.Itoa(*s.Options.Seats))
	}
	return v
}

// FromQuery rebuilds a state from URL parameters. Date and time take the
// defaults relative to today. Malformed values are treated as absent.
func FromQuery(v url.Values, today calendar.CalendarDate) State {
	s := Defaults(today)
	s.Location = v.Get(ParamCity)

	if t, ok := ParseTransmission(v.Get(ParamTransmission)); ok {
		s.Options.Transmission = &t
	}
	if f, ok := ParseFuel(v.Get(ParamFuel)); ok {
		s.Options.Fuel = &f
	}
	if n, ok := ParseSeats(v.Get(ParamSeats)); ok {
		s.Options.Seats = &n
	}
	return s
}

// ParseSeats parses a positive decimal seat count.
func ParseSeats(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ResetOptions clears the option filters, leaving location, dates and times.
func (s *State) ResetOptions() {
	s.Options.Reset()
}
