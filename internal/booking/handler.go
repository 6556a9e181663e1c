package booking

import (
	"fmt"
	"time"

	"rentacar/internal/calendar"
	"rentacar/internal/metrics"
	"rentacar/internal/overlay"
	"rentacar/internal/search"
	"rentacar/internal/slots"
)

// ActionKind names one user input applied to a session.
type ActionKind string

const (
	ActionClickDate          ActionKind = "click_date"
	ActionSelectPickup       ActionKind = "select_pickup"
	ActionSelectReturn       ActionKind = "select_return"
	ActionOpenDates          ActionKind = "open_dates"
	ActionSetLocation        ActionKind = "set_location"
	ActionToggleCategory     ActionKind = "toggle_category"
	ActionToggleSeats        ActionKind = "toggle_seats"
	ActionToggleTransmission ActionKind = "toggle_transmission"
	ActionToggleFuel         ActionKind = "toggle_fuel"
	ActionToggleDelivery     ActionKind = "toggle_free_delivery"
	ActionResetOptions       ActionKind = "reset_options"
	ActionPointerDown        ActionKind = "pointer_down"
)

// Action is one input. Only the field matching Kind is read.
type Action struct {
	Kind         ActionKind
	Date         calendar.CalendarDate
	Slot         slots.TimeSlot
	Location     string
	Category     string
	Seats        int
	Transmission search.Transmission
	Fuel         search.Fuel
	Point        overlay.Point
	Panel        overlay.Panel
	Bounds       *overlay.Rect
}

// View is a read-only snapshot of a session.
type View struct {
	ID        string        `json:"id"`
	Mode      Mode          `json:"mode"`
	CarID     string        `json:"car_id,omitempty"`
	Step      Step          `json:"step"`
	Category  string        `json:"category,omitempty"`
	Search    search.State  `json:"search"`
	Query     string        `json:"query"`
	LastClick string        `json:"last_click,omitempty"`
	Panel     overlay.Panel `json:"panel,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Apply processes one action and returns the resulting snapshot.
// Calendar and time actions must arrive in flow order; filter actions are accepted at any step.
func (s *Session) Apply(a Action) (View, error) {
	s.mu.Lock()
	view, err := s.apply(a)
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	if err != nil {
		return view, err
	}
	for _, fn := range observers {
		fn(view)
	}
	return view, nil
}

func (s *Session) apply(a Action) (View, error) {
	var click calendar.ClickResult

	switch a.Kind {
	case ActionClickDate:
		if s.step != StepDate {
			return s.view(""), fmt.Errorf("%w: %s at %s", ErrInvalidStep, a.Kind, s.step)
		}
		click = s.selector.Click(a.Date)
		metrics.IncSelectorClick(string(click))
		s.search.Dates = s.selector.Range()

	case ActionSelectPickup:
		if s.step != StepPickupTime {
			return s.view(""), fmt.Errorf("%w: %s at %s", ErrInvalidStep, a.Kind, s.step)
		}
		pickup, err := slots.Parse(string(a.Slot))
		if err != nil {
			return s.view(""), err
		}
		s.picker.SelectPickup(pickup)
		s.search.PickupTime = &pickup
		s.transition(StepReturnTime)

	case ActionSelectReturn:
		if s.step != StepReturnTime {
			return s.view(""), fmt.Errorf("%w: %s at %s", ErrInvalidStep, a.Kind, s.step)
		}
		ret, err := slots.Parse(string(a.Slot))
		if err != nil {
			return s.view(""), err
		}
		s.picker.SelectReturn(ret)
		s.search.ReturnTime = &ret
		if s.Mode == ModeDetail {
			s.transition(StepDone)
		} else {
			s.transition(StepOptions)
		}

	case ActionOpenDates:
		if s.step != StepDate && !s.transition(StepDate) {
			return s.view(""), fmt.Errorf("%w: %s at %s", ErrInvalidStep, a.Kind, s.step)
		}
		s.overlay.Open(overlay.Calendar, overlay.Rect{})

	case ActionPointerDown:
		if !a.Panel.Valid() {
			return s.view(""), fmt.Errorf("unknown panel %q", a.Panel)
		}
		if a.Bounds != nil {
			s.overlay.SetBounds(*a.Bounds)
		}
		res := s.overlay.PointerDown(a.Point, a.Panel)
		if res.Opened == overlay.Calendar && s.step != StepDate {
			s.transition(StepDate)
		}

	case ActionSetLocation:
		s.search.Location = a.Location
	case ActionToggleCategory:
		s.category = search.ToggleCategory(s.category, a.Category)
	case ActionToggleSeats:
		s.search.Options.ToggleSeats(a.Seats)
	case ActionToggleTransmission:
		s.search.Options.ToggleTransmission(a.Transmission)
	case ActionToggleFuel:
		s.search.Options.ToggleFuel(a.Fuel)
	case ActionToggleDelivery:
		s.search.Options.ToggleFreeDelivery()
	case ActionResetOptions:
		s.search.ResetOptions()

	default:
		return s.view(""), fmt.Errorf("unknown action %q", a.Kind)
	}

	s.touch()
	return s.view(click), nil
}

// View returns the current snapshot.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view("")
}

func (s *Session) view(click calendar.ClickResult) View {
	state := s.search
	state.Dates = s.selector.Range()
	return View{
		ID:        s.ID,
		Mode:      s.Mode,
		CarID:     s.CarID,
		Step:      s.step,
		Category:  s.category,
		Search:    state,
		Query:     state.ToQuery().Encode(),
		LastClick: string(click),
		Panel:     s.overlay.Current(),
		UpdatedAt: s.UpdatedAt,
	}
}

// Resume restores a finished selection carried in continuation params and
// moves the session to its final step. Only a session still on the date
// step can resume, and the start date must not be in the past.
func (s *Session) Resume(c Continuation) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepDate {
		return s.view(""), fmt.Errorf("%w: resume at %s", ErrInvalidStep, s.step)
	}
	if s.selector.IsPast(c.Start) {
		return s.view(""), fmt.Errorf("%w: start %s is in the past", calendar.ErrInvalidDate, c.Start.ISO())
	}

	start, end := c.Start, c.End
	s.selector.Restore(calendar.DateRange{Start: &start, End: &end})
	s.search.Dates = s.selector.Range()

	pickup, ret := c.StartTime, c.EndTime
	s.picker.SelectPickup(pickup)
	s.picker.SelectReturn(ret)
	s.search.PickupTime = &pickup
	s.search.ReturnTime = &ret

	s.step = StepOptions
	if s.Mode == ModeDetail {
		s.step = StepDone
	}
	s.overlay.Close()
	s.touch()
	return s.view(""), nil
}

// Months renders n calendar months starting at the current month.
func (s *Session) Months(n int) []calendar.MonthGrid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selector.Months(s.selector.Today(), n)
}

// Selection returns the finished range and times, failing while the range is open.
func (s *Session) Selection() (calendar.DateRange, slots.TimeSlot, slots.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.selector.Range()
	if !r.IsClosed() {
		return r, "", "", ErrIncomplete
	}
	return r, s.picker.PickupOrDefault(), s.picker.ReturnOrDefault(), nil
}

// Criteria returns the search state and category for a fleet query.
func (s *Session) Criteria() (string, search.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category, s.search
}
