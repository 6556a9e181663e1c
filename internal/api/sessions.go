package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rentacar/internal/booking"
	"rentacar/internal/calendar"
	"rentacar/internal/fleet"
	"rentacar/internal/metrics"
	"rentacar/internal/overlay"
	"rentacar/internal/search"
	"rentacar/internal/slots"
)

const maxCalendarMonths = 12

type createSessionRequest struct {
	Mode  string `json:"mode"`
	CarID string `json:"car_id,omitempty"`
}

type locationRequest struct {
	Location string `json:"location"`
}

type dateRequest struct {
	Date string `json:"date"`
}

type slotRequest struct {
	Time string `json:"time"`
}

type optionsRequest struct {
	Category     *string `json:"category,omitempty"`
	Seats        *int    `json:"seats,omitempty"`
	Transmission *string `json:"transmission,omitempty"`
	Fuel         *string `json:"fuel,omitempty"`
	FreeDelivery *bool   `json:"free_delivery,omitempty"`
}

type pointerRequest struct {
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Panel  overlay.Panel `json:"panel"`
	Bounds *overlay.Rect `json:"bounds,omitempty"`
}

type searchResponse struct {
	Query   string        `json:"query"`
	Listing fleet.Listing `json:"listing"`
}

type continueResponse struct {
	Draft booking.Draft `json:"draft"`
	Query string        `json:"query"`
}

// POST /api/sessions
// Checkout continuation params in the query string resume a finished selection.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	mode, err := booking.ParseMode(req.Mode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if mode == booking.ModeDetail {
		if req.CarID == "" {
			writeError(w, http.StatusBadRequest, "car_id is required in detail mode")
			return
		}
		if _, err := s.fleet.Car(r.Context(), req.CarID); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	var resume *booking.Continuation
	if q := r.URL.Query(); q.Get(booking.ParamStart) != "" {
		c, err := booking.ParseContinuation(q)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resume = &c
	}

	session := s.sessions.Create(mode, req.CarID)
	metrics.SetActiveSessions(s.sessions.Len())
	if resume == nil {
		writeJSON(w, http.StatusCreated, session.View())
		return
	}

	view, err := session.Resume(*resume)
	if err != nil {
		s.sessions.Delete(session.ID)
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*booking.Session, bool) {
	session, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return session, true
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, session *booking.Session, actions ...booking.Action) {
	var view booking.View
	for _, a := range actions {
		v, err := session.Apply(a)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		view = v
	}
	if len(actions) == 0 {
		view = session.View()
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

// GET /api/sessions/{id}/calendar?months=2
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	months := 2
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxCalendarMonths {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("months must be between 1 and %d", maxCalendarMonths))
			return
		}
		months = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"weekdays": calendar.WeekdayLabels,
		"months":   session.Months(months),
	})
}

// POST /api/sessions/{id}/location
func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.apply(w, r, session, booking.Action{Kind: booking.ActionSetLocation, Location: req.Location})
}

// POST /api/sessions/{id}/dates
func (s *Server) handleClickDate(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req dateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	date, err := calendar.ParseISO(req.Date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.apply(w, r, session, booking.Action{Kind: booking.ActionClickDate, Date: date})
}

// POST /api/sessions/{id}/dates/open
func (s *Server) handleOpenDates(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	s.apply(w, r, session, booking.Action{Kind: booking.ActionOpenDates})
}

// POST /api/sessions/{id}/pickup and /return
func (s *Server) handleSlot(kind booking.ActionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.session(w, r)
		if !ok {
			return
		}
		var req slotRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		s.apply(w, r, session, booking.Action{Kind: kind, Slot: slots.TimeSlot(req.Time)})
	}
}

// POST /api/sessions/{id}/options toggles each field present in the body.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req optionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var actions []booking.Action
	if req.Category != nil {
		if !search.IsCategory(*req.Category) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", *req.Category))
			return
		}
		actions = append(actions, booking.Action{Kind: booking.ActionToggleCategory, Category: *req.Category})
	}
	if req.Seats != nil {
		if *req.Seats <= 0 {
			writeError(w, http.StatusBadRequest, "seats must be positive")
			return
		}
		actions = append(actions, booking.Action{Kind: booking.ActionToggleSeats, Seats: *req.Seats})
	}
	if req.Transmission != nil {
		t, ok := search.ParseTransmission(*req.Transmission)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown transmission %q", *req.Transmission))
			return
		}
		actions = append(actions, booking.Action{Kind: booking.ActionToggleTransmission, Transmission: t})
	}
	if req.Fuel != nil {
		f, ok := search.ParseFuel(*req.Fuel)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown fuel %q", *req.Fuel))
			return
		}
		actions = append(actions, booking.Action{Kind: booking.ActionToggleFuel, Fuel: f})
	}
	if req.FreeDelivery != nil && *req.FreeDelivery {
		actions = append(actions, booking.Action{Kind: booking.ActionToggleDelivery})
	}
	s.apply(w, r, session, actions...)
}

// POST /api/sessions/{id}/options/reset
func (s *Server) handleResetOptions(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	s.apply(w, r, session, booking.Action{Kind: booking.ActionResetOptions})
}

// POST /api/sessions/{id}/pointer
func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req pointerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !req.Panel.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown panel %q", req.Panel))
		return
	}
	s.apply(w, r, session, booking.Action{
		Kind:   booking.ActionPointerDown,
		Point:  overlay.Point{X: req.X, Y: req.Y},
		Panel:  req.Panel,
		Bounds: req.Bounds,
	})
}

// POST /api/sessions/{id}/search returns the listing query and the matching fleet.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	category, state := session.Criteria()
	view := session.View()
	listing := s.fleet.Browse(r.Context(), fleet.CriteriaFromState(category, state))
	writeJSON(w, http.StatusOK, searchResponse{Query: view.Query, Listing: listing})
}

// POST /api/sessions/{id}/continue prices a finished detail selection.
func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	if session.Mode != booking.ModeDetail {
		writeError(w, http.StatusConflict, "continue is only available in detail mode")
		return
	}
	if step := session.Step(); step != booking.StepDone {
		s.fail(w, r, fmt.Errorf("%w: continue at %s", booking.ErrInvalidStep, step))
		return
	}

	car, err := s.fleet.Car(r.Context(), session.CarID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	draft, err := session.Draft(car)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, continueResponse{Draft: draft, Query: draft.Query().Encode()})
}
