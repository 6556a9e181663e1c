// Package booking provides the FSM-driven date and time selection flow
// shared by the search bar and the car booking widget, and the booking
// draft derived from a finished selection.
package booking

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentacar/internal/calendar"
	"rentacar/internal/overlay"
	"rentacar/internal/search"
	"rentacar/internal/slots"
)

// Step is the current stage of a selection session.
type Step string

const (
	StepDate       Step = "date"
	StepPickupTime Step = "pickup_time"
	StepReturnTime Step = "return_time"
	StepOptions    Step = "options"
	StepDone       Step = "done"
)

// Mode selects where the flow ends after the return time.
type Mode string

const (
	// ModeSearch ends on the options panel of the search bar.
	ModeSearch Mode = "search"
	// ModeDetail ends by closing the picker of the car detail widget.
	ModeDetail Mode = "detail"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidStep     = errors.New("action not allowed at this step")
	ErrInvalidMode     = errors.New("invalid session mode")
	ErrIncomplete      = errors.New("date range is not complete")
)

// ParseMode validates a mode string. Empty means search.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeSearch:
		return ModeSearch, nil
	case ModeDetail:
		return ModeDetail, nil
	default:
		return "", ErrInvalidMode
	}
}

// FSM manages step transitions for one mode.
type FSM struct {
	transitions map[Step][]Step
}

// NewFSM creates the linear flow date -> pickup -> return -> options|done.
// Every step may reopen the calendar.
func NewFSM(mode Mode) *FSM {
	final := StepOptions
	if mode == ModeDetail {
		final = StepDone
	}
	return &FSM{
		transitions: map[Step][]Step{
			StepDate:       {StepPickupTime},
			StepPickupTime: {StepReturnTime, StepDate},
			StepReturnTime: {final, StepPickupTime, StepDate},
			final:          {StepDate},
		},
	}
}

// CanTransition checks if transition is allowed.
func (f *FSM) CanTransition(from, to Step) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Observer receives a snapshot after every change to a session.
type Observer func(View)

// Session is one selection flow: a range selector, a time picker and the
// search criteria they feed. All access goes through the session lock.
type Session struct {
	ID        string
	Mode      Mode
	CarID     string
	StartedAt time.Time
	UpdatedAt time.Time

	step     Step
	fsm      *FSM
	selector *calendar.Selector
	picker   *slots.Picker
	overlay  *overlay.Manager
	search   search.State
	category string
	clock    calendar.Clock

	observers []Observer
	mu        sync.Mutex
}

// NewSession creates a session positioned on the calendar step.
func NewSession(mode Mode, carID string, clock calendar.Clock) *Session {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	s := &Session{
		ID:        uuid.NewString(),
		Mode:      mode,
		CarID:     carID,
		StartedAt: now,
		UpdatedAt: now,
		step:      StepDate,
		fsm:       NewFSM(mode),
		selector:  calendar.NewSelector(clock),
		picker:    slots.NewPicker(),
		overlay:   overlay.NewManager(),
		clock:     clock,
	}
	s.search = search.Defaults(s.selector.Today())
	s.search.Dates = calendar.DateRange{}
	s.search.PickupTime = nil
	s.search.ReturnTime = nil

	// A closed range moves the flow to the pickup time.
	s.selector.Subscribe(func(r calendar.DateRange) {
		s.search.Dates = r
		s.transition(StepPickupTime)
	})
	return s
}

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Subscribe registers an observer notified after each applied action.
func (s *Session) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// IsExpired checks if session has expired.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock().Sub(s.UpdatedAt) > timeout
}

// transition moves to the given step when allowed. Caller holds the lock.
func (s *Session) transition(to Step) bool {
	if !s.fsm.CanTransition(s.step, to) {
		return false
	}
	s.step = to
	s.overlay.Open(panelFor(to), overlay.Rect{})
	return true
}

// panelFor is the popover shown at a step.
func panelFor(step Step) overlay.Panel {
	switch step {
	case StepDate:
		return overlay.Calendar
	case StepPickupTime, StepReturnTime:
		return overlay.Times
	case StepOptions:
		return overlay.Options
	default:
		return overlay.None
	}
}

func (s *Session) touch() {
	s.UpdatedAt = s.clock()
}

// SessionStore manages selection sessions.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
	clock    calendar.Clock
}

// NewSessionStore creates a new session store. A nil clock means time.Now.
func NewSessionStore(timeout time.Duration, clock calendar.Clock) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	if clock == nil {
		clock = time.Now
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		clock:    clock,
	}
}

// Create starts a new session.
func (ss *SessionStore) Create(mode Mode, carID string) *Session {
	session := NewSession(mode, carID, ss.clock)

	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[session.ID] = session
	return session
}

// Get returns a live session.
func (ss *SessionStore) Get(id string) (*Session, error) {
	ss.mu.RLock()
	session, ok := ss.sessions[id]
	ss.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired(ss.timeout) {
		ss.Delete(id)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session.
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, id)
}

// Len returns the number of stored sessions, expired ones included.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Cleanup removes expired sessions.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, session := range ss.sessions {
		if session.IsExpired(ss.timeout) {
			delete(ss.sessions, id)
			removed++
		}
	}
	return removed
}
