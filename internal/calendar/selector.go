package calendar

import (
	"sync"
	"time"
)

// DateRange is a possibly open range of days. End is never set without Start.
type DateRange struct {
	Start *CalendarDate `json:"start"`
	End   *CalendarDate `json:"end"`
}

// IsEmpty reports whether no endpoint is set.
func (r DateRange) IsEmpty() bool { return r.Start == nil }

// IsOpen reports whether only the start is set.
func (r DateRange) IsOpen() bool { return r.Start != nil && r.End == nil }

// IsClosed reports whether both endpoints are set.
func (r DateRange) IsClosed() bool { return r.Start != nil && r.End != nil }

func (r DateRange) IsStart(d CalendarDate) bool {
	return r.Start != nil && r.Start.Equal(d)
}

func (r DateRange) IsEnd(d CalendarDate) bool {
	return r.End != nil && r.End.Equal(d)
}

// Between reports whether d lies strictly inside a closed range.
func (r DateRange) Between(d CalendarDate) bool {
	if !r.IsClosed() {
		return false
	}
	return d.After(*r.Start) && d.Before(*r.End)
}

func (r DateRange) clone() DateRange {
	out := DateRange{}
	if r.Start != nil {
		s := *r.Start
		out.Start = &s
	}
	if r.End != nil {
		e := *r.End
		out.End = &e
	}
	return out
}

// Clock returns the current instant.
type Clock func() time.Time

// ClickResult describes what a click did to the selector.
type ClickResult string

const (
	ClickIgnored   ClickResult = "ignored"
	ClickStarted   ClickResult = "started"
	ClickRestarted ClickResult = "restarted"
	ClickClosed    ClickResult = "closed"
)

// RangeListener is notified with the finalized range each time a range closes.
type RangeListener func(DateRange)

// Selector implements two-click range picking with past-day exclusion.
// It is owned by one session and is not safe for concurrent use.
type Selector struct {
	rng       DateRange
	now       Clock
	listeners []listener
	nextID    int
	mu        sync.Mutex // guards listeners only
}

type listener struct {
	id int
	fn RangeListener
}

// NewSelector creates an empty selector. A nil clock means time.Now.
func NewSelector(now Clock) *Selector {
	if now == nil {
		now = time.Now
	}
	return &Selector{now: now}
}

// Today is the current calendar day according to the selector clock.
func (s *Selector) Today() CalendarDate {
	return FromTime(s.now())
}

// IsPast reports whether d is strictly before today. Today is selectable.
func (s *Selector) IsPast(d CalendarDate) bool {
	return d.Before(s.Today())
}

// Click applies one calendar click.
func (s *Selector) Click(d CalendarDate) ClickResult {
	if s.IsPast(d) {
		return ClickIgnored
	}

	if s.rng.Start == nil || s.rng.IsClosed() {
		s.begin(d)
		return ClickStarted
	}

	if d.Before(*s.rng.Start) {
		s.begin(d)
		return ClickRestarted
	}

	end := d
	s.rng.End = &end
	s.notify(s.rng.clone())
	return ClickClosed
}

func (s *Selector) begin(d CalendarDate) {
	start := d
	s.rng = DateRange{Start: &start}
}

// Range returns a copy of the current selection.
func (s *Selector) Range() DateRange {
	return s.rng.clone()
}

// Restore replaces the selection, dropping an end without a start or an end before the start.
func (s *Selector) Restore(r DateRange) {
	r = r.clone()
	if r.Start == nil || (r.End != nil && r.End.Before(*r.Start)) {
		r.End = nil
	}
	s.rng = r
}

// Clear empties the selection.
func (s *Selector) Clear() {
	s.rng = DateRange{}
}

func (s *Selector) IsStart(d CalendarDate) bool { return s.rng.IsStart(d) }
func (s *Selector) IsEnd(d CalendarDate) bool   { return s.rng.IsEnd(d) }
func (s *Selector) Between(d CalendarDate) bool { return s.rng.Between(d) }

// Subscribe registers fn for range-closed notifications and returns a cancel func.
func (s *Selector) Subscribe(fn RangeListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Selector) notify(r DateRange) {
	s.mu.Lock()
	listeners := append([]listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(r.clone())
	}
}
