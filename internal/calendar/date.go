// Package calendar provides calendar dates, the two-click range selector
// and month grids used by the search bar and the car booking widget.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ISOLayout is the wire format of a calendar date.
const ISOLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid calendar date")

// CalendarDate is a day on the Gregorian calendar. Month is 0-based.
// It encodes as YYYY-MM-DD text.
type CalendarDate struct {
	Day   int
	Month int
	Year  int
}

// New builds a date from a year, a 0-based month and a day of month.
func New(year, month, day int) CalendarDate {
	return CalendarDate{Day: day, Month: month, Year: year}
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) CalendarDate {
	return CalendarDate{Day: t.Day(), Month: int(t.Month()) - 1, Year: t.Year()}
}

// ParseISO parses a YYYY-MM-DD string.
func ParseISO(s string) (CalendarDate, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

// Valid reports whether d names an existing day.
func (d CalendarDate) Valid() bool {
	if d.Month < 0 || d.Month > 11 || d.Day < 1 {
		return false
	}
	return d.Day <= daysIn(time.Month(d.Month+1), d.Year)
}

// Time returns midnight UTC of d.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month+1), d.Day, 0, 0, 0, 0, time.UTC)
}

// Ordinal is the absolute day number of d, counted from 1970-01-01.
func (d CalendarDate) Ordinal() int {
	return int(d.Time().Unix() / 86400)
}

// Compare returns -1, 0 or 1 when d is before, equal to or after other.
func (d CalendarDate) Compare(other CalendarDate) int {
	a, b := d.Ordinal(), other.Ordinal()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (d CalendarDate) Before(other CalendarDate) bool { return d.Compare(other) < 0 }
func (d CalendarDate) After(other CalendarDate) bool  { return d.Compare(other) > 0 }
func (d CalendarDate) Equal(other CalendarDate) bool  { return d.Compare(other) == 0 }

// AddDays returns d shifted by n days.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// ISO formats d as YYYY-MM-DD.
func (d CalendarDate) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month+1, d.Day)
}

func (d CalendarDate) String() string {
	return d.ISO()
}

func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.ISO()), nil
}

func (d *CalendarDate) UnmarshalText(text []byte) error {
	parsed, err := ParseISO(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween is the absolute whole-day distance between two dates.
func DaysBetween(a, b CalendarDate) int {
	n := b.Ordinal() - a.Ordinal()
	if n < 0 {
		return -n
	}
	return n
}

func daysIn(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
