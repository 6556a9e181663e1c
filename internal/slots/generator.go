// Package slots provides the half-hour time-of-day catalogue and the
// pickup/return time picker.
package slots

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeSlot is a time of day formatted as "HH:MM".
type TimeSlot string

const (
	// StepMinutes is the slot granularity.
	StepMinutes = 30
	// Count is the number of slots in a day.
	Count = 24 * 60 / StepMinutes
	// Default is the pickup and return time used when none was chosen.
	Default TimeSlot = "10:00"
)

var ErrInvalidSlot = errors.New("invalid time slot")

var all = mustGenerate("00:00", "24:00", StepMinutes)

// All returns the 48 slots of a day in order.
func All() []TimeSlot {
	out := make([]TimeSlot, len(all))
	copy(out, all)
	return out
}

// Generate builds slots from start (inclusive) to end (exclusive) every step minutes.
// end may be "24:00" to cover the whole day.
func Generate(start, end string, stepMinutes int) ([]TimeSlot, error) {
	if stepMinutes <= 0 {
		stepMinutes = StepMinutes
	}

	day := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	startTime, err := parseTimeOnDate(day, start)
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}
	endTime, err := parseTimeOnDate(day, end)
	if err != nil {
		return nil, fmt.Errorf("parse end time: %w", err)
	}

	step := time.Duration(stepMinutes) * time.Minute
	var out []TimeSlot
	for cursor := startTime; cursor.Before(endTime); cursor = cursor.Add(step) {
		out = append(out, TimeSlot(cursor.Format("15:04")))
	}
	return out, nil
}

func mustGenerate(start, end string, step int) []TimeSlot {
	out, err := Generate(start, end, step)
	if err != nil {
		panic(err)
	}
	return out
}

// Parse validates s against the slot catalogue.
func Parse(s string) (TimeSlot, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' || !isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[3]) || !isDigit(s[4]) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
	t, err := parseTimeOnDate(time.Time{}, s)
	if err != nil || t.Day() != 1 || t.Minute()%StepMinutes != 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
	return TimeSlot(s), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Minutes returns the offset of the slot from midnight.
func (t TimeSlot) Minutes() int {
	parsed, err := parseTimeOnDate(time.Time{}, string(t))
	if err != nil {
		return -1
	}
	return parsed.Hour()*60 + parsed.Minute()
}

func (t TimeSlot) String() string { return string(t) }

func parseTimeOnDate(date time.Time, timeStr string) (time.Time, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time format: %s", timeStr)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return time.Time{}, fmt.Errorf("invalid hour: %s", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return time.Time{}, fmt.Errorf("invalid minute: %s", parts[1])
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}
