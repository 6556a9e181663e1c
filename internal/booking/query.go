package booking

import (
	"fmt"
	"net/url"

	"rentacar/internal/calendar"
	"rentacar/internal/slots"
)

// Checkout continuation parameters.
const (
	ParamStart     = "start"
	ParamEnd       = "end"
	ParamStartTime = "startTime"
	ParamEndTime   = "endTime"
	ParamDays      = "days"
)

// Continuation is the selection carried from the car page to checkout.
type Continuation struct {
	Start     calendar.CalendarDate
	End       calendar.CalendarDate
	StartTime slots.TimeSlot
	EndTime   slots.TimeSlot
	Days      int
}

// ParseContinuation reads the checkout parameters. Dates are required;
// missing times fall back to the default slot. Days is recomputed from the
// dates and the incoming value is ignored.
func ParseContinuation(v url.Values) (Continuation, error) {
	start, err := calendar.ParseISO(v.Get(ParamStart))
	if err != nil {
		return Continuation{}, fmt.Errorf("%s: %w", ParamStart, err)
	}
	end, err := calendar.ParseISO(v.Get(ParamEnd))
	if err != nil {
		return Continuation{}, fmt.Errorf("%s: %w", ParamEnd, err)
	}
	if end.Before(start) {
		return Continuation{}, fmt.Errorf("%w: end before start", calendar.ErrInvalidDate)
	}

	startTime, err := slotOrDefault(v.Get(ParamStartTime))
	if err != nil {
		return Continuation{}, fmt.Errorf("%s: %w", ParamStartTime, err)
	}
	endTime, err := slotOrDefault(v.Get(ParamEndTime))
	if err != nil {
		return Continuation{}, fmt.Errorf("%s: %w", ParamEndTime, err)
	}

	return Continuation{
		Start:     start,
		End:       end,
		StartTime: startTime,
		EndTime:   endTime,
		Days:      RentalDays(start, end),
	}, nil
}

func slotOrDefault(raw string) (slots.TimeSlot, error) {
	if raw == "" {
		return slots.Default, nil
	}
	return slots.Parse(raw)
}
