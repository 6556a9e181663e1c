package booking

import (
	"net/url"
	"strconv"

	"rentacar/internal/calendar"
	"rentacar/internal/models"
	"rentacar/internal/slots"
)

// Draft is the derived, unsaved economics of a prospective reservation.
type Draft struct {
	CarID      string                `json:"car_id"`
	StartDate  calendar.CalendarDate `json:"start_date"`
	EndDate    calendar.CalendarDate `json:"end_date"`
	PickupTime slots.TimeSlot        `json:"pickup_time"`
	ReturnTime slots.TimeSlot        `json:"return_time"`
	Days       int                   `json:"days"`
	TotalPrice float64               `json:"total_price"`
	Deposit    float64               `json:"deposit"`
}

// RentalDays is the whole-day distance between start and end, at least one.
func RentalDays(start, end calendar.CalendarDate) int {
	days := calendar.DaysBetween(start, end)
	if days < 1 {
		return 1
	}
	return days
}

// BuildDraft prices a finished selection for car. The deposit is passed through.
func BuildDraft(car *models.Car, start, end calendar.CalendarDate, pickup, ret slots.TimeSlot) Draft {
	days := RentalDays(start, end)
	return Draft{
		CarID:      car.ID,
		StartDate:  start,
		EndDate:    end,
		PickupTime: pickup,
		ReturnTime: ret,
		Days:       days,
		TotalPrice: car.PricePerDay * float64(days),
		Deposit:    car.Deposit,
	}
}

// Draft builds the draft of a finished session for car.
func (s *Session) Draft(car *models.Car) (Draft, error) {
	r, pickup, ret, err := s.Selection()
	if err != nil {
		return Draft{}, err
	}
	return BuildDraft(car, *r.Start, *r.End, pickup, ret), nil
}

// Query returns the checkout continuation parameters.
func (d Draft) Query() url.Values {
	v := url.Values{}
	v.Set(ParamStart, d.StartDate.ISO())
	v.Set(ParamEnd, d.EndDate.ISO())
	v.Set(ParamStartTime, string(d.PickupTime))
	v.Set(ParamEndTime, string(d.ReturnTime))
	v.Set(ParamDays, strconv.Itoa(d.Days))
	return v
}
