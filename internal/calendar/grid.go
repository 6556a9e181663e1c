package calendar

import (
	"fmt"
	"time"
)

// Cell is one square of a month grid. Padding cells have a nil Date.
type Cell struct {
	Date    *CalendarDate `json:"date,omitempty"`
	Label   string        `json:"label"`
	Past    bool          `json:"past,omitempty"`
	Start   bool          `json:"start,omitempty"`
	End     bool          `json:"end,omitempty"`
	Between bool          `json:"between,omitempty"`
}

// MonthGrid is a Monday-first month view.
type MonthGrid struct {
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Title string   `json:"title"`
	Weeks [][]Cell `json:"weeks"`
}

// WeekdayLabels are the grid column headers, Monday first.
var WeekdayLabels = []string{"Lu", "Ma", "Me", "Je", "Ve", "Sa", "Di"}

var monthNames = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// Months renders n consecutive months starting with the month of from.
// Cells carry the selector state so a renderer needs no further queries.
func (s *Selector) Months(from CalendarDate, n int) []MonthGrid {
	if n < 1 {
		n = 1
	}
	grids := make([]MonthGrid, 0, n)
	year, month := from.Year, from.Month
	for i := 0; i < n; i++ {
		grids = append(grids, s.month(year, month))
		month++
		if month > 11 {
			month = 0
			year++
		}
	}
	return grids
}

func (s *Selector) month(year, month int) MonthGrid {
	firstDay := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	weekdayOffset := int(firstDay.Weekday())
	if weekdayOffset == 0 {
		weekdayOffset = 7 // Monday-first grid
	}
	daysInMonth := daysIn(time.Month(month+1), year)

	grid := MonthGrid{Year: year, Month: month, Title: fmt.Sprintf("%s %d", monthNames[month], year)}

	day := 1
	for day <= daysInMonth {
		week := make([]Cell, 0, 7)
		for col := 1; col <= 7; col++ {
			if len(grid.Weeks) == 0 && col < weekdayOffset {
				week = append(week, Cell{})
				continue
			}
			if day > daysInMonth {
				week = append(week, Cell{})
				continue
			}
			d := New(year, month, day)
			week = append(week, Cell{
				Date:    &d,
				Label:   fmt.Sprintf("%d", day),
				Past:    s.IsPast(d),
				Start:   s.IsStart(d),
				End:     s.IsEnd(d),
				Between: s.Between(d),
			})
			day++
		}
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}
