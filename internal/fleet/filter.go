// Package fleet filters and groups car records for the storefront listing
// and provides the fleet fetch collaborators.
package fleet

import (
	"encoding/json"
	"net/url"
	"strings"

	"rentacar/internal/models"
	"rentacar/internal/search"
)

// Criteria are the predicates applied to each car. Zero values mean no filter.
type Criteria struct {
	Category     string
	City         string
	Transmission *search.Transmission
	Fuel         *search.Fuel
	Seats        *int
}

// CriteriaFromState derives criteria from a search state and a category.
func CriteriaFromState(category string, s search.State) Criteria {
	return Criteria{
		Category:     category,
		City:         search.CityFilter(s.Location),
		Transmission: s.Options.Transmission,
		Fuel:         s.Options.Fuel,
		Seats:        s.Options.Seats,
	}
}

// CriteriaFromQuery derives criteria from listing URL parameters.
func CriteriaFromQuery(v url.Values) Criteria {
	c := Criteria{
		Category: v.Get(search.ParamCategory),
		City:     search.CityFilter(v.Get(search.ParamCity)),
	}
	if t, ok := search.ParseTransmission(v.Get(search.ParamTransmission)); ok {
		c.Transmission = &t
	}
	if f, ok := search.ParseFuel(v.Get(search.ParamFuel)); ok {
		c.Fuel = &f
	}
	if n, ok := search.ParseSeats(v.Get(search.ParamSeats)); ok {
		c.Seats = &n
	}
	return c
}

// Matches reports whether car passes every predicate.
func (c Criteria) Matches(car *models.Car) bool {
	if c.Category != "" && car.Category != c.Category {
		return false
	}
	if city := search.CityFilter(c.City); city != "" &&
		!strings.Contains(strings.ToLower(car.City), strings.ToLower(city)) {
		return false
	}
	if c.Transmission != nil && car.Transmission != string(*c.Transmission) {
		return false
	}
	if c.Fuel != nil && car.FuelType != string(*c.Fuel) {
		return false
	}
	if c.Seats != nil && car.Seats != *c.Seats {
		return false
	}
	return true
}

// Filter keeps the cars matching c and groups them by city.
// Input order is preserved inside each group and cities appear in first-seen order.
func Filter(cars []models.Car, c Criteria) *Grouped {
	g := NewGrouped()
	for i := range cars {
		if c.Matches(&cars[i]) {
			g.Add(cars[i])
		}
	}
	return g
}

// Grouped is an insertion-ordered mapping from city to cars.
type Grouped struct {
	cities []string
	cars   map[string][]models.Car
}

func NewGrouped() *Grouped {
	return &Grouped{cars: make(map[string][]models.Car)}
}

// Add appends car to its city group.
func (g *Grouped) Add(car models.Car) {
	if _, ok := g.cars[car.City]; !ok {
		g.cities = append(g.cities, car.City)
	}
	g.cars[car.City] = append(g.cars[car.City], car)
}

// Cities returns the group keys in insertion order.
func (g *Grouped) Cities() []string {
	out := make([]string, len(g.cities))
	copy(out, g.cities)
	return out
}

// Cars returns the cars of one city.
func (g *Grouped) Cars(city string) []models.Car {
	return g.cars[city]
}

// Len is the number of city groups.
func (g *Grouped) Len() int { return len(g.cities) }

// Total is the number of cars across all groups.
func (g *Grouped) Total() int {
	n := 0
	for _, cars := range g.cars {
		n += len(cars)
	}
	return n
}

// Group is one city and its cars.
type Group struct {
	City string       `json:"city"`
	Cars []models.Car `json:"cars"`
}

// Groups returns the groups in key order.
func (g *Grouped) Groups() []Group {
	out := make([]Group, 0, len(g.cities))
	for _, city := range g.cities {
		out = append(out, Group{City: city, Cars: g.cars[city]})
	}
	return out
}

// MarshalJSON encodes the groups as an ordered array.
func (g *Grouped) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Groups())
}
