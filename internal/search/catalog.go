// Package search holds the search filter state shared by the search bar
// and the fleet listing, and its mapping to URL query parameters.
package search

import "strings"

// AllCities is the location sentinel meaning "no city filter".
const AllCities = "Toutes les villes"

// Transmission is a gearbox type, stored with its French wire value.
type Transmission string

const (
	Manual    Transmission = "Manuelle"
	Automatic Transmission = "Automatique"
)

// Fuel is an energy type, stored with its French wire value.
type Fuel string

const (
	Petrol   Fuel = "Essence"
	Diesel   Fuel = "Diesel"
	Hybrid   Fuel = "Hybride"
	Electric Fuel = "Électrique"
)

var (
	Transmissions = []Transmission{Manual, Automatic}
	Fuels         = []Fuel{Petrol, Diesel, Hybrid, Electric}
	SeatChoices   = []int{2, 4, 5, 7, 9}

	// Cities lists the sentinel first, then the served cities.
	Cities = []string{
		AllCities,
		"Casablanca", "Marrakech", "Rabat", "Tanger", "Agadir",
		"Fès", "Meknès", "Oujda", "Kénitra", "Tétouan",
		"Safi", "El Jadida", "Nador", "Béni Mellal", "Mohammédia",
		"Laâyoune", "Dakhla", "Essaouira", "Ouarzazate", "Ifrane",
	}

	Categories = []string{
		"Economy", "Standard", "SUV / 4x4", "Luxury",
		"Luxury SUV", "Van / MPV", "Minibus", "Sport",
	}
)

// ParseTransmission maps a wire value to a Transmission.
func ParseTransmission(s string) (Transmission, bool) {
	for _, t := range Transmissions {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ParseFuel maps a wire value to a Fuel.
func ParseFuel(s string) (Fuel, bool) {
	for _, f := range Fuels {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// IsCategory reports whether s is a known category.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// CityFilter returns the effective city filter for a location, trimmed;
// empty means none.
func CityFilter(location string) string {
	location = strings.TrimSpace(location)
	if location == AllCities {
		return ""
	}
	return location
}
