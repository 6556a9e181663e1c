package models

import "time"

// Car is a fleet record as stored and served to the storefront.
type Car struct {
	ID                string    `json:"id" yaml:"id"`
	Brand             string    `json:"brand" yaml:"brand"`
	Model             string    `json:"model" yaml:"model"`
	Year              int       `json:"year" yaml:"year"`
	City              string    `json:"city" yaml:"city"`
	PricePerDay       float64   `json:"price_per_day" yaml:"price_per_day"`
	Deposit           float64   `json:"deposit" yaml:"deposit"`
	Category          string    `json:"category" yaml:"category"`
	Transmission      string    `json:"transmission" yaml:"transmission"`
	FuelType          string    `json:"fuel_type" yaml:"fuel_type"`
	Seats             int       `json:"seats" yaml:"seats"`
	ImageURL          string    `json:"image_url" yaml:"image_url"`
	AgencyName        string    `json:"agency_name" yaml:"agency_name"`
	AgencyID          string    `json:"agency_id,omitempty" yaml:"agency_id"`
	Rating            float64   `json:"rating" yaml:"rating"`
	ReviewsCount      int       `json:"reviews_count" yaml:"reviews_count"`
	LocationLat       *float64  `json:"location_lat,omitempty" yaml:"location_lat"`
	LocationLng       *float64  `json:"location_lng,omitempty" yaml:"location_lng"`
	IsVerifiedPartner bool      `json:"is_verified_partner" yaml:"is_verified_partner"`
	IsActive          bool      `json:"-" yaml:"is_active"`
	CreatedAt         time.Time `json:"created_at" yaml:"-"`
}

// Title is the display name of the car.
func (c *Car) Title() string {
	return c.Brand + " " + c.Model
}
