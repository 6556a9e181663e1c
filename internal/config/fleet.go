package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rentacar/internal/models"
	"rentacar/internal/search"
)

// FleetCar is one car in fleet.yaml.
type FleetCar struct {
	ID                string   `yaml:"id"`
	Brand             string   `yaml:"brand"`
	Model             string   `yaml:"model"`
	Year              int      `yaml:"year"`
	City              string   `yaml:"city"`
	PricePerDay       float64  `yaml:"price_per_day"`
	Deposit           float64  `yaml:"deposit"`
	Category          string   `yaml:"category"`
	Transmission      string   `yaml:"transmission"`
	FuelType          string   `yaml:"fuel_type"`
	Seats             int      `yaml:"seats"`
	ImageURL          string   `yaml:"image_url"`
	AgencyName        string   `yaml:"agency_name"`
	AgencyID          string   `yaml:"agency_id"`
	Rating            float64  `yaml:"rating"`
	ReviewsCount      int      `yaml:"reviews_count"`
	LocationLat       *float64 `yaml:"location_lat,omitempty"`
	LocationLng       *float64 `yaml:"location_lng,omitempty"`
	IsVerifiedPartner bool     `yaml:"is_verified_partner"`
	// Active defaults to true when omitted.
	Active *bool `yaml:"active,omitempty"`
}

// FleetConfig is the root of fleet.yaml. Cars are listed newest first.
type FleetConfig struct {
	Cars []FleetCar `yaml:"cars"`
}

// LoadFleetConfig loads and validates the fleet seed file.
func LoadFleetConfig(path string) (*FleetConfig, error) {
	if path == "" {
		path = "configs/fleet.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fleet config: %w", err)
	}
	return ParseFleetConfig(data)
}

// ParseFleetConfig decodes and validates a fleet seed document.
func ParseFleetConfig(data []byte) (*FleetConfig, error) {
	var cfg FleetConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse fleet config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate fleet config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *FleetConfig) Validate() error {
	if len(c.Cars) == 0 {
		return fmt.Errorf("no cars configured")
	}

	ids := make(map[string]bool)
	for i, car := range c.Cars {
		if car.ID == "" {
			return fmt.Errorf("car #%d: id is required", i+1)
		}
		if ids[car.ID] {
			return fmt.Errorf("duplicate car id: %s", car.ID)
		}
		ids[car.ID] = true

		if car.Brand == "" || car.Model == "" {
			return fmt.Errorf("car %s: brand and model are required", car.ID)
		}
		if car.City == "" {
			return fmt.Errorf("car %s: city is required", car.ID)
		}
		if car.PricePerDay <= 0 {
			return fmt.Errorf("car %s: price_per_day must be positive", car.ID)
		}
		if car.Deposit < 0 {
			return fmt.Errorf("car %s: deposit cannot be negative", car.ID)
		}
		if car.Category != "" && !search.IsCategory(car.Category) {
			return fmt.Errorf("car %s: unknown category %q", car.ID, car.Category)
		}
		if _, ok := search.ParseTransmission(car.Transmission); !ok {
			return fmt.Errorf("car %s: unknown transmission %q", car.ID, car.Transmission)
		}
		if _, ok := search.ParseFuel(car.FuelType); !ok {
			return fmt.Errorf("car %s: unknown fuel type %q", car.ID, car.FuelType)
		}
		if car.Seats <= 0 {
			return fmt.Errorf("car %s: seats must be positive", car.ID)
		}
	}
	return nil
}

// Models converts the configured cars, preserving order.
func (c *FleetConfig) Models() []models.Car {
	cars := make([]models.Car, 0, len(c.Cars))
	for _, fc := range c.Cars {
		active := true
		if fc.Active != nil {
			active = *fc.Active
		}
		cars = append(cars, models.Car{
			ID:                fc.ID,
			Brand:             fc.Brand,
			Model:             fc.Model,
			Year:              fc.Year,
			City:              fc.City,
			PricePerDay:       fc.PricePerDay,
			Deposit:           fc.Deposit,
			Category:          fc.Category,
			Transmission:      fc.Transmission,
			FuelType:          fc.FuelType,
			Seats:             fc.Seats,
			ImageURL:          fc.ImageURL,
			AgencyName:        fc.AgencyName,
			AgencyID:          fc.AgencyID,
			Rating:            fc.Rating,
			ReviewsCount:      fc.ReviewsCount,
			LocationLat:       fc.LocationLat,
			LocationLng:       fc.LocationLng,
			IsVerifiedPartner: fc.IsVerifiedPartner,
			IsActive:          active,
		})
	}
	return cars
}
