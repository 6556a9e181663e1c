package models

import "time"

// Reservation statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Delivery and payment modes.
const (
	DeliveryPickup   = "pickup"
	DeliveryDelivery = "delivery"

	PaymentPickup = "pickup"
	PaymentOnline = "online"
)

// Reservation is a submitted booking request.
type Reservation struct {
	ID           string    `json:"id"`
	CarID        string    `json:"car_id"`
	UserID       string    `json:"user_id,omitempty"`
	StartDate    string    `json:"start_date"` // YYYY-MM-DD
	EndDate      string    `json:"end_date"`   // YYYY-MM-DD
	StartTime    string    `json:"start_time"` // HH:MM
	EndTime      string    `json:"end_time"`   // HH:MM
	Days         int       `json:"days"`
	TotalPrice   float64   `json:"total_price"`
	Deposit      float64   `json:"deposit"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Country      string    `json:"country,omitempty"`
	DeliveryType string    `json:"delivery_type"`
	PaymentType  string    `json:"payment_type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Car is populated when listing a user's reservations.
	Car *Car `json:"car,omitempty"`
}

// FullName joins first and last name.
func (r *Reservation) FullName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// IsActive reports whether the reservation still holds the car.
func (r *Reservation) IsActive() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// PartnerApplication is an agency asking to list its cars.
type PartnerApplication struct {
	ID          string    `json:"id"`
	AgencyName  string    `json:"agency_name"`
	City        string    `json:"city"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Partner application statuses.
const (
	PartnerStatusNew      = "new"
	PartnerStatusReviewed = "reviewed"
)
