package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rentacar/internal/booking"
	"rentacar/internal/calendar"
	"rentacar/internal/events"
	"rentacar/internal/metrics"
	"rentacar/internal/models"
)

var (
	ErrInvalidContact    = errors.New("invalid contact details")
	ErrInvalidOption     = errors.New("invalid delivery or payment option")
	ErrInvalidDates      = errors.New("invalid rental dates")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// minPhoneDigits is the fewest digits accepted in a phone number.
const minPhoneDigits = 6

// ReservationRepository is the persistence used by ReservationService.
type ReservationRepository interface {
	GetCar(ctx context.Context, id string) (*models.Car, error)
	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	ListReservationsByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id, status string) error
	CreatePartnerApplication(ctx context.Context, p *models.PartnerApplication) error
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	PublishJSON(ctx context.Context, eventType string, payload interface{}) error
}

// Contact is the renter data collected at checkout.
type Contact struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Country      string `json:"country,omitempty"`
	DeliveryType string `json:"delivery_type,omitempty"`
	PaymentType  string `json:"payment_type,omitempty"`
}

// Normalize trims fields and applies the pickup defaults.
func (c *Contact) Normalize() {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Country = strings.TrimSpace(c.Country)
	if c.DeliveryType == "" {
		c.DeliveryType = models.DeliveryPickup
	}
	if c.PaymentType == "" {
		c.PaymentType = models.PaymentPickup
	}
}

// Validate checks required fields and option values.
func (c Contact) Validate() error {
	switch {
	case c.FirstName == "":
		return fmt.Errorf("%w: first name is required", ErrInvalidContact)
	case c.LastName == "":
		return fmt.Errorf("%w: last name is required", ErrInvalidContact)
	case !validEmail(c.Email):
		return fmt.Errorf("%w: email %q", ErrInvalidContact, c.Email)
	case countDigits(c.Phone) < minPhoneDigits:
		return fmt.Errorf("%w: phone %q", ErrInvalidContact, c.Phone)
	}
	if c.DeliveryType != models.DeliveryPickup && c.DeliveryType != models.DeliveryDelivery {
		return fmt.Errorf("%w: delivery_type %q", ErrInvalidOption, c.DeliveryType)
	}
	if c.PaymentType != models.PaymentPickup && c.PaymentType != models.PaymentOnline {
		return fmt.Errorf("%w: payment_type %q", ErrInvalidOption, c.PaymentType)
	}
	return nil
}

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// statusTransitions lists the allowed status changes.
var statusTransitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCancelled},
}

// CanTransition reports whether a reservation may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ReservationService turns finished drafts into stored reservations.
type ReservationService struct {
	repo   ReservationRepository
	bus    EventPublisher
	logger *zerolog.Logger
	now    func() time.Time
}

func NewReservationService(repo ReservationRepository, bus EventPublisher, logger *zerolog.Logger) *ReservationService {
	return &ReservationService{repo: repo, bus: bus, logger: logger, now: time.Now}
}

// Submit validates the contact, reprices the draft from the stored car and
// persists a pending reservation. Client-side totals are ignored.
func (s *ReservationService) Submit(ctx context.Context, draft booking.Draft, contact Contact, userID string) (*models.Reservation, error) {
	contact.Normalize()
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	today := calendar.FromTime(s.now())
	if !draft.StartDate.Valid() || !draft.EndDate.Valid() {
		return nil, fmt.Errorf("%w: malformed date", ErrInvalidDates)
	}
	if draft.StartDate.Before(today) {
		return nil, fmt.Errorf("%w: start %s is in the past", ErrInvalidDates, draft.StartDate)
	}
	if draft.EndDate.Before(draft.StartDate) {
		return nil, fmt.Errorf("%w: end before start", ErrInvalidDates)
	}

	car, err := s.repo.GetCar(ctx, draft.CarID)
	if err != nil {
		return nil, fmt.Errorf("get car: %w", err)
	}

	priced := booking.BuildDraft(car, draft.StartDate, draft.EndDate, draft.PickupTime, draft.ReturnTime)
	now := s.now().UTC()
	r := &models.Reservation{
		ID:           uuid.NewString(),
		CarID:        car.ID,
		UserID:       userID,
		StartDate:    priced.StartDate.ISO(),
		EndDate:      priced.EndDate.ISO(),
		StartTime:    string(priced.PickupTime),
		EndTime:      string(priced.ReturnTime),
		Days:         priced.Days,
		TotalPrice:   priced.TotalPrice,
		Deposit:      priced.Deposit,
		FirstName:    contact.FirstName,
		LastName:     contact.LastName,
		Phone:        contact.Phone,
		Email:        contact.Email,
		Country:      contact.Country,
		DeliveryType: contact.DeliveryType,
		PaymentType:  contact.PaymentType,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateReservation(ctx, r); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	metrics.IncReservationCreated(r.PaymentType)

	s.logger.Info().
		Str("reservation_id", r.ID).
		Str("car_id", r.CarID).
		Int("days", r.Days).
		Float64("total", r.TotalPrice).
		Msg("Reservation created")

	s.publish(ctx, events.ReservationCreated, events.ReservationPayload{Reservation: *r, CarTitle: car.Title()})
	r.Car = car
	return r, nil
}

// ListByUser returns the user's reservations, newest first.
func (s *ReservationService) ListByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	list, err := s.repo.ListReservationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return list, nil
}

// UpdateStatus moves a reservation to status when the transition is allowed.
func (s *ReservationService) UpdateStatus(ctx context.Context, id, status string) (*models.Reservation, error) {
	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if !CanTransition(r.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, status)
	}

	if err := s.repo.UpdateReservationStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	metrics.IncReservationStatus(status)

	previous := r.Status
	r.Status = status
	r.UpdatedAt = s.now().UTC()

	s.logger.Info().Str("reservation_id", id).Str("from", previous).Str("to", status).Msg("Reservation status changed")
	s.publish(ctx, events.ReservationStatusChanged, events.ReservationPayload{Reservation: *r, PreviousStatus: previous})
	return r, nil
}

// PartnerRequest is a "become a partner" form submission.
type PartnerRequest struct {
	AgencyName  string `json:"agency_name"`
	City        string `json:"city"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

// SubmitPartner stores a partner application.
func (s *ReservationService) SubmitPartner(ctx context.Context, req PartnerRequest) (*models.PartnerApplication, error) {
	app := &models.PartnerApplication{
		ID:          uuid.NewString(),
		AgencyName:  strings.TrimSpace(req.AgencyName),
		City:        strings.TrimSpace(req.City),
		ContactName: strings.TrimSpace(req.ContactName),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
		Status:      models.PartnerStatusNew,
		CreatedAt:   s.now().UTC(),
	}

	switch {
	case app.AgencyName == "" || app.City == "" || app.ContactName == "":
		return nil, fmt.Errorf("%w: agency name, city and contact name are required", ErrInvalidContact)
	case !validEmail(app.Email):
		return nil, fmt.Errorf("%w: email %q", ErrInvalidContact, app.Email)
	case countDigits(app.Phone) < minPhoneDigits:
		return nil, fmt.Errorf("%w: phone %q", ErrInvalidContact, app.Phone)
	}

	if err := s.repo.CreatePartnerApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("create partner application: %w", err)
	}
	s.publish(ctx, events.PartnerApplied, events.PartnerPayload{Application: *app})
	return app, nil
}

func (s *ReservationService) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishJSON(ctx, eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
