// Package api exposes selection sessions, the fleet and reservations over HTTP.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"rentacar/internal/auth"
	"rentacar/internal/booking"
	"rentacar/internal/fleet"
	"rentacar/internal/models"
	"rentacar/internal/service"
)

const maxBodyBytes = 64 << 10

// FleetBrowser serves filtered fleet listings.
type FleetBrowser interface {
	Browse(ctx context.Context, c fleet.Criteria) fleet.Listing
	Car(ctx context.Context, id string) (*models.Car, error)
}

// Reservations is the reservation workflow used by the handlers.
type Reservations interface {
	Submit(ctx context.Context, draft booking.Draft, contact service.Contact, userID string) (*models.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Reservation, error)
	SubmitPartner(ctx context.Context, req service.PartnerRequest) (*models.PartnerApplication, error)
}

// Exporter writes a month's reservation workbook.
type Exporter interface {
	Export(ctx context.Context, month time.Time, w io.Writer) (int, error)
}

// Config holds the HTTP surface settings.
type Config struct {
	AllowedOrigins     []string
	AdminAPIKey        string
	RateLimitPerMinute int
	RateLimitBurst     int
}

// Server holds the handler dependencies.
type Server struct {
	cfg          Config
	sessions     *booking.SessionStore
	fleet        FleetBrowser
	reservations Reservations
	exporter     Exporter
	tokens       *auth.TokenManager
	limiter      *ipLimiter
	logger       *zerolog.Logger
	now          func() time.Time
}

func NewServer(
	cfg Config,
	sessions *booking.SessionStore,
	fleetBrowser FleetBrowser,
	reservations Reservations,
	exporter Exporter,
	tokens *auth.TokenManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		cfg:          cfg,
		sessions:     sessions,
		fleet:        fleetBrowser,
		reservations: reservations,
		exporter:     exporter,
		tokens:       tokens,
		limiter:      newIPLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		logger:       logger,
		now:          time.Now,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(observeMetrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(newCORS(s.cfg.AllowedOrigins))
	r.Use(maxBodySize(maxBodyBytes))

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Get("/calendar", s.handleCalendar)
				r.Post("/location", s.handleLocation)
				r.Post("/dates", s.handleClickDate)
				r.Post("/dates/open", s.handleOpenDates)
				r.Post("/pickup", s.handleSlot(booking.ActionSelectPickup))
				r.Post("/return", s.handleSlot(booking.ActionSelectReturn))
				r.Post("/options", s.handleOptions)
				r.Post("/options/reset", s.handleResetOptions)
				r.Post("/pointer", s.handlePointer)
				r.Post("/search", s.handleSearch)
				r.Post("/continue", s.handleContinue)
			})
		})

		r.Get("/catalog", s.handleCatalog)
		r.Get("/cars", s.handleCars)
		r.Get("/cars/{id}", s.handleCar)

		r.With(s.rateLimit).Post("/partners", s.handlePartner)

		r.Route("/reservations", func(r chi.Router) {
			r.Use(s.tokens.Middleware(func(w http.ResponseWriter, _ *http.Request, err error) {
				writeError(w, http.StatusUnauthorized, err.Error())
			}))
			r.With(s.rateLimit).Post("/", s.handleSubmitReservation)
			r.Get("/", s.handleMyReservations)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAPIKey)
			r.Patch("/reservations/{id}", s.handleUpdateStatus)
			r.Get("/reservations/export", s.handleExport)
		})
	})

	return r
}
