package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentacar/internal/fleet"
	"rentacar/internal/search"
	"rentacar/internal/slots"
)

// GET /api/catalog
func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cities":        search.Cities,
		"categories":    search.Categories,
		"seats":         search.SeatChoices,
		"transmissions": search.Transmissions,
		"fuels":         search.Fuels,
		"slots":         slots.All(),
		"default_slot":  slots.Default,
	})
}

// GET /api/cars?city=&category=&transmission=&fuel=&seats=
// A failed fleet fetch still answers 200 with loaded=false.
func (s *Server) handleCars(w http.ResponseWriter, r *http.Request) {
	listing := s.fleet.Browse(r.Context(), fleet.CriteriaFromQuery(r.URL.Query()))
	writeJSON(w, http.StatusOK, listing)
}

// GET /api/cars/{id}
func (s *Server) handleCar(w http.ResponseWriter, r *http.Request) {
	car, err := s.fleet.Car(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}
