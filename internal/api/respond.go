package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentacar/internal/booking"
	"rentacar/internal/calendar"
	"rentacar/internal/database"
	"rentacar/internal/service"
	"rentacar/internal/slots"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrSessionNotFound), errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrInvalidStep),
		errors.Is(err, booking.ErrIncomplete),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, booking.ErrInvalidMode),
		errors.Is(err, slots.ErrInvalidSlot),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidContact),
		errors.Is(err, service.ErrInvalidOption),
		errors.Is(err, service.ErrInvalidDates):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
