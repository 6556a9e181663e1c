package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"rentacar/internal/audit"
	"rentacar/internal/auth"
	"rentacar/internal/booking"
	"rentacar/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// submitReservationRequest carries the checkout continuation and the contact form.
type submitReservationRequest struct {
	CarID     string          `json:"car_id"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime"`
	Contact   service.Contact `json:"contact"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// POST /api/reservations
func (s *Server) handleSubmitReservation(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())

	var req submitReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CarID == "" {
		writeError(w, http.StatusBadRequest, "car_id is required")
		return
	}

	cont, err := booking.ParseContinuation(url.Values{
		booking.ParamStart:     {req.Start},
		booking.ParamEnd:       {req.End},
		booking.ParamStartTime: {req.StartTime},
		booking.ParamEndTime:   {req.EndTime},
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	draft := booking.Draft{
		CarID:      req.CarID,
		StartDate:  cont.Start,
		EndDate:    cont.End,
		PickupTime: cont.StartTime,
		ReturnTime: cont.EndTime,
		Days:       cont.Days,
	}
	reservation, err := s.reservations.Submit(r.Context(), draft, req.Contact, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

// GET /api/reservations
func (s *Server) handleMyReservations(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())
	list, err := s.reservations.ListByUser(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": list})
}

// PATCH /api/admin/reservations/{id}
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	reservation, err := s.reservations.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

// GET /api/admin/reservations/export?month=YYYY-MM
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	month := s.now().UTC()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month format; expected YYYY-MM")
			return
		}
		month = parsed
	}
	month = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	n, err := s.exporter.Export(r.Context(), month, &buf)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, audit.GenerateFilename(month)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Row-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// POST /api/partners
func (s *Server) handlePartner(w http.ResponseWriter, r *http.Request) {
	var req service.PartnerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	app, err := s.reservations.SubmitPartner(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}
