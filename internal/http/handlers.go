package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eaindome/Ride-Booking-server/internal/geo"
	"github.com/eaindome/Ride-Booking-server/internal/models"
	"github.com/eaindome/Ride-Booking-server/internal/rides"
)

type createRideRequest struct {
	Pickup           []float64 `json:"pickup"`      // [lon, lat]
	Destination      []float64 `json:"destination"` // [lon, lat]
	DestinationLabel string    `json:"destination_label"`
}

type transitionRequest struct {
	Target string `json:"target"`
}

type errorResponse struct {
	Error        string          `json:"error"`
	Message      string          `json:"message"`
	ValidTargets []models.Status `json:"valid_targets,omitempty"`
}

func (s *Server) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	rider := requesterID(r)
	if rider == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Message: "missing X-User-ID"})
		return
	}
	var req createRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(rides.KindValidation), Message: "malformed request body"})
		return
	}
	pickup, err := geo.ParseCoord(req.Pickup)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(rides.KindValidation), Message: "pickup: " + err.Error()})
		return
	}
	dest, err := geo.ParseCoord(req.Destination)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(rides.KindValidation), Message: "destination: " + err.Error()})
		return
	}
	ride, err := s.Rides.Create(r.Context(), rider, pickup, dest, req.DestinationLabel)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ride)
}

func (s *Server) handleGetRide(w http.ResponseWriter, r *http.Request) {
	ride, err := s.Rides.Get(r.Context(), mux.Vars(r)["ride_id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

func (s *Server) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	ride, err := s.Rides.Cancel(r.Context(), mux.Vars(r)["ride_id"], requesterID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(rides.KindValidation), Message: "malformed request body"})
		return
	}
	ride, err := s.Rides.ManualTransition(r.Context(), mux.Vars(r)["ride_id"], requesterID(r), models.Status(req.Target))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	rider := requesterID(r)
	if rider == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Message: "missing X-User-ID"})
		return
	}
	filter := models.Status(r.URL.Query().Get("status"))
	history, err := s.Rides.History(r.Context(), rider, filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleDriverLocation(w http.ResponseWriter, r *http.Request) {
	if s.Fleet == nil {
		http.Error(w, "fleet ingest disabled", http.StatusNotImplemented)
		return
	}
	var d models.Driver
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(rides.KindValidation), Message: "malformed driver payload"})
		return
	}
	d.Active = true
	if err := s.Fleet.Upsert(r.Context(), d); err != nil {
		s.logger.Error("fleet upsert failed", "driver_id", d.ID, "error", err)
		http.Error(w, "fleet update failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps core error kinds to HTTP statuses; anything untyped is
// an opaque 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var e *rides.Error
	if !errors.As(err, &e) {
		s.logger.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal error"})
		return
	}
	status := http.StatusInternalServerError
	switch e.Kind {
	case rides.KindValidation:
		status = http.StatusBadRequest
	case rides.KindNotFound:
		status = http.StatusNotFound
	case rides.KindForbidden:
		status = http.StatusForbidden
	case rides.KindInvalidTransition:
		status = http.StatusUnprocessableEntity
	case rides.KindNoDrivers:
		status = http.StatusServiceUnavailable
	case rides.KindAlreadyTerminal:
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: string(e.Kind), Message: e.Message, ValidTargets: e.ValidTargets})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requesterID(r *http.Request) string { return r.Header.Get("X-User-ID") }
