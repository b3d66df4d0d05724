package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eaindome/Ride-Booking-server/internal/fleet"
	"github.com/eaindome/Ride-Booking-server/internal/rides"
)

// Server is the HTTP/WebSocket adapter over the booking core. Request
// authentication lives upstream; the X-User-ID header is trusted as the
// requester identity here.
type Server struct {
	Rides  *rides.Service
	Fleet  fleet.Upserter
	logger *slog.Logger
	mux    *mux.Router
}

func NewServer(svc *rides.Service, fl fleet.Upserter, logger *slog.Logger) *Server {
	s := &Server{Rides: svc, Fleet: fl, logger: logger, mux: mux.NewRouter()}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/rides", s.handleCreateRide).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides/history", s.handleHistory).Methods("GET")
	s.mux.HandleFunc("/api/v1/rides/{ride_id}", s.handleGetRide).Methods("GET")
	s.mux.HandleFunc("/api/v1/rides/{ride_id}/cancel", s.handleCancelRide).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides/{ride_id}/transition", s.handleTransition).Methods("POST")
	s.mux.HandleFunc("/ws/rides/{ride_id}", s.handleRideStream)
	s.mux.HandleFunc("/internal/driver/locations", s.handleDriverLocation).Methods("POST")
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }
