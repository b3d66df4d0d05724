package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// handleRideStream upgrades the connection and streams ride snapshots in
// publish order: current state first, then every live transition, until
// the client hangs up or the ride's stream is exhausted.
func (s *Server) handleRideStream(w http.ResponseWriter, r *http.Request) {
	rideID := mux.Vars(r)["ride_id"]
	sub, err := s.Rides.Subscribe(r.Context(), rideID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Close()
		return
	}

	// reader only to detect disconnect; clients do not send anything
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()

	defer conn.Close()
	defer sub.Close()
	for ride := range sub.Updates() {
		if err := conn.WriteJSON(ride); err != nil {
			s.logger.Info("ride stream closed", "ride_id", rideID, "error", err)
			return
		}
	}
}
