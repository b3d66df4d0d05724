// Package storerelay lets worker processes use a ride store owned by
// another process. Requests and responses travel over one websocket per
// worker; a correlation id pairs each response with the caller that is
// waiting for it, and unmatched responses are discarded.
package storerelay

import "github.com/eaindome/Ride-Booking-server/internal/models"

const (
	opGet             = "get"
	opInsert          = "insert"
	opUpdate          = "update"
	opFindActive      = "find_active"
	opFindByRequester = "find_by_requester"
)

const (
	errNotFound = "not_found"
	errExists   = "exists"
)

type request struct {
	CorrelationID string       `json:"correlation_id"`
	Op            string       `json:"op"`
	RideID        string       `json:"ride_id,omitempty"`
	RiderID       string       `json:"rider_id,omitempty"`
	Ride          *models.Ride `json:"ride,omitempty"`
}

type response struct {
	CorrelationID string        `json:"correlation_id"`
	Err           string        `json:"error,omitempty"`
	Ride          *models.Ride  `json:"ride,omitempty"`
	Rides         []models.Ride `json:"rides,omitempty"`
}
