package models

import "time"

type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Status is the canonical ride lifecycle vocabulary. Legacy aliases like
// "in_progress" belong to API adapters, never to this enumeration.
type Status string

const (
	StatusDriverEnRoute Status = "driver_en_route"
	StatusDriverArrived Status = "driver_arrived"
	StatusRideStarted   Status = "ride_started"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
)

// Terminal reports whether no further transition, automatic or manual,
// is valid from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Plate string `json:"plate"`
	Color string `json:"color"`
}

type Driver struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Rating  float64   `json:"rating"` // 0..5
	Active  bool      `json:"active"`
	Loc     Coord     `json:"loc"`
	Vehicle Vehicle   `json:"vehicle"`
	Updated time.Time `json:"updated"`
}

// DriverSnapshot is the driver/vehicle state copied into a ride at
// assignment time. Later driver updates never alter past rides.
type DriverSnapshot struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Vehicle Vehicle `json:"vehicle"`
}

func (d Driver) Snapshot() DriverSnapshot {
	return DriverSnapshot{ID: d.ID, Name: d.Name, Rating: d.Rating, Vehicle: d.Vehicle}
}

type Ride struct {
	ID               string         `json:"id"`
	RiderID          string         `json:"rider_id"`
	Pickup           Coord          `json:"pickup"`
	Destination      Coord          `json:"destination"`
	DestinationLabel string         `json:"destination_label"`
	Driver           DriverSnapshot `json:"driver"`
	Status           Status         `json:"status"`
	ETA              string         `json:"eta"`
	// TripETA is the pickup-to-destination duration estimate, computed
	// once at creation; it becomes the display ETA when the ride starts.
	TripETA     string    `json:"trip_eta"`
	CostCents   int64     `json:"cost_cents"`
	DistanceKm  float64   `json:"distance_km"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}
