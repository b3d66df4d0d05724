package matcher

import (
	"math"

	"github.com/eaindome/Ride-Booking-server/internal/geo"
	"github.com/eaindome/Ride-Booking-server/internal/models"
)

// Pricing is the flat fare policy: base fare plus a per-kilometer rate
// over the pickup-to-destination distance.
type Pricing struct {
	BaseFareCents int64
	PerKmCents    int64
}

func (p Pricing) CostCents(distanceKm float64) int64 {
	return p.BaseFareCents + int64(math.Round(distanceKm*float64(p.PerKmCents)))
}

// AssignNearestDriver picks the active driver closest to pickup and
// returns its snapshot. Ties go to the first-encountered driver, so a
// stable fleet iteration order gives deterministic assignment. Returns
// false when no active driver exists. Drivers are not reserved or
// locked; two concurrent bookings may pick the same one.
func AssignNearestDriver(pickup models.Coord, drivers []models.Driver) (models.DriverSnapshot, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, d := range drivers {
		if !d.Active {
			continue
		}
		if dist := geo.DistanceKm(pickup, d.Loc); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return models.DriverSnapshot{}, false
	}
	return drivers[best].Snapshot(), true
}
