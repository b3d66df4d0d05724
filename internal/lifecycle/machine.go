package lifecycle

import (
	"time"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

// nextStatus is the automatic progression table. Absent statuses are
// terminal for the scheduler: it leaves them alone.
var nextStatus = map[models.Status]models.Status{
	models.StatusDriverEnRoute: models.StatusDriverArrived,
	models.StatusDriverArrived: models.StatusRideStarted,
	models.StatusRideStarted:   models.StatusCompleted,
}

// NextStatus returns the automatic successor of s, or false when s has
// no automatic progression.
func NextStatus(s models.Status) (models.Status, bool) {
	n, ok := nextStatus[s]
	return n, ok
}

// baseDwell is how long a ride must sit in a status before the scheduler
// may advance it. Kept separate from the transition table so fast mode
// only touches timing, never routing.
var baseDwell = map[models.Status]time.Duration{
	models.StatusDriverEnRoute: time.Minute,
	models.StatusDriverArrived: 30 * time.Second,
	models.StatusRideStarted:   5 * time.Second,
}

// DwellPolicy scales every dwell time uniformly. Scale 1 is production
// timing; test harnesses run with Scale 0.1.
type DwellPolicy struct {
	Scale float64
}

func (p DwellPolicy) MinimumDwell(s models.Status) time.Duration {
	d, ok := baseDwell[s]
	if !ok {
		return 0
	}
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	return time.Duration(float64(d) * scale)
}

// ProjectedETA maps the status a ride just entered to its display ETA.
// Statuses outside the table keep the ride's prior value.
func ProjectedETA(next models.Status, r models.Ride) string {
	switch next {
	case models.StatusDriverArrived:
		return "Driver has arrived"
	case models.StatusRideStarted:
		return r.TripETA
	case models.StatusCompleted:
		return "Completed"
	default:
		return r.ETA
	}
}

// manualTargets is the stricter user-initiated table: one step forward or
// cancel, never skipping an intermediate status.
var manualTargets = map[models.Status][]models.Status{
	models.StatusDriverEnRoute: {models.StatusDriverArrived, models.StatusCancelled},
	models.StatusDriverArrived: {models.StatusRideStarted, models.StatusCancelled},
	models.StatusRideStarted:   {models.StatusCompleted, models.StatusCancelled},
}

// ManualTargets returns the statuses a user may move a ride to from s.
// Terminal statuses return an empty set.
func ManualTargets(s models.Status) []models.Status {
	return manualTargets[s]
}

// ManualAllowed reports whether target is a valid user-initiated move
// from s.
func ManualAllowed(s, target models.Status) bool {
	for _, t := range manualTargets[s] {
		if t == target {
			return true
		}
	}
	return false
}
