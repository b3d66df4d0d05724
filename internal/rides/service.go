package rides

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/eaindome/Ride-Booking-server/internal/fleet"
	"github.com/eaindome/Ride-Booking-server/internal/geo"
	"github.com/eaindome/Ride-Booking-server/internal/lifecycle"
	"github.com/eaindome/Ride-Booking-server/internal/matcher"
	"github.com/eaindome/Ride-Booking-server/internal/models"
	"github.com/eaindome/Ride-Booking-server/internal/observability"
	"github.com/eaindome/Ride-Booking-server/internal/pubsub"
	"github.com/eaindome/Ride-Booking-server/internal/store"
)

// PaymentHolder places a hold for the fare at booking time. Optional.
type PaymentHolder interface {
	Hold(ctx context.Context, rideID string, amountCents int64, currency, customerID string) error
}

// Service is the booking core exposed to the HTTP adapter. All state
// flows through the ride store; every transition it produces fans out
// through the same sinks the scheduler uses.
type Service struct {
	Store     store.RideStore
	Fleet     fleet.Fleet
	Publisher *pubsub.Publisher
	Pricing   matcher.Pricing
	Sinks     []lifecycle.TransitionSink
	Payments  PaymentHolder
	Currency  string
	Logger    *slog.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Create books a ride for riderID: nearest active driver, cost and
// distance fixed at creation, initial status driver_en_route. A prior
// active ride of the same requester is cancelled first, never deleted.
func (s *Service) Create(ctx context.Context, riderID string, pickup, dest models.Coord, destLabel string) (models.Ride, error) {
	if riderID == "" {
		return models.Ride{}, errValidation("requester id is required")
	}
	drivers, err := s.Fleet.Active(ctx)
	if err != nil {
		return models.Ride{}, err
	}
	snap, ok := matcher.AssignNearestDriver(pickup, drivers)
	if !ok {
		observability.MatchFailures.Inc()
		return models.Ride{}, errNoDrivers()
	}

	if err := s.terminateActive(ctx, riderID); err != nil {
		return models.Ride{}, err
	}

	var driverLoc models.Coord
	for _, d := range drivers {
		if d.ID == snap.ID {
			driverLoc = d.Loc
			break
		}
	}
	tripKm := geo.DistanceKm(pickup, dest)
	now := s.now()
	r := models.Ride{
		ID:               newID(),
		RiderID:          riderID,
		Pickup:           pickup,
		Destination:      dest,
		DestinationLabel: destLabel,
		Driver:           snap,
		Status:           models.StatusDriverEnRoute,
		ETA:              geo.ETAFromDistance(geo.DistanceKm(driverLoc, pickup)),
		TripETA:          geo.ETAFromDistance(tripKm),
		CostCents:        s.Pricing.CostCents(tripKm),
		DistanceKm:       tripKm,
		CreatedAt:        now,
		LastUpdated:      now,
	}

	if s.Payments != nil {
		if err := s.Payments.Hold(ctx, r.ID, r.CostCents, s.currency(), riderID); err != nil {
			s.logger().Warn("payment hold failed, booking anyway", "ride_id", r.ID, "error", err)
		}
	}

	if err := s.Store.Insert(ctx, r); err != nil {
		return models.Ride{}, err
	}
	observability.RidesCreated.Inc()
	s.logger().Info("ride created", "ride_id", r.ID, "rider_id", riderID, "driver_id", snap.ID, "cost_cents", r.CostCents)
	s.fanOut(ctx, r)
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Ride, error) {
	r, err := s.Store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Ride{}, errNotFound(id)
	}
	return r, err
}

// Cancel moves a ride to cancelled on behalf of its requester.
func (s *Service) Cancel(ctx context.Context, id, riderID string) (models.Ride, error) {
	return s.transition(ctx, id, riderID, models.StatusCancelled)
}

// ManualTransition applies a user-initiated status change, validated
// against the manual table: one step forward or cancel, no skipping.
func (s *Service) ManualTransition(ctx context.Context, id, riderID string, target models.Status) (models.Ride, error) {
	return s.transition(ctx, id, riderID, target)
}

func (s *Service) transition(ctx context.Context, id, riderID string, target models.Status) (models.Ride, error) {
	r, err := s.Store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Ride{}, errNotFound(id)
	}
	if err != nil {
		return models.Ride{}, err
	}
	if r.RiderID != riderID {
		return models.Ride{}, errForbidden()
	}
	if r.Status.Terminal() {
		return models.Ride{}, errAlreadyTerminal(r.Status)
	}
	if !lifecycle.ManualAllowed(r.Status, target) {
		return models.Ride{}, errInvalidTransition(r.Status, target, lifecycle.ManualTargets(r.Status))
	}

	r.Status = target
	r.LastUpdated = s.now()
	r.ETA = lifecycle.ProjectedETA(target, r)
	if target == models.StatusCancelled {
		r.ETA = "Cancelled"
	}
	if err := s.Store.Update(ctx, r); err != nil {
		return models.Ride{}, err
	}
	observability.TransitionsTotal.WithLabelValues(string(target)).Inc()
	s.logger().Info("manual transition", "ride_id", r.ID, "status", target)
	s.fanOut(ctx, r)
	return r, nil
}

// History lists the requester's rides, most recent first, optionally
// filtered to one status.
func (s *Service) History(ctx context.Context, riderID string, statusFilter models.Status) ([]models.Ride, error) {
	all, err := s.Store.FindByRequester(ctx, riderID)
	if err != nil {
		return nil, err
	}
	out := all
	if statusFilter != "" {
		out = out[:0]
		for _, r := range all {
			if r.Status == statusFilter {
				out = append(out, r)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}

// Subscribe attaches a live update stream to a ride.
func (s *Service) Subscribe(ctx context.Context, rideID string) (*pubsub.Subscription, error) {
	sub, err := s.Publisher.Subscribe(ctx, rideID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNotFound(rideID)
	}
	return sub, err
}

// terminateActive enforces one active ride per requester by cancelling
// any prior non-terminal ride.
func (s *Service) terminateActive(ctx context.Context, riderID string) error {
	existing, err := s.Store.FindByRequester(ctx, riderID)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if r.Status.Terminal() {
			continue
		}
		r.Status = models.StatusCancelled
		r.LastUpdated = s.now()
		r.ETA = "Cancelled"
		if err := s.Store.Update(ctx, r); err != nil {
			return err
		}
		observability.TransitionsTotal.WithLabelValues(string(models.StatusCancelled)).Inc()
		s.logger().Info("prior active ride terminated", "ride_id", r.ID, "rider_id", riderID)
		s.fanOut(ctx, r)
	}
	return nil
}

func (s *Service) fanOut(ctx context.Context, r models.Ride) {
	if s.Publisher != nil {
		s.Publisher.Publish(r.ID, r)
	}
	for _, sink := range s.Sinks {
		sink.RideTransitioned(ctx, r)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) currency() string {
	if s.Currency == "" {
		return "usd"
	}
	return s.Currency
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func newID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
