package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eaindome/Ride-Booking-server/internal/models"
	"github.com/eaindome/Ride-Booking-server/internal/observability"
	"github.com/eaindome/Ride-Booking-server/internal/store"
)

// TransitionSink receives every ride snapshot the scheduler (or a manual
// transition) produces. Implementations: the update publisher, the Kafka
// exporter, the payment capturer.
type TransitionSink interface {
	RideTransitioned(ctx context.Context, r models.Ride)
}

// Scheduler is the one recurring task that advances every active ride.
// Exactly one scheduler instance may run against a given store; per-ride
// serialization follows from that plus record-level atomic updates.
type Scheduler struct {
	Store    store.RideStore
	Dwell    DwellPolicy
	Sinks    []TransitionSink
	Interval time.Duration
	Logger   *slog.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Run ticks until ctx is cancelled. The in-flight tick always finishes;
// cancellation only suppresses further ticks.
func (s *Scheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger().Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(context.Background())
		}
	}
}

// Tick advances every active ride that is past its dwell window. Rides
// are processed concurrently and independently; one ride failing is a
// log line, not a tick abort.
func (s *Scheduler) Tick(ctx context.Context) {
	started := time.Now()
	rides, err := s.Store.FindActive(ctx)
	if err != nil {
		s.logger().Error("find active rides", "error", err)
		return
	}
	observability.ActiveRides.Set(float64(len(rides)))

	var wg sync.WaitGroup
	for _, r := range rides {
		wg.Add(1)
		go func(r models.Ride) {
			defer wg.Done()
			s.advance(ctx, r)
		}(r)
	}
	wg.Wait()
	observability.TickDuration.Observe(time.Since(started).Seconds())
}

func (s *Scheduler) advance(ctx context.Context, r models.Ride) {
	elapsed := s.now().Sub(r.LastUpdated)
	if elapsed < s.Dwell.MinimumDwell(r.Status) {
		return
	}
	next, ok := NextStatus(r.Status)
	if !ok {
		return
	}
	r.Status = next
	r.LastUpdated = s.now()
	r.ETA = ProjectedETA(next, r)
	if err := s.Store.Update(ctx, r); err != nil {
		s.logger().Error("ride update failed", "ride_id", r.ID, "status", next, "error", err)
		return
	}
	observability.TransitionsTotal.WithLabelValues(string(next)).Inc()
	s.logger().Info("ride transitioned", "ride_id", r.ID, "status", next, "eta", r.ETA)
	s.fanOut(ctx, r)
}

func (s *Scheduler) fanOut(ctx context.Context, r models.Ride) {
	for _, sink := range s.Sinks {
		sink.RideTransitioned(ctx, r)
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
