package pubsub

import (
	"context"
	"sync"

	"github.com/eaindome/Ride-Booking-server/internal/models"
	"github.com/eaindome/Ride-Booking-server/internal/observability"
)

// Snapshots is the read side the publisher needs to hand a late joiner
// the current ride state. The ride store satisfies it.
type Snapshots interface {
	Get(ctx context.Context, id string) (models.Ride, error)
}

// Publisher fans each published ride snapshot out to every subscriber of
// that ride, in publish order, broadcast semantics. One registry mutex
// serializes Publish against Subscribe, so a new subscription sees the
// current snapshot first and never a reordered or dropped update.
type Publisher struct {
	snapshots Snapshots

	mu     sync.Mutex
	groups map[string]map[*Subscription]struct{}
}

func NewPublisher(snapshots Snapshots) *Publisher {
	return &Publisher{
		snapshots: snapshots,
		groups:    make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers for updates on rideID. The ride's current snapshot
// is delivered first; an unknown ride is a subscribe-time error.
func (p *Publisher) Subscribe(ctx context.Context, rideID string) (*Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap, err := p.snapshots.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}

	sub := newSubscription(p, rideID)
	sub.enqueue(snap)

	g, ok := p.groups[rideID]
	if !ok {
		g = make(map[*Subscription]struct{})
		p.groups[rideID] = g
	}
	g[sub] = struct{}{}
	observability.Subscribers.Inc()
	return sub, nil
}

// Publish delivers r to every live subscriber of rideID. Callers that
// publish for the same ride from a single goroutine get strict ordering.
func (p *Publisher) Publish(rideID string, r models.Ride) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for sub := range p.groups[rideID] {
		sub.enqueue(r)
	}
}

// RideTransitioned lets the publisher act as a scheduler sink.
func (p *Publisher) RideTransitioned(ctx context.Context, r models.Ride) {
	p.Publish(r.ID, r)
}

func (p *Publisher) unsubscribe(sub *Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.groups[sub.rideID]
	if !ok {
		return
	}
	if _, ok := g[sub]; !ok {
		return
	}
	delete(g, sub)
	if len(g) == 0 {
		delete(p.groups, sub.rideID)
	}
	observability.Subscribers.Dec()
}

// Subscription is one client's ordered view of a ride. Updates are
// buffered in an unbounded queue and drained by a pump goroutine, so a
// slow consumer never blocks the scheduler or its sibling subscribers.
type Subscription struct {
	pub    *Publisher
	rideID string

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []models.Ride
	closed bool
	done   chan struct{}

	updates chan models.Ride
}

func newSubscription(p *Publisher, rideID string) *Subscription {
	s := &Subscription{
		pub:     p,
		rideID:  rideID,
		done:    make(chan struct{}),
		updates: make(chan models.Ride),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.pump()
	return s
}

// Updates streams ride snapshots in publish order. The channel closes
// after Close.
func (s *Subscription) Updates() <-chan models.Ride { return s.updates }

func (s *Subscription) RideID() string { return s.rideID }

// Close releases the subscription. Idempotent; undelivered updates are
// dropped, the subscriber is gone.
func (s *Subscription) Close() {
	s.pub.unsubscribe(s)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.cond.Signal()
	s.mu.Unlock()
}

func (s *Subscription) enqueue(r models.Ride) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, r)
	s.cond.Signal()
	s.mu.Unlock()
}

func (s *Subscription) pump() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			close(s.updates)
			return
		}
		r := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.updates <- r:
		case <-s.done:
			close(s.updates)
			return
		}
	}
}
