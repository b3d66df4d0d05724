package payments

import (
	"context"
	"log/slog"
	"sync"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

// Gateway is the payment provider surface the capturer needs.
// StripeClient satisfies it.
type Gateway interface {
	Hold(ctx context.Context, amountCents int64, currency, customerID string) (string, error)
	Capture(ctx context.Context, paymentIntentID string) error
	Cancel(ctx context.Context, paymentIntentID string) error
}

// Capturer ties fare holds to ride outcomes: capture on completion,
// release on cancellation. Payment failures are logged only; the ride
// lifecycle never stalls on the payment provider.
type Capturer struct {
	gw     Gateway
	logger *slog.Logger

	mu      sync.Mutex
	intents map[string]string // ride id -> payment intent id
}

func NewCapturer(gw Gateway, logger *slog.Logger) *Capturer {
	return &Capturer{gw: gw, logger: logger, intents: make(map[string]string)}
}

// Hold places the fare hold and remembers the intent for the ride.
func (c *Capturer) Hold(ctx context.Context, rideID string, amountCents int64, currency, customerID string) error {
	id, err := c.gw.Hold(ctx, amountCents, currency, customerID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.intents[rideID] = id
	c.mu.Unlock()
	return nil
}

func (c *Capturer) RideTransitioned(ctx context.Context, r models.Ride) {
	if !r.Status.Terminal() {
		return
	}
	c.mu.Lock()
	intent, ok := c.intents[r.ID]
	if ok {
		delete(c.intents, r.ID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	var err error
	if r.Status == models.StatusCompleted {
		err = c.gw.Capture(ctx, intent)
	} else {
		err = c.gw.Cancel(ctx, intent)
	}
	if err != nil {
		c.log().Error("payment settlement failed", "ride_id", r.ID, "status", r.Status, "error", err)
	}
}

func (c *Capturer) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}
