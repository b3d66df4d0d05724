package fleet

import (
	"context"
	"sync"
	"time"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

// Fleet is the driver registry the matcher reads from. Drivers are
// read-only with respect to ride activity; ride creation never reserves
// or locks a driver.
type Fleet interface {
	Active(ctx context.Context) ([]models.Driver, error)
}

// Upserter is the write side, fed by the location ingest path.
type Upserter interface {
	Upsert(ctx context.Context, d models.Driver) error
}

// MemoryFleet keeps drivers in insertion order so nearest-driver
// tie-breaks are stable across calls.
type MemoryFleet struct {
	mu      sync.RWMutex
	order   []string
	drivers map[string]models.Driver
}

func NewMemoryFleet() *MemoryFleet {
	return &MemoryFleet{drivers: make(map[string]models.Driver)}
}

func (f *MemoryFleet) Upsert(ctx context.Context, d models.Driver) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.Updated = time.Now()
	if _, ok := f.drivers[d.ID]; !ok {
		f.order = append(f.order, d.ID)
	}
	f.drivers[d.ID] = d
	return nil
}

func (f *MemoryFleet) Active(ctx context.Context) ([]models.Driver, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Driver, 0, len(f.order))
	for _, id := range f.order {
		if d := f.drivers[id]; d.Active {
			out = append(out, d)
		}
	}
	return out, nil
}

// Seed loads a static fleet, e.g. for local runs and tests.
func (f *MemoryFleet) Seed(drivers []models.Driver) {
	for _, d := range drivers {
		_ = f.Upsert(context.Background(), d)
	}
}
