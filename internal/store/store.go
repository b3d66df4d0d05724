package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

var (
	ErrNotFound = errors.New("ride not found")
	ErrExists   = errors.New("ride already exists")
)

// RideStore defines persistence operations for rides. All mutation goes
// through Update with full-record replace semantics: a concurrent pair of
// updates resolves to one of the two inputs, never a field-level merge.
type RideStore interface {
	Get(ctx context.Context, id string) (models.Ride, error)
	Insert(ctx context.Context, r models.Ride) error
	Update(ctx context.Context, r models.Ride) error
	FindActive(ctx context.Context) ([]models.Ride, error)
	FindByRequester(ctx context.Context, riderID string) ([]models.Ride, error)
}

// MemoryStore holds ride records by value behind one RWMutex, so every
// read sees a complete record and every write replaces one atomically.
type MemoryStore struct {
	mu    sync.RWMutex
	rides map[string]models.Ride
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rides: make(map[string]models.Ride)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok {
		return models.Ride{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) Insert(ctx context.Context, r models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[r.ID]; ok {
		return ErrExists
	}
	m.rides[r.ID] = r
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, r models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[r.ID]; !ok {
		return ErrNotFound
	}
	m.rides[r.ID] = r
	return nil
}

func (m *MemoryStore) FindActive(ctx context.Context) ([]models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Ride, 0)
	for _, r := range m.rides {
		if !r.Status.Terminal() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindByRequester(ctx context.Context, riderID string) ([]models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Ride, 0)
	for _, r := range m.rides {
		if r.RiderID == riderID {
			out = append(out, r)
		}
	}
	// most recent first
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}
