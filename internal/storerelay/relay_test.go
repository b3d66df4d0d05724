package storerelay

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eaindome/Ride-Booking-server/internal/models"
	"github.com/eaindome/Ride-Booking-server/internal/store"
)

func newRelayPair(t *testing.T) (*Client, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	srv := httptest.NewServer(NewServer(ms, nil))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, err := Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, ms
}

func relayRide(id, rider string, status models.Status) models.Ride {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Ride{ID: id, RiderID: rider, Status: status, CreatedAt: now, LastUpdated: now}
}

func TestRelayRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newRelayPair(t)

	r := relayRide("r1", "u1", models.StatusDriverEnRoute)
	if err := c.Insert(ctx, r); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := c.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "r1" || got.Status != models.StatusDriverEnRoute {
		t.Fatalf("bad ride back: %+v", got)
	}

	r.Status = models.StatusDriverArrived
	if err := c.Update(ctx, r); err != nil {
		t.Fatalf("update: %v", err)
	}
	active, err := c.FindActive(ctx)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if len(active) != 1 || active[0].Status != models.StatusDriverArrived {
		t.Fatalf("active = %+v", active)
	}

	mine, err := c.FindByRequester(ctx, "u1")
	if err != nil {
		t.Fatalf("find by requester: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 ride, got %d", len(mine))
	}
}

func TestRelaySentinelErrors(t *testing.T) {
	ctx := context.Background()
	c, _ := newRelayPair(t)

	if _, err := c.Get(ctx, "ghost"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound across the wire, got %v", err)
	}
	r := relayRide("r1", "u1", models.StatusDriverEnRoute)
	if err := c.Insert(ctx, r); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := c.Insert(ctx, r); err != store.ErrExists {
		t.Fatalf("expected ErrExists across the wire, got %v", err)
	}
	if err := c.Update(ctx, relayRide("ghost", "u1", models.StatusCancelled)); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

// Many goroutines sharing one relay connection must each get their own
// response back, paired by correlation id.
func TestRelayConcurrentCallersGetOwnResponses(t *testing.T) {
	ctx := context.Background()
	c, ms := newRelayPair(t)

	const n = 40
	for i := 0; i < n; i++ {
		id := "r" + strconv.Itoa(i)
		_ = ms.Insert(ctx, relayRide(id, "u"+strconv.Itoa(i), models.StatusDriverEnRoute))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "r" + strconv.Itoa(i)
			got, err := c.Get(ctx, id)
			if err != nil {
				errs <- err
				return
			}
			if got.ID != id {
				errs <- fmt.Errorf("asked for %s, got %s", id, got.ID)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent call failed: %v", err)
	}
}

func TestRelayCallHonorsContext(t *testing.T) {
	c, _ := newRelayPair(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Get(ctx, "r1"); err == nil {
		t.Fatal("expected context error")
	}
}
