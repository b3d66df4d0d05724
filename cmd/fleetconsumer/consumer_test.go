package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

// fakeUpserter implements fleet.Upserter for tests
type fakeUpserter struct {
	fail  int // number of times to fail before succeeding
	calls int
}

func (f *fakeUpserter) Upsert(ctx context.Context, d models.Driver) error {
	f.calls++
	if f.calls <= f.fail {
		return errors.New("redis down")
	}
	return nil
}

func TestUpsertWithRetrySucceedsAfterRetries(t *testing.T) {
	f := &fakeUpserter{fail: 2}
	d := models.Driver{ID: "d1", Loc: models.Coord{Lon: 2, Lat: 1}, Rating: 4.5, Active: true}
	start := time.Now()
	if err := upsertWithRetry(context.Background(), f, d, 3, 10*time.Millisecond); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if f.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", f.calls)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatal("expected at least one backoff")
	}
}

func TestUpsertWithRetryFailsWhenExhausted(t *testing.T) {
	f := &fakeUpserter{fail: 5}
	d := models.Driver{ID: "d1"}
	if err := upsertWithRetry(context.Background(), f, d, 3, 5*time.Millisecond); err == nil {
		t.Fatal("expected error after retries")
	}
	if f.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", f.calls)
	}
}
