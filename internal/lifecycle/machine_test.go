package lifecycle

import (
	"testing"
	"time"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

func TestNextStatusTable(t *testing.T) {
	cases := []struct {
		from models.Status
		want models.Status
		ok   bool
	}{
		{models.StatusDriverEnRoute, models.StatusDriverArrived, true},
		{models.StatusDriverArrived, models.StatusRideStarted, true},
		{models.StatusRideStarted, models.StatusCompleted, true},
		{models.StatusCompleted, "", false},
		{models.StatusCancelled, "", false},
		{models.Status("bogus"), "", false},
	}
	for _, c := range cases {
		got, ok := NextStatus(c.from)
		if ok != c.ok || got != c.want {
			t.Fatalf("NextStatus(%s) = (%s, %v), want (%s, %v)", c.from, got, ok, c.want, c.ok)
		}
	}
}

func TestChainReachesCompletedAndStops(t *testing.T) {
	s := models.StatusDriverEnRoute
	steps := 0
	for {
		next, ok := NextStatus(s)
		if !ok {
			break
		}
		s = next
		steps++
		if steps > 10 {
			t.Fatal("transition table loops")
		}
	}
	if s != models.StatusCompleted {
		t.Fatalf("chain ends at %s, want completed", s)
	}
	if _, ok := NextStatus(s); ok {
		t.Fatal("completed must not advance")
	}
}

func TestMinimumDwellScaling(t *testing.T) {
	prod := DwellPolicy{Scale: 1}
	fast := DwellPolicy{Scale: 0.1}

	if d := prod.MinimumDwell(models.StatusDriverEnRoute); d != time.Minute {
		t.Fatalf("en_route dwell = %s, want 1m", d)
	}
	if d := prod.MinimumDwell(models.StatusDriverArrived); d != 30*time.Second {
		t.Fatalf("arrived dwell = %s, want 30s", d)
	}
	if d := fast.MinimumDwell(models.StatusDriverEnRoute); d != 6*time.Second {
		t.Fatalf("fast en_route dwell = %s, want 6s", d)
	}
	// zero scale falls back to production timing
	if d := (DwellPolicy{}).MinimumDwell(models.StatusDriverArrived); d != 30*time.Second {
		t.Fatalf("zero-scale dwell = %s, want 30s", d)
	}
	if d := prod.MinimumDwell(models.StatusCompleted); d != 0 {
		t.Fatalf("terminal dwell = %s, want 0", d)
	}
}

func TestProjectedETA(t *testing.T) {
	r := models.Ride{ETA: "5 minutes", TripETA: "12 minutes"}
	if got := ProjectedETA(models.StatusDriverArrived, r); got != "Driver has arrived" {
		t.Fatalf("arrived eta = %q", got)
	}
	if got := ProjectedETA(models.StatusRideStarted, r); got != "12 minutes" {
		t.Fatalf("started eta = %q", got)
	}
	if got := ProjectedETA(models.StatusCompleted, r); got != "Completed" {
		t.Fatalf("completed eta = %q", got)
	}
	if got := ProjectedETA(models.StatusCancelled, r); got != "5 minutes" {
		t.Fatalf("cancelled eta should keep prior value, got %q", got)
	}
}

func TestManualTargets(t *testing.T) {
	got := ManualTargets(models.StatusDriverEnRoute)
	want := []models.Status{models.StatusDriverArrived, models.StatusCancelled}
	if len(got) != len(want) {
		t.Fatalf("targets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("targets = %v, want %v", got, want)
		}
	}
	// no skipping intermediate statuses
	if ManualAllowed(models.StatusDriverEnRoute, models.StatusCompleted) {
		t.Fatal("en_route -> completed must be rejected")
	}
	if !ManualAllowed(models.StatusRideStarted, models.StatusCompleted) {
		t.Fatal("started -> completed must be allowed")
	}
	if !ManualAllowed(models.StatusDriverArrived, models.StatusCancelled) {
		t.Fatal("cancel must be reachable from any non-terminal status")
	}
	if len(ManualTargets(models.StatusCompleted)) != 0 || len(ManualTargets(models.StatusCancelled)) != 0 {
		t.Fatal("terminal statuses have no manual targets")
	}
}
