package fleet

import (
	"context"
	"testing"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

func TestMemoryFleetActiveFiltersAndKeepsOrder(t *testing.T) {
	f := NewMemoryFleet()
	f.Seed([]models.Driver{
		{ID: "a", Active: true},
		{ID: "b", Active: false},
		{ID: "c", Active: true},
	})

	got, err := f.Active(context.Background())
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("got %v, want [a c]", got)
	}
}

func TestMemoryFleetUpsertReplacesInPlace(t *testing.T) {
	f := NewMemoryFleet()
	f.Seed([]models.Driver{
		{ID: "a", Active: true},
		{ID: "b", Active: true},
	})

	if err := f.Upsert(context.Background(), models.Driver{ID: "a", Active: true, Loc: models.Coord{Lon: 1, Lat: 2}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, _ := f.Active(context.Background())
	if len(got) != 2 {
		t.Fatalf("got %d drivers, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].Loc != (models.Coord{Lon: 1, Lat: 2}) {
		t.Fatalf("re-upserted driver lost its slot or location: %+v", got[0])
	}
	if got[0].Updated.IsZero() {
		t.Fatal("Updated not stamped on upsert")
	}
}

func TestMemoryFleetDeactivationHidesDriver(t *testing.T) {
	f := NewMemoryFleet()
	f.Seed([]models.Driver{{ID: "a", Active: true}})

	_ = f.Upsert(context.Background(), models.Driver{ID: "a", Active: false})

	got, _ := f.Active(context.Background())
	if len(got) != 0 {
		t.Fatalf("inactive driver still listed: %v", got)
	}
}
