package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eaindome/Ride-Booking-server/internal/fleet"
	"github.com/eaindome/Ride-Booking-server/internal/matcher"
	"github.com/eaindome/Ride-Booking-server/internal/models"
	"github.com/eaindome/Ride-Booking-server/internal/pubsub"
	"github.com/eaindome/Ride-Booking-server/internal/rides"
	"github.com/eaindome/Ride-Booking-server/internal/store"
)

func testServer(t *testing.T, drivers ...models.Driver) *Server {
	t.Helper()
	f := fleet.NewMemoryFleet()
	f.Seed(drivers)
	ms := store.NewMemoryStore()
	svc := &rides.Service{
		Store:     ms,
		Fleet:     f,
		Publisher: pubsub.NewPublisher(ms),
		Pricing:   matcher.Pricing{BaseFareCents: 250, PerKmCents: 120},
	}
	return NewServer(svc, f, slog.Default())
}

func do(t *testing.T, s *Server, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

const bookBody = `{"pickup":[2.3500,48.8550],"destination":[2.2950,48.8738],"destination_label":"Arc de Triomphe"}`

func onlineDriver() models.Driver {
	return models.Driver{ID: "d1", Name: "Ada", Rating: 4.8, Active: true, Loc: models.Coord{Lon: 2.3522, Lat: 48.8566}}
}

func TestCreateRideEndpoint(t *testing.T) {
	s := testServer(t, onlineDriver())
	w := do(t, s, "POST", "/api/v1/rides", "u1", bookBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var ride models.Ride
	if err := json.Unmarshal(w.Body.Bytes(), &ride); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if ride.Status != models.StatusDriverEnRoute || ride.Driver.ID != "d1" {
		t.Fatalf("unexpected ride: %+v", ride)
	}

	got := do(t, s, "GET", "/api/v1/rides/"+ride.ID, "u1", "")
	if got.Code != http.StatusOK {
		t.Fatalf("get status = %d", got.Code)
	}
}

func TestCreateRideRequiresIdentity(t *testing.T) {
	s := testServer(t, onlineDriver())
	if w := do(t, s, "POST", "/api/v1/rides", "", bookBody); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCreateRideBadCoordinate(t *testing.T) {
	s := testServer(t, onlineDriver())
	w := do(t, s, "POST", "/api/v1/rides", "u1", `{"pickup":[2.35],"destination":[2.29,48.87]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCreateRideNoDrivers(t *testing.T) {
	s := testServer(t)
	w := do(t, s, "POST", "/api/v1/rides", "u1", bookBody)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
	var resp errorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != string(rides.KindNoDrivers) {
		t.Fatalf("error kind = %q", resp.Error)
	}
}

func TestGetUnknownRideIs404(t *testing.T) {
	s := testServer(t, onlineDriver())
	if w := do(t, s, "GET", "/api/v1/rides/ghost", "u1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestInvalidTransitionCarriesValidTargets(t *testing.T) {
	s := testServer(t, onlineDriver())
	w := do(t, s, "POST", "/api/v1/rides", "u1", bookBody)
	var ride models.Ride
	_ = json.Unmarshal(w.Body.Bytes(), &ride)

	tr := do(t, s, "POST", "/api/v1/rides/"+ride.ID+"/transition", "u1", `{"target":"completed"}`)
	if tr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", tr.Code, tr.Body.String())
	}
	var resp errorResponse
	_ = json.Unmarshal(tr.Body.Bytes(), &resp)
	if resp.Error != string(rides.KindInvalidTransition) {
		t.Fatalf("error kind = %q", resp.Error)
	}
	if len(resp.ValidTargets) != 2 {
		t.Fatalf("valid targets = %v", resp.ValidTargets)
	}
}

func TestCancelForbiddenForOtherUser(t *testing.T) {
	s := testServer(t, onlineDriver())
	w := do(t, s, "POST", "/api/v1/rides", "u1", bookBody)
	var ride models.Ride
	_ = json.Unmarshal(w.Body.Bytes(), &ride)

	if c := do(t, s, "POST", "/api/v1/rides/"+ride.ID+"/cancel", "intruder", ""); c.Code != http.StatusForbidden {
		t.Fatalf("status = %d", c.Code)
	}
	if c := do(t, s, "POST", "/api/v1/rides/"+ride.ID+"/cancel", "u1", ""); c.Code != http.StatusOK {
		t.Fatalf("status = %d", c.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	s := testServer(t, onlineDriver())
	_ = do(t, s, "POST", "/api/v1/rides", "u1", bookBody)
	_ = do(t, s, "POST", "/api/v1/rides", "u1", bookBody) // cancels the first

	w := do(t, s, "GET", "/api/v1/rides/history", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var history []models.Ride
	_ = json.Unmarshal(w.Body.Bytes(), &history)
	if len(history) != 2 {
		t.Fatalf("expected 2 rides, got %d", len(history))
	}

	cancelled := do(t, s, "GET", "/api/v1/rides/history?status=cancelled", "u1", "")
	var onlyCancelled []models.Ride
	_ = json.Unmarshal(cancelled.Body.Bytes(), &onlyCancelled)
	if len(onlyCancelled) != 1 || onlyCancelled[0].Status != models.StatusCancelled {
		t.Fatalf("filtered history = %+v", onlyCancelled)
	}
}

func TestDriverLocationIngest(t *testing.T) {
	s := testServer(t)
	w := do(t, s, "POST", "/internal/driver/locations", "", `{"id":"d9","name":"Kai","rating":4.2,"loc":{"lon":2.35,"lat":48.85}}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	// the fresh driver is immediately matchable
	if b := do(t, s, "POST", "/api/v1/rides", "u1", bookBody); b.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", b.Code, b.Body.String())
	}
}
