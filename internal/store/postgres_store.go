package store

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/lib/pq"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

// PostgresStore backs the store node when durability across restarts
// matters more than the default in-memory setup.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (models.Ride, error) {
	row := p.db.QueryRowContext(ctx, `SELECT id, rider_id, pickup_lon, pickup_lat, dest_lon, dest_lat, dest_label, driver, status, eta, trip_eta, cost_cents, distance_km, created_at, last_updated FROM rides WHERE id=$1`, id)
	return scanRide(row)
}

func (p *PostgresStore) Insert(ctx context.Context, r models.Ride) error {
	driver, err := json.Marshal(r.Driver)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO rides(id, rider_id, pickup_lon, pickup_lat, dest_lon, dest_lat, dest_label, driver, status, eta, trip_eta, cost_cents, distance_km, created_at, last_updated) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		r.ID, r.RiderID, r.Pickup.Lon, r.Pickup.Lat, r.Destination.Lon, r.Destination.Lat, r.DestinationLabel, driver, string(r.Status), r.ETA, r.TripETA, r.CostCents, r.DistanceKm, r.CreatedAt, r.LastUpdated)
	return err
}

func (p *PostgresStore) Update(ctx context.Context, r models.Ride) error {
	driver, err := json.Marshal(r.Driver)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, `UPDATE rides SET rider_id=$1, pickup_lon=$2, pickup_lat=$3, dest_lon=$4, dest_lat=$5, dest_label=$6, driver=$7, status=$8, eta=$9, trip_eta=$10, cost_cents=$11, distance_km=$12, created_at=$13, last_updated=$14 WHERE id=$15`,
		r.RiderID, r.Pickup.Lon, r.Pickup.Lat, r.Destination.Lon, r.Destination.Lat, r.DestinationLabel, driver, string(r.Status), r.ETA, r.TripETA, r.CostCents, r.DistanceKm, r.CreatedAt, r.LastUpdated, r.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) FindActive(ctx context.Context) ([]models.Ride, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, rider_id, pickup_lon, pickup_lat, dest_lon, dest_lat, dest_label, driver, status, eta, trip_eta, cost_cents, distance_km, created_at, last_updated FROM rides WHERE status NOT IN ('completed','cancelled')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func (p *PostgresStore) FindByRequester(ctx context.Context, riderID string) ([]models.Ride, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, rider_id, pickup_lon, pickup_lat, dest_lon, dest_lat, dest_label, driver, status, eta, trip_eta, cost_cents, distance_km, created_at, last_updated FROM rides WHERE rider_id=$1 ORDER BY last_updated DESC`, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func (p *PostgresStore) Close() error { return p.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (models.Ride, error) {
	var r models.Ride
	var driver []byte
	var status string
	err := row.Scan(&r.ID, &r.RiderID, &r.Pickup.Lon, &r.Pickup.Lat, &r.Destination.Lon, &r.Destination.Lat, &r.DestinationLabel, &driver, &status, &r.ETA, &r.TripETA, &r.CostCents, &r.DistanceKm, &r.CreatedAt, &r.LastUpdated)
	if err == sql.ErrNoRows {
		return models.Ride{}, ErrNotFound
	}
	if err != nil {
		return models.Ride{}, err
	}
	r.Status = models.Status(status)
	if err := json.Unmarshal(driver, &r.Driver); err != nil {
		return models.Ride{}, err
	}
	return r, nil
}

func collectRides(rows *sql.Rows) ([]models.Ride, error) {
	out := make([]models.Ride, 0)
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
