package fleet

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

// RedisFleet implements Fleet on top of Redis GEO commands plus a
// per-driver metadata hash. Location feeds arrive through Upsert,
// typically from the fleet consumer binary.
type RedisFleet struct {
	client *redis.Client
	key    string
}

func NewRedisFleet(addr, password, key string) *RedisFleet {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisFleet{client: c, key: key}
}

func (r *RedisFleet) Upsert(ctx context.Context, d models.Driver) error {
	if _, err := r.client.GeoAdd(ctx, r.key, &redis.GeoLocation{
		Longitude: d.Loc.Lon, Latitude: d.Loc.Lat, Name: d.ID,
	}).Result(); err != nil {
		return err
	}
	return r.client.HSet(ctx, metaKey(d.ID), map[string]interface{}{
		"name":    d.Name,
		"rating":  fmt.Sprintf("%f", d.Rating),
		"active":  strconv.FormatBool(d.Active),
		"make":    d.Vehicle.Make,
		"model":   d.Vehicle.Model,
		"plate":   d.Vehicle.Plate,
		"color":   d.Vehicle.Color,
		"updated": time.Now().Format(time.RFC3339),
	}).Err()
}

// Active scans the whole GEO set. Fleets here are city-sized, not
// planet-sized; a radius query around the pickup would be the next step.
func (r *RedisFleet) Active(ctx context.Context) ([]models.Driver, error) {
	ids, err := r.client.ZRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.Driver, 0, len(ids))
	for _, id := range ids {
		pos, err := r.client.GeoPos(ctx, r.key, id).Result()
		if err != nil || len(pos) == 0 || pos[0] == nil {
			continue
		}
		d := models.Driver{ID: id, Loc: models.Coord{Lon: pos[0].Longitude, Lat: pos[0].Latitude}}
		m, err := r.client.HGetAll(ctx, metaKey(id)).Result()
		if err != nil {
			continue
		}
		d.Name = m["name"]
		if v, ok := m["rating"]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				d.Rating = f
			}
		}
		d.Active = m["active"] == "true"
		d.Vehicle = models.Vehicle{Make: m["make"], Model: m["model"], Plate: m["plate"], Color: m["color"]}
		if !d.Active {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *RedisFleet) Close() error { return r.client.Close() }

func metaKey(id string) string { return "driver:meta:" + id }
