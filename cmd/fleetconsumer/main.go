// The fleet consumer keeps the Redis driver index current: it reads
// driver location messages from Kafka and writes them into the same GEO
// set the booking servers match against.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/eaindome/Ride-Booking-server/internal/fleet"
	"github.com/eaindome/Ride-Booking-server/internal/logging"
	"github.com/eaindome/Ride-Booking-server/internal/models"
)

var (
	msgsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_consumer_messages_consumed_total",
		Help: "Total driver location messages consumed",
	})
	msgsInvalid = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_consumer_messages_invalid_total",
		Help: "Total invalid messages received",
	})
	fleetUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_consumer_updates_total",
		Help: "Total successful fleet updates",
	})
	fleetErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fleet_consumer_errors_total",
		Help: "Total fleet update errors",
	})
)

func init() {
	prometheus.MustRegister(msgsConsumed, msgsInvalid, fleetUpdates, fleetErrors)
}

func main() {
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve prometheus metrics on")
	flag.Parse()

	logger := logging.NewLogger(os.Getenv("LOG_LEVEL"), "fleet-consumer")
	slog.SetDefault(logger)

	brokers := []string{"localhost:9092"}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = brokers[:0]
		for _, b := range strings.Split(v, ",") {
			if s := strings.TrimSpace(b); s != "" {
				brokers = append(brokers, s)
			}
		}
	}
	topic := getenv("KAFKA_TOPIC", "driver-locations")
	group := getenv("KAFKA_GROUP", "fleet-consumer")
	redisAddr := getenv("REDIS_ADDR", "localhost:6379")
	fleetKey := getenv("REDIS_FLEET_KEY", "drivers_geo")

	rf := fleet.NewRedisFleet(redisAddr, os.Getenv("REDIS_PASSWORD"), fleetKey)
	defer rf.Close()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
		logger.Info("metrics listening", "addr", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, GroupID: group, MinBytes: 10e3, MaxBytes: 10e6})
	defer r.Close()

	logger.Info("fleet consumer started", "topic", topic, "brokers", brokers, "group", group)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("shutting down fleet consumer")
				return
			}
			logger.Warn("kafka read error", "error", err, "backoff", backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second
		msgsConsumed.Inc()

		var d models.Driver
		if err := json.Unmarshal(m.Value, &d); err != nil {
			msgsInvalid.Inc()
			logger.Warn("invalid driver message", "error", err)
			continue
		}
		if err := upsertWithRetry(ctx, rf, d, 3, 200*time.Millisecond); err != nil {
			fleetErrors.Inc()
			logger.Error("fleet update failed", "driver_id", d.ID, "error", err)
			continue
		}
		fleetUpdates.Inc()
	}
}

// upsertWithRetry writes a driver into the fleet with small backoff, so
// a momentary redis blip does not drop a location sample.
func upsertWithRetry(ctx context.Context, up fleet.Upserter, d models.Driver, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = up.Upsert(ctx, d); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		time.Sleep(delay)
		delay *= 2
	}
	return err
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
