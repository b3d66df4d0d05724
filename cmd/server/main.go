package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/eaindome/Ride-Booking-server/internal/config"
	"github.com/eaindome/Ride-Booking-server/internal/events"
	"github.com/eaindome/Ride-Booking-server/internal/fleet"
	httpapi "github.com/eaindome/Ride-Booking-server/internal/http"
	"github.com/eaindome/Ride-Booking-server/internal/lifecycle"
	"github.com/eaindome/Ride-Booking-server/internal/logging"
	"github.com/eaindome/Ride-Booking-server/internal/matcher"
	"github.com/eaindome/Ride-Booking-server/internal/models"
	"github.com/eaindome/Ride-Booking-server/internal/payments"
	"github.com/eaindome/Ride-Booking-server/internal/pubsub"
	"github.com/eaindome/Ride-Booking-server/internal/rides"
	"github.com/eaindome/Ride-Booking-server/internal/store"
	"github.com/eaindome/Ride-Booking-server/internal/storerelay"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel, "ride-booking-server")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ride store: in-process by default, relay client when a store node
	// owns the canonical data
	var rideStore store.RideStore
	if cfg.StoreNodeURL != "" {
		client, err := storerelay.Dial(cfg.StoreNodeURL, logger)
		if err != nil {
			logger.Error("store node dial failed", "url", cfg.StoreNodeURL, "error", err)
			os.Exit(1)
		}
		defer client.Close()
		rideStore = client
		logger.Info("using relay store", "url", cfg.StoreNodeURL)
	} else {
		rideStore = store.NewMemoryStore()
	}

	var fl fleet.Fleet
	var upserter fleet.Upserter
	if cfg.RedisAddr != "" {
		rf := fleet.NewRedisFleet(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisFleetKey)
		defer rf.Close()
		fl, upserter = rf, rf
	} else {
		mf := fleet.NewMemoryFleet()
		if cfg.SeedFleet {
			mf.Seed(seedDrivers())
			logger.Info("seeded demo fleet", "drivers", len(seedDrivers()))
		}
		fl, upserter = mf, mf
	}

	publisher := pubsub.NewPublisher(rideStore)

	var sinks []lifecycle.TransitionSink
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer kp.Close()
		sinks = append(sinks, kp)
	}
	var holder rides.PaymentHolder
	if cfg.StripeAPIKey != "" {
		capturer := payments.NewCapturer(payments.NewStripeClient(cfg.StripeAPIKey), logger)
		sinks = append(sinks, capturer)
		holder = capturer
	}

	svc := &rides.Service{
		Store:     rideStore,
		Fleet:     fl,
		Publisher: publisher,
		Pricing:   matcher.Pricing{BaseFareCents: cfg.BaseFareCents, PerKmCents: cfg.PerKmCents},
		Sinks:     sinks,
		Payments:  holder,
		Currency:  cfg.Currency,
		Logger:    logger,
	}

	sched := &lifecycle.Scheduler{
		Store:    rideStore,
		Dwell:    lifecycle.DwellPolicy{Scale: cfg.DwellScale},
		Sinks:    append([]lifecycle.TransitionSink{publisher}, sinks...),
		Interval: cfg.TickInterval,
		Logger:   logger,
	}
	go sched.Run(ctx)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewServer(svc, upserter, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	go func() {
		logger.Info("ride booking server listening", "addr", cfg.HTTPAddr, "dwell_scale", cfg.DwellScale)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("bye")
}

func seedDrivers() []models.Driver {
	return []models.Driver{
		{ID: "d-paris-1", Name: "Amelie", Rating: 4.9, Active: true,
			Loc:     models.Coord{Lon: 2.3522, Lat: 48.8566},
			Vehicle: models.Vehicle{Make: "Renault", Model: "Zoe", Plate: "AB-123-CD", Color: "white"}},
		{ID: "d-paris-2", Name: "Karim", Rating: 4.7, Active: true,
			Loc:     models.Coord{Lon: 2.2950, Lat: 48.8738},
			Vehicle: models.Vehicle{Make: "Peugeot", Model: "508", Plate: "EF-456-GH", Color: "black"}},
		{ID: "d-paris-3", Name: "Sofia", Rating: 4.8, Active: false,
			Loc:     models.Coord{Lon: 2.3730, Lat: 48.8440},
			Vehicle: models.Vehicle{Make: "Tesla", Model: "Model 3", Plate: "IJ-789-KL", Color: "red"}},
	}
}
