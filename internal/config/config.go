package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig captures all tunable parameters for the booking API
// process. Values are primarily loaded from environment variables with
// sane defaults so the binary can run locally without excessive setup.
type ServerConfig struct {
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// StoreNodeURL switches the ride store to the relay client,
	// e.g. ws://storenode:7000/relay. Empty means in-process store.
	StoreNodeURL string

	RedisAddr     string
	RedisPassword string
	RedisFleetKey string

	KafkaBrokers []string
	KafkaTopic   string

	StripeAPIKey string
	Currency     string

	TickInterval  time.Duration
	FastMode      bool
	DwellScale    float64
	BaseFareCents int64
	PerKmCents    int64

	SeedFleet bool
	LogLevel  string
}

// StoreNodeConfig configures the canonical store process.
type StoreNodeConfig struct {
	ListenAddr    string
	PGDSN         string
	RunMigrations bool
	LogLevel      string
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr:        ":8080",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RedisFleetKey:   "drivers_geo",
		KafkaTopic:      "ride-transitions",
		Currency:        "usd",
		TickInterval:    time.Second,
		DwellScale:      1,
		BaseFareCents:   250,
		PerKmCents:      120,
		LogLevel:        "info",
	}
}

func LoadServerConfig() (ServerConfig, error) {
	cfg := defaultServerConfig()
	var errs []error

	setStringFromEnv(&cfg.HTTPAddr, "HTTP_ADDR")
	setDurationFromEnv(&cfg.ReadTimeout, "HTTP_READ_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.WriteTimeout, "HTTP_WRITE_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.IdleTimeout, "HTTP_IDLE_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.ShutdownTimeout, "HTTP_SHUTDOWN_TIMEOUT", &errs)

	cfg.StoreNodeURL = strings.TrimSpace(os.Getenv("STORE_NODE_URL"))

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	setStringFromEnv(&cfg.RedisFleetKey, "REDIS_FLEET_KEY")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setStringFromEnv(&cfg.KafkaTopic, "KAFKA_TOPIC")

	cfg.StripeAPIKey = os.Getenv("STRIPE_API_KEY")
	setStringFromEnv(&cfg.Currency, "CURRENCY")

	setDurationFromEnv(&cfg.TickInterval, "TICK_INTERVAL", &errs)
	cfg.FastMode = strings.EqualFold(os.Getenv("FAST_MODE"), "true")
	if cfg.FastMode {
		cfg.DwellScale = 0.1
	}
	setFloatFromEnv(&cfg.DwellScale, "DWELL_SCALE", &errs)

	setInt64FromEnv(&cfg.BaseFareCents, "BASE_FARE_CENTS", &errs)
	setInt64FromEnv(&cfg.PerKmCents, "PER_KM_CENTS", &errs)

	cfg.SeedFleet = strings.EqualFold(os.Getenv("SEED_FLEET"), "true")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if cfg.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("TICK_INTERVAL must be > 0"))
	}
	if cfg.DwellScale <= 0 {
		errs = append(errs, fmt.Errorf("DWELL_SCALE must be > 0"))
	}

	return cfg, errors.Join(errs...)
}

func LoadStoreNodeConfig() (StoreNodeConfig, error) {
	cfg := StoreNodeConfig{ListenAddr: ":7000", LogLevel: "info"}
	setStringFromEnv(&cfg.ListenAddr, "RELAY_ADDR")
	cfg.PGDSN = os.Getenv("PG_DSN")
	cfg.RunMigrations = strings.EqualFold(os.Getenv("MIGRATE"), "true")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	return cfg, nil
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setFloatFromEnv(target *float64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = f
	}
}

func setInt64FromEnv(target *int64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
