package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

// KafkaProducer exports every ride transition to a topic, keyed by ride
// id so per-ride ordering survives partitioning. It is a best-effort
// sink: a broker hiccup is logged, never propagated into the scheduler.
type KafkaProducer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaProducer(brokers []string, topic string, logger *slog.Logger) *KafkaProducer {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaProducer{writer: w, logger: logger}
}

func (k *KafkaProducer) RideTransitioned(ctx context.Context, r models.Ride) {
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := json.Marshal(r)
	if err != nil {
		k.log().Error("marshal ride event", "ride_id", r.ID, "error", err)
		return
	}
	if err := k.writer.WriteMessages(wctx, kafka.Message{Key: []byte(r.ID), Value: b}); err != nil {
		k.log().Error("kafka publish failed", "ride_id", r.ID, "status", r.Status, "error", err)
	}
}

func (k *KafkaProducer) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}

func (k *KafkaProducer) log() *slog.Logger {
	if k.logger != nil {
		return k.logger
	}
	return slog.Default()
}
