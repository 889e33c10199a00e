package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/zerowastelink/platform/internal/logger"
	"github.com/zerowastelink/platform/internal/repository"
)

const (
	defaultBrokers = "localhost:9092"
	topic          = "donation_events"
	groupID        = "donation-events-consumer-group"
)

// Standalone consumer for donation lifecycle events. Handy for watching a
// deployment live or feeding the stream into downstream tooling.
func main() {
	log := logger.New()
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = defaultBrokers
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(brokers, ","),
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Error("failed to close kafka reader", zap.Error(err))
		}
	}()

	log.Info("consumer connected", zap.String("topic", topic), zap.String("brokers", brokers))

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("shutdown signal received, stopping consumer")
				return
			}
			log.Error("failed to read message", zap.Error(err))
			time.Sleep(5 * time.Second)
			continue
		}

		var payload repository.DonationEventPayload
		if err := json.Unmarshal(m.Value, &payload); err != nil {
			log.Warn("skipping unparsable event",
				zap.Int64("offset", m.Offset),
				zap.ByteString("value", m.Value),
				zap.Error(err))
			continue
		}

		log.Info("donation event",
			zap.String("event", payload.Event),
			zap.String("donation_id", payload.DonationID),
			zap.String("donor_id", payload.DonorID),
			zap.String("old_status", payload.OldStatus),
			zap.String("new_status", payload.NewStatus),
			zap.Int("estimated_meals", payload.EstimatedMeals),
			zap.Time("occurred_at", payload.OccurredAt),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset))
	}
}
