package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zerowastelink/platform/internal/cache"
	"github.com/zerowastelink/platform/internal/db"
	"github.com/zerowastelink/platform/internal/kafka"
	"github.com/zerowastelink/platform/internal/logger"
	"github.com/zerowastelink/platform/internal/repository/postgresql"
	"github.com/zerowastelink/platform/internal/server"
	"github.com/zerowastelink/platform/internal/storage"
)

const expirySweepInterval = 5 * time.Minute

func main() {
	log := logger.New()
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbPool, err := db.NewDb(ctx)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer dbPool.GetPool().Close()

	donationRepo := postgresql.NewDonationRepo(dbPool)
	userRepo := postgresql.NewUserRepo(dbPool)
	historyRepo := postgresql.NewHistoryRepo(dbPool)
	outboxRepo := postgresql.NewOutboxTaskRepo()

	donationCache := cache.NewDonationCache(donationRepo, log)
	if err := donationCache.LoadInitialData(ctx); err != nil {
		log.Warn("failed to warm donation cache, continuing cold", zap.Error(err))
	}

	service := storage.NewDonationService(dbPool, donationRepo, userRepo, historyRepo, outboxRepo, log).
		WithCache(donationCache)

	srv := server.New(service, userRepo, log)

	var producer kafka.Producer
	if brokers := kafkaBrokers(); len(brokers) > 0 {
		producer = kafka.NewWriterProducer(brokers, log)
	} else {
		log.Info("KAFKA_BROKERS not set, events go to the console producer")
		producer = kafka.NewConsoleProducer(log)
	}

	publisher := kafka.NewPublisher(dbPool, outboxRepo, producer, kafka.PublisherConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	}, log)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx, httpPort())
	})

	g.Go(func() error {
		publisher.Run(ctx)
		publisher.Shutdown()
		return nil
	})

	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(expirySweepInterval),
			gocron.NewTask(func() {
				cancelled, err := service.CancelExpired(ctx)
				if err != nil {
					log.Error("expiry sweep failed", zap.Error(err))
					return
				}
				if cancelled > 0 {
					log.Info("expiry sweep cancelled donations", zap.Int("count", cancelled))
				}
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()
		<-ctx.Done()
		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown with error", zap.Error(err))
	}
	log.Info("all components stopped")
}

func httpPort() string {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		return port
	}
	return "9000"
}

func kafkaBrokers() []string {
	raw := os.Getenv("KAFKA_BROKERS")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
