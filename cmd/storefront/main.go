package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jogardn/storefront/internal/api"
	"github.com/jogardn/storefront/internal/circuitbreaker"
	"github.com/jogardn/storefront/internal/config"
	"github.com/jogardn/storefront/internal/events"
	"github.com/jogardn/storefront/internal/feed"
	"github.com/jogardn/storefront/internal/service"
	"github.com/jogardn/storefront/internal/store"
	"github.com/jogardn/storefront/internal/store/memory"
	"github.com/jogardn/storefront/internal/store/postgres"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer st.Close()

	hub := feed.NewHub("storefront", logger)
	go hub.Run(ctx)

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	svc := service.New(st, events.FanOut{publisher, hub}, logger, service.Config{BcryptCost: cfg.BcryptCost})

	handler := api.NewHandler(svc, logger)
	handler.SetFeed(hub.HandleWebSocket)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":   cfg.HTTPPort,
			"driver": cfg.StoreDriver,
		}).Info("Starting storefront")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	}

	db, err := postgres.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// newPublisher returns the Kafka producer guarded by a circuit breaker, or a
// log-only publisher when no brokers are configured.
func newPublisher(cfg *config.Config, logger *logrus.Logger) (events.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, order events are only logged")
		return events.LogPublisher{Logger: logger}, func() {}
	}

	producer, err := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka producer")
	}

	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:           "kafka-producer",
		MaxFailures:    5,
		OpenTimeout:    30 * time.Second,
		HalfOpenProbes: 1,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("Event publishing circuit breaker changed state")
		},
	}, logger)

	return events.NewBreakerPublisher(producer, breaker), func() {
		if err := producer.Close(); err != nil {
			logger.WithError(err).Error("Failed to close Kafka producer")
		}
	}
}
