package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-payledger/internal/compensation"
	"go-payledger/internal/document"
	"go-payledger/internal/messaging/kafka"
	"go-payledger/internal/shared/config"
	"go-payledger/internal/shared/connection"

	"go.uber.org/zap"
)

// RunConsumer subscribes to employee lifecycle events and seeds initial
// compensation periods for new employees.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return err
	}

	documentStore := document.NewStore(gormDB, redisClient, cfg.MaxLetterSizeBytes)
	compensationRepo := compensation.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	compensationService := compensation.NewServiceWithOutbox(sqlDB, compensationRepo, documentStore, outboxRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := compensation.NewEmployeeCreatedConsumer(
		cfg.KafkaBroker,
		"go-payledger-compensation",
		compensationService,
		logger,
	)
	consumer.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
