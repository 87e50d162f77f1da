package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentsystems/notary-arweave-bundler/internal/container"
	"github.com/agentsystems/notary-arweave-bundler/internal/messaging"
	"github.com/agentsystems/notary-arweave-bundler/internal/sweep"
	"github.com/samber/do"
	"go.uber.org/zap"
)

func main() {
	opts := &container.Options{
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CounterBackend: getEnv("COUNTER_BACKEND", container.BackendRedis),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		ConsumerGroup:  getEnv("CONSUMER_GROUP", "notary-workers"),
		SweepSchedule:  getEnv("SWEEP_SCHEDULE", sweep.DefaultSchedule),
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.ConfigPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.RateLimitPackage(injector)
	container.RecorderPackage(injector)
	container.ConsumerGroupPackage(injector)
	container.SweeperPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		logger.Fatal("failed to build consumer group", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	sweeper, err := do.Invoke[*sweep.Sweeper](injector)

	switch {
	case err == nil:
		sweeper.Start()
	case errors.Is(err, container.ErrSweepNotNeeded):
		logger.Debug("expired counter sweep disabled")
	default:
		logger.Fatal("failed to build sweeper", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}
