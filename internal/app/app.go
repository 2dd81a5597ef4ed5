package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/socialboost/panel/internal/api"
	"github.com/socialboost/panel/internal/api/middleware"
	"github.com/socialboost/panel/internal/config"
	"github.com/socialboost/panel/internal/db"
	"github.com/socialboost/panel/internal/events"
	"github.com/socialboost/panel/internal/gateway"
	"github.com/socialboost/panel/internal/idempotency"
	"github.com/socialboost/panel/internal/observability"
	"github.com/socialboost/panel/internal/repository"
	"github.com/socialboost/panel/internal/service"
	"github.com/socialboost/panel/internal/session"
	"github.com/socialboost/panel/internal/worker"
	"github.com/socialboost/panel/migrations"
)

// Run bootstraps the store, workers and HTTP server, blocking until
// shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()
	middleware.SetJWTSecret(cfg.JWTSecret)
	middleware.SetJWTValidation(cfg.JWTIssuer, cfg.JWTAudience)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := repository.ApplyMigrations(ctx, database, migrations.Files); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	store := repository.NewStore(database)
	if cfg.SeedOnStart {
		if err := store.Seed(ctx); err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = newRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
	}

	sessions := session.NewManager()
	bus := events.NewBus(logger)
	if redisClient != nil {
		bus = bus.WithRedis(redisClient)
	}
	idemStore := idempotency.NewStore(redisCmdable(redisClient), store, cfg.IdempotencyTTL)

	cards := gateway.NewMockCardGateway()
	cards.FailureRate = cfg.CardFailureRate
	cards.Latency = cfg.CardChargeLatency

	queueWorker := worker.NewQueueWorker(store).WithPollInterval(cfg.QueuePollInterval)
	stopQueue := queueWorker.Run(ctx)

	integrityWorker := worker.NewIntegrityWorker(service.NewIntegrityService(store)).
		WithInterval(cfg.IntegrityInterval)
	stopIntegrity := integrityWorker.Run(ctx)

	router := api.NewRouter(cfg, logger, database, store, sessions, bus, idemStore, redisCmdable(redisClient), cards)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("stopping workers")
	stopQueue()
	stopIntegrity()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// redisCmdable avoids handing a typed-nil *redis.Client to interface
// fields.
func redisCmdable(client *redis.Client) redis.Cmdable {
	if client == nil {
		return nil
	}
	return client
}
