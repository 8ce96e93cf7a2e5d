package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/sap"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/servicelayer"
	"github.com/wms/backend/internal/infrastructure/worker"
)

// Standalone posting queue worker. The API server can run an embedded worker
// (worker.enabled); this binary exists so the queue can be drained by
// separate processes scaled independently of the HTTP surface. Claims are
// SKIP LOCKED, so running both at once is safe.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting WMS posting worker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.Duration("poll_interval", cfg.Worker.PollInterval),
		zap.Int("batch_size", cfg.Worker.BatchSize),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	// Redis shares the Service Layer session with the API server
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	var serviceLayer sap.ServiceLayer
	if cfg.SAP.Offline {
		serviceLayer = servicelayer.NewOfflineClient(log)
		log.Warn("SAP offline mode enabled; queued jobs complete with simulated postings and synthetic document numbers")
	} else {
		client, err := servicelayer.NewClient(cfg.SAP,
			servicelayer.WithLogger(log),
			servicelayer.WithSessionStore(servicelayer.NewRedisSessionStore(redisClient)),
		)
		if err != nil {
			log.Fatal("Failed to initialize Service Layer client", zap.Error(err))
		}
		serviceLayer = client
	}

	postingJobRepo := persistence.NewGormPostingJobRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	w := worker.New(postingJobRepo, transferRepo, scope, serviceLayer, cfg.Worker, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		log.Fatal("Failed to start posting worker", zap.Error(err))
	}
	log.Info("Posting worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down posting worker...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := w.Stop(stopCtx); err != nil {
		log.Error("Posting worker shutdown error", zap.Error(err))
	}
	log.Info("Posting worker stopped")
}
