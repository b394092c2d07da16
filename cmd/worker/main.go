package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/service"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/bootstrap"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/queue"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/config"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

// The worker persists notifications enqueued by the API's queue sink.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.RedisURL == "" {
		log.Fatalf("REDIS_URL is required to run the worker")
	}
	if cfg.StorageDriver == config.StorageMemory {
		log.Fatalf("The worker needs shared storage, STORAGE_DRIVER=%s is process-local", cfg.StorageDriver)
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	firebaseApp, err := bootstrap.FirebaseApp(ctx, cfg)
	if err != nil {
		logger.L().Fatal("Failed to initialize Firebase: " + err.Error())
	}

	store, err := bootstrap.OpenStorage(ctx, cfg, firebaseApp)
	if err != nil {
		logger.L().Fatal("Failed to open storage: " + err.Error())
	}
	defer store.Close()

	server, err := queue.NewAsynqServer(cfg.RedisURL, cfg.WorkerConcurrency, service.NotificationQueue)
	if err != nil {
		logger.L().Fatal("Failed to create queue server: " + err.Error())
	}
	server.Register(service.NotificationTaskType, service.NotificationDeliveryHandler(store.Notifications))

	logger.Info("Worker consuming queue %q with concurrency %d", service.NotificationQueue, cfg.WorkerConcurrency)
	if err := server.Run(ctx); err != nil {
		logger.Error("Worker stopped: %v", err)
	}
}
