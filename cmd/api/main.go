package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api"
	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api/handler"
	apimiddleware "github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api/middleware"
	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api/router"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/service"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/bootstrap"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/cache"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/firebase"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/queue"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/ratelimit"
	"github.com/preetambaheti/Farmunity-marketplace/internal/usecase"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/config"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

type flusher interface {
	service.NotificationSink
	Flush()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
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

	var verifier firebase.TokenVerifier
	switch cfg.AuthMode {
	case config.AuthDev:
		logger.Warn("AUTH_MODE=dev: accepting unsigned dev:<uid> tokens")
		verifier = firebase.DevTokenVerifier{}
	default:
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			logger.L().Fatal("Failed to initialize Firebase Auth: " + err.Error())
		}
		verifier = firebase.NewFirebaseAuthClient(authClient)
	}

	healthChecks := map[string]handler.HealthCheck{"storage": store.Ping}

	directory := service.NewUserDirectory(store.Users)
	if cfg.RedisURL != "" {
		profileCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, "farmunity:")
		if err != nil {
			logger.Warn("Profile cache disabled, Redis unreachable: %v", err)
		} else {
			defer profileCache.Close()
			directory = service.NewCachedUserDirectory(directory, profileCache, cfg.ProfileCacheTTL)
			healthChecks["cache"] = profileCache.Ping
		}
	}

	var sink flusher
	switch cfg.NotificationSink {
	case config.SinkQueue:
		client, err := queue.NewAsynqClient(cfg.RedisURL)
		if err != nil {
			logger.L().Fatal("Failed to create queue client: " + err.Error())
		}
		defer client.Close()
		sink = service.NewQueueNotificationSink(client, cfg.NotificationTimeout)
	default:
		sink = service.NewStoreNotificationSink(store.Notifications, cfg.NotificationTimeout)
	}

	conversationUseCase := usecase.NewConversationUseCase(store.Chats, directory)
	messageUseCase := usecase.NewMessageUseCase(store.Chats)
	summaryUseCase := usecase.NewSummaryUseCase(store.Chats, directory)
	interestUseCase := usecase.NewInterestUseCase(conversationUseCase, messageUseCase, directory, sink)
	notificationUseCase := usecase.NewNotificationUseCase(store.Notifications)

	handler.Setup(conversationUseCase, messageUseCase, summaryUseCase, interestUseCase, notificationUseCase, healthChecks)

	limiter := ratelimit.NewRateLimiter()
	limiter.StartCleanupRoutine(ctx.Done())

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(apimiddleware.Metrics())
	e.Use(apimiddleware.RequestLogger())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier)
	adminMiddleware := apimiddleware.NewAdminMiddleware(store.Users)

	router.Setup(e, authMiddleware, adminMiddleware, limiter)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown: %v", err)
	}
	sink.Flush()
}
