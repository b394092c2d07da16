package bootstrap

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/repository"
	domainrepo "github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/database"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/firebase"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/config"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

// Storage holds the repositories for the configured driver. Close releases
// the underlying connections.
type Storage struct {
	Chats         domainrepo.ChatRepository
	Users         domainrepo.UserRepository
	Notifications domainrepo.NotificationRepository
	Ping          func(ctx context.Context) error
	Close         func()
}

// FirebaseApp is nil unless the configuration needs Firebase.
func FirebaseApp(ctx context.Context, cfg *config.Config) (*fbapp.App, error) {
	if !cfg.NeedsFirebase() {
		return nil, nil
	}
	app, _, err := firebase.NewApp(ctx, cfg)
	return app, err
}

// OpenStorage connects the repositories selected by STORAGE_DRIVER.
func OpenStorage(ctx context.Context, cfg *config.Config, app *fbapp.App) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageFirestore:
		if app == nil {
			return nil, fmt.Errorf("firestore storage requires a firebase app")
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("create firestore client: %w", err)
		}
		logger.Info("Using Firestore storage for project %s", cfg.FirebaseProject)
		return &Storage{
			Chats:         repository.NewFirestoreChatRepository(client),
			Users:         repository.NewFirestoreUserRepository(client),
			Notifications: repository.NewFirestoreNotificationRepository(client),
			Ping:          firestorePing(client),
			Close:         func() { client.Close() },
		}, nil

	case config.StoragePostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("Using Postgres storage")
		return &Storage{
			Chats:         repository.NewPostgresChatRepository(pool),
			Users:         repository.NewPostgresUserRepository(pool),
			Notifications: repository.NewPostgresNotificationRepository(pool),
			Ping:          pool.Ping,
			Close:         pool.Close,
		}, nil

	case config.StorageMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &Storage{
			Chats:         repository.NewMemoryChatRepository(),
			Users:         repository.NewMemoryUserRepository(),
			Notifications: repository.NewMemoryNotificationRepository(),
			Ping:          func(context.Context) error { return nil },
			Close:         func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func firestorePing(client *firestore.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		iter := client.Collection("conversations").Limit(1).Documents(ctx)
		defer iter.Stop()
		if _, err := iter.Next(); err != nil && err != iterator.Done {
			return err
		}
		return nil
	}
}
