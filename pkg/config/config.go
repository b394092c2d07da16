package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageFirestore = "firestore"
	StoragePostgres  = "postgres"
	StorageMemory    = "memory"

	SinkStore = "store"
	SinkQueue = "queue"

	AuthFirebase = "firebase"
	AuthDev      = "dev"
)

type Config struct {
	ServerPort  string
	Environment string

	FirebaseProject            string
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string
	AuthMode                   string

	StorageDriver string
	DatabaseURL   string
	RedisURL      string

	ProfileCacheTTL     time.Duration
	NotificationSink    string
	NotificationTimeout time.Duration
	WorkerConcurrency   int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:                 getEnv("SERVER_PORT", "8080"),
		Environment:                getEnv("ENVIRONMENT", "development"),
		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		AuthMode:                   getEnv("AUTH_MODE", AuthFirebase),
		StorageDriver:              getEnv("STORAGE_DRIVER", StorageFirestore),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		RedisURL:                   getEnv("REDIS_URL", ""),
		ProfileCacheTTL:            time.Duration(getEnvAsInt64("PROFILE_CACHE_TTL_SECONDS", 300)) * time.Second,
		NotificationSink:           getEnv("NOTIFICATION_SINK", SinkStore),
		NotificationTimeout:        time.Duration(getEnvAsInt64("NOTIFICATION_TIMEOUT_SECONDS", 5)) * time.Second,
		WorkerConcurrency:          int(getEnvAsInt64("WORKER_CONCURRENCY", 10)),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects driver combinations that cannot start.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the %s storage driver", c.StorageDriver)
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s storage driver", c.StorageDriver)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.NotificationSink {
	case SinkStore:
	case SinkQueue:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the %s notification sink", c.NotificationSink)
		}
	default:
		return fmt.Errorf("unknown NOTIFICATION_SINK %q", c.NotificationSink)
	}

	switch c.AuthMode {
	case AuthFirebase:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for %s auth", c.AuthMode)
		}
	case AuthDev:
		if !c.IsDevelopment() {
			return fmt.Errorf("AUTH_MODE=%s is only allowed in development", c.AuthMode)
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	if c.NotificationTimeout <= 0 {
		return fmt.Errorf("NOTIFICATION_TIMEOUT_SECONDS must be positive")
	}
	if c.WorkerConcurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// NeedsFirebase reports whether a Firebase app has to be initialised.
func (c *Config) NeedsFirebase() bool {
	return c.StorageDriver == StorageFirestore || c.AuthMode == AuthFirebase
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
