package main

import (
	"context"
	"log"
	"time"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/service"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/bootstrap"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/cache"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/config"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

var demoUsers = []entity.UserProfile{
	{ID: "admin-demo", Name: "Admin User", Email: "admin@farmunity.com", Role: entity.RoleAdmin},
	{ID: "farmer-demo", Name: "Rajesh Kumar", Email: "farmer@farmunity.com", Role: entity.RoleFarmer},
	{ID: "buyer-demo", Name: "Priya Sharma", Email: "buyer@farmunity.com", Role: entity.RoleBuyer},
}

// Seeds demo profiles so a fresh environment has someone to talk to.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	firebaseApp, err := bootstrap.FirebaseApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	store, err := bootstrap.OpenStorage(ctx, cfg, firebaseApp)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	now := time.Now().UTC()
	for _, u := range demoUsers {
		u.CreatedAt = now
		if err := store.Users.Create(ctx, &u); err != nil {
			log.Fatalf("Failed to seed user %s: %v", u.ID, err)
		}
		logger.Info("Seeded %s (%s) as %s", u.ID, u.Email, u.Role)
	}

	if cfg.RedisURL == "" {
		return
	}
	profileCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, "farmunity:")
	if err != nil {
		logger.Warn("Skipping profile cache invalidation: %v", err)
		return
	}
	defer profileCache.Close()

	keys := make([]string, 0, len(demoUsers))
	for _, u := range demoUsers {
		keys = append(keys, service.ProfileCacheKey(u.ID))
	}
	if err := profileCache.Del(ctx, keys...); err != nil {
		logger.Warn("Profile cache invalidation failed: %v", err)
	}
}
