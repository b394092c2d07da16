package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/metrics"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

// UserDirectory resolves public profiles. A missing user is reported as a
// NOT_FOUND error; callers treat any error as "profile absent".
type UserDirectory interface {
	Lookup(ctx context.Context, userID string) (*entity.UserProfile, error)
}

type repositoryUserDirectory struct {
	userRepo repository.UserRepository
}

func NewUserDirectory(userRepo repository.UserRepository) UserDirectory {
	return &repositoryUserDirectory{userRepo: userRepo}
}

func (d *repositoryUserDirectory) Lookup(ctx context.Context, userID string) (*entity.UserProfile, error) {
	if !entity.ValidUserID(userID) {
		return nil, errors.NotFound("User", nil)
	}
	return d.userRepo.GetByID(ctx, userID)
}

// ProfileCache is the subset of a key-value cache the directory needs.
type ProfileCache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type cachedUserDirectory struct {
	next  UserDirectory
	cache ProfileCache
	ttl   time.Duration
}

// NewCachedUserDirectory puts a read-through cache in front of next. Cache
// failures degrade to a direct lookup; misses are not cached.
func NewCachedUserDirectory(next UserDirectory, cache ProfileCache, ttl time.Duration) UserDirectory {
	return &cachedUserDirectory{next: next, cache: cache, ttl: ttl}
}

// ProfileCacheKey is the cache key holding userID's encoded profile.
func ProfileCacheKey(userID string) string {
	return "profile:" + userID
}

func (d *cachedUserDirectory) Lookup(ctx context.Context, userID string) (*entity.UserProfile, error) {
	key := ProfileCacheKey(userID)

	raw, found, err := d.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.ProfileCacheLookups.WithLabelValues("error").Inc()
		logger.Warn("UserDirectory: cache get %s failed: %v", key, err)
	case found:
		var profile entity.UserProfile
		if jsonErr := json.Unmarshal([]byte(raw), &profile); jsonErr == nil && profile.ID == userID {
			metrics.ProfileCacheLookups.WithLabelValues("hit").Inc()
			return &profile, nil
		}
		logger.Warn("UserDirectory: discarding malformed cache entry %s", key)
	default:
		metrics.ProfileCacheLookups.WithLabelValues("miss").Inc()
	}

	profile, err := d.next.Lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	if encoded, jsonErr := json.Marshal(profile); jsonErr == nil {
		if setErr := d.cache.Set(ctx, key, string(encoded), d.ttl); setErr != nil {
			logger.Warn("UserDirectory: cache set %s failed: %v", key, setErr)
		}
	}
	return profile, nil
}
