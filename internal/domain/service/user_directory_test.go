package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
)

type mapCache struct {
	mu      sync.Mutex
	data    map[string]string
	failGet bool
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]string)}
}

func (c *mapCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return "", false, stderrors.New("connection refused")
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = value
	return nil
}

type countingDirectory struct {
	next  UserDirectory
	calls int
}

func (d *countingDirectory) Lookup(ctx context.Context, userID string) (*entity.UserProfile, error) {
	d.calls++
	return d.next.Lookup(ctx, userID)
}

func newUsers(t *testing.T) *repository.MemoryUserRepository {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	require.NoError(t, users.Create(context.Background(), &entity.UserProfile{ID: "farmer", Name: "Rajesh Kumar", Role: entity.RoleFarmer}))
	return users
}

func TestUserDirectory_Lookup(t *testing.T) {
	dir := NewUserDirectory(newUsers(t))

	p, err := dir.Lookup(context.Background(), "farmer")
	require.NoError(t, err)
	assert.Equal(t, "Rajesh Kumar", p.Name)

	_, err = dir.Lookup(context.Background(), "ghost")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = dir.Lookup(context.Background(), "not/an id")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestCachedUserDirectory_ReadThrough(t *testing.T) {
	cache := newMapCache()
	inner := &countingDirectory{next: NewUserDirectory(newUsers(t))}
	dir := NewCachedUserDirectory(inner, cache, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := dir.Lookup(ctx, "farmer")
		require.NoError(t, err)
		assert.Equal(t, "Rajesh Kumar", p.Name)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cache.sets)

	var cached entity.UserProfile
	require.NoError(t, json.Unmarshal([]byte(cache.data[ProfileCacheKey("farmer")]), &cached))
	assert.Equal(t, "farmer", cached.ID)
}

func TestCachedUserDirectory_MissesAreNotCached(t *testing.T) {
	cache := newMapCache()
	inner := &countingDirectory{next: NewUserDirectory(newUsers(t))}
	dir := NewCachedUserDirectory(inner, cache, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := dir.Lookup(context.Background(), "ghost")
		assert.Error(t, err)
	}
	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, cache.sets)
}

func TestCachedUserDirectory_CacheFailureFallsBack(t *testing.T) {
	cache := newMapCache()
	cache.failGet = true
	dir := NewCachedUserDirectory(NewUserDirectory(newUsers(t)), cache, time.Minute)

	p, err := dir.Lookup(context.Background(), "farmer")
	require.NoError(t, err)
	assert.Equal(t, "farmer", p.ID)
}

func TestCachedUserDirectory_IgnoresMalformedEntry(t *testing.T) {
	cache := newMapCache()
	cache.data[ProfileCacheKey("farmer")] = "{not json"
	inner := &countingDirectory{next: NewUserDirectory(newUsers(t))}
	dir := NewCachedUserDirectory(inner, cache, time.Minute)

	p, err := dir.Lookup(context.Background(), "farmer")
	require.NoError(t, err)
	assert.Equal(t, "Rajesh Kumar", p.Name)
	assert.Equal(t, 1, inner.calls)
}
