package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "occupancy:all", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "occupancy:all", map[string]int{"total": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "occupancy:*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryUnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewCacheRepository(client, nil)
	defer repo.Close() //nolint:errcheck
	ctx := context.Background()

	var dest map[string]int
	err := repo.Get(ctx, "occupancy:all", &dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Error(t, repo.Set(ctx, "occupancy:all", 1, time.Minute))
	assert.Error(t, repo.DeleteByPattern(ctx, "occupancy:*"))
	assert.Error(t, repo.Ping(ctx))
}

func TestNamespacedKeys(t *testing.T) {
	assert.Equal(t, "schedule-engine:occupancy:2024:1", namespaced("occupancy:2024:1"))
}
