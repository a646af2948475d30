package stores_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/infrastructure/cache"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/stores"
	"github.com/jhoicas/backoffice-api/pkg/config"
)

func TestOpen_DriverMemoria(t *testing.T) {
	s, err := stores.Open(context.Background(), config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, config.DriverMemory, s.Driver)
	assert.NotNil(t, s.Resources)
	assert.NotNil(t, s.Users)
	assert.NotNil(t, s.Barcodes)
	assert.NotNil(t, s.Inventories)
	assert.NotNil(t, s.Tx)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, err := stores.Open(context.Background(), config.Config{Storage: config.StorageConfig{Driver: "mongo"}})
	assert.Error(t, err)
}

func TestRefreshStore_SinRedisUsaMemoria(t *testing.T) {
	rs, closeFn, err := stores.RefreshStore(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &memory.RefreshStore{}, rs)
}

func TestRefreshStore_ConRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	rs, closeFn, err := stores.RefreshStore(ctx, config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer closeFn()
	require.IsType(t, &cache.RefreshStore{}, rs)

	require.NoError(t, rs.Save(ctx, "jti-1", "user-1", time.Minute))
	userID, ok, err := rs.Consume(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)
}

func TestRefreshStore_RedisCaido(t *testing.T) {
	_, _, err := stores.RefreshStore(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
