package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/infrastructure/cache"
	"github.com/jhoicas/backoffice-api/pkg/config"
)

func newStore(t *testing.T) (*cache.RefreshStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRefreshStore(client), mr
}

func TestNew_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()
}

func TestRefreshStore_ConsumeUnaSolaVez(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "jti-1", "user-1", time.Hour))

	userID, ok, err := s.Consume(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	_, ok, err = s.Consume(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok, "un jti rotado no se reutiliza")
}

func TestRefreshStore_Expira(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "jti-1", "user-1", time.Minute))

	mr.FastForward(2 * time.Minute)
	_, ok, err := s.Consume(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshStore_Revoke(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "jti-1", "user-1", time.Hour))
	require.NoError(t, s.Revoke(ctx, "jti-1"))

	_, ok, err := s.Consume(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshStore_ConsumeConcurrente(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "jti-1", "user-1", time.Hour))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := s.Consume(ctx, "jti-1"); err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
