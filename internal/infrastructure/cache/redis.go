// Package cache implementa el store de refresh tokens sobre Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/pkg/config"
)

const refreshPrefix = "backoffice:refresh:"

// New crea el cliente Redis y verifica la conexión.
func New(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

var _ auth.RefreshStore = (*RefreshStore)(nil)

// RefreshStore jti vigentes como claves con TTL; Consume usa GETDEL (atómico).
type RefreshStore struct {
	client *redis.Client
}

// NewRefreshStore construye el store.
func NewRefreshStore(client *redis.Client) *RefreshStore {
	return &RefreshStore{client: client}
}

// Save registra el jti con la vida del refresh token.
func (s *RefreshStore) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshPrefix+jti, userID, ttl).Err(); err != nil {
		return fmt.Errorf("cache: save refresh: %w", err)
	}
	return nil
}

// Consume borra y devuelve el jti en una sola operación.
func (s *RefreshStore) Consume(ctx context.Context, jti string) (string, bool, error) {
	userID, err := s.client.GetDel(ctx, refreshPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: consume refresh: %w", err)
	}
	return userID, true, nil
}

// Revoke elimina el jti.
func (s *RefreshStore) Revoke(ctx context.Context, jti string) error {
	if err := s.client.Del(ctx, refreshPrefix+jti).Err(); err != nil {
		return fmt.Errorf("cache: revoke refresh: %w", err)
	}
	return nil
}
