package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
)

var _ auth.RefreshStore = (*RefreshStore)(nil)

// RefreshStore jti vigentes en memoria (REDIS_ADDR vacío).
type RefreshStore struct {
	mu      sync.Mutex
	entries map[string]refreshEntry
	now     func() time.Time
}

type refreshEntry struct {
	userID  string
	expires time.Time
}

// NewRefreshStore crea el store vacío.
func NewRefreshStore() *RefreshStore {
	return &RefreshStore{entries: map[string]refreshEntry{}, now: time.Now}
}

// Save registra el jti; de paso descarta los expirados.
func (s *RefreshStore) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
	s.entries[jti] = refreshEntry{userID: userID, expires: now.Add(ttl)}
	return nil
}

// Consume borra y devuelve el jti bajo el mutex.
func (s *RefreshStore) Consume(ctx context.Context, jti string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[jti]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, jti)
	if !s.now().Before(e.expires) {
		return "", false, nil
	}
	return e.userID, true, nil
}

// Revoke elimina el jti.
func (s *RefreshStore) Revoke(ctx context.Context, jti string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, jti)
	return nil
}
