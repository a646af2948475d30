package auth

import (
	"context"
	"time"
)

// RefreshStore guarda los jti de refresh tokens vigentes. Consume es atómico: un jti sólo
// puede consumirse una vez (rotación); un segundo intento devuelve ok=false.
type RefreshStore interface {
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error
	Consume(ctx context.Context, jti string) (userID string, ok bool, err error)
	Revoke(ctx context.Context, jti string) error
}
