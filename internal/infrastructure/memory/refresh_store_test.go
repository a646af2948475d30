package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
)

func TestRefreshStore_ConsumeUnaSolaVez(t *testing.T) {
	s := memory.NewRefreshStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "jti-1", "user-1", time.Hour))

	userID, ok, err := s.Consume(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	_, ok, err = s.Consume(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshStore_ExpiradoNoSeConsume(t *testing.T) {
	s := memory.NewRefreshStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "jti-1", "user-1", -time.Second))

	_, ok, err := s.Consume(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
