package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/infrastructure/storage"
)

func TestLocalStorage_SaveNombreUnico(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	a, err := s.Save(context.Background(), "foto.png", []byte("png"))
	require.NoError(t, err)
	b, err := s.Save(context.Background(), "foto.png", []byte("png2"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-foto.png"))
	data, err := os.ReadFile(filepath.Join(dir, a))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestLocalStorage_SaveSaneaRutas(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	name, err := s.Save(context.Background(), "../../etc/pass wd", []byte("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "-pass_wd"), name)
	assert.NotContains(t, name, "/")
	_, err = os.Stat(filepath.Join(dir, name))
	assert.NoError(t, err)

	name, err = s.Save(context.Background(), "..", []byte("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "-file"), name)
}

func TestLocalStorage_ContextoCancelado(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Save(ctx, "a.pdf", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
