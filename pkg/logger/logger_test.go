package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/pkg/logger"
)

func TestNew_NivelConfigurado(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"WARN":  zerolog.WarnLevel,
		"":      zerolog.InfoLevel,
		"otro":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		l := logger.New(logger.Config{Env: "production", Level: in})
		assert.Equal(t, want, l.Zerolog().GetLevel(), in)
	}
}

func TestNew_EscribeArchivo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := logger.New(logger.Config{Env: "production", Level: "info", File: path})
	l.Info().Str("k", "v").Msg("hola")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hola"`)
	assert.Contains(t, string(data), `"k":"v"`)
}
