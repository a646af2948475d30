// Package storage guarda los adjuntos subidos en el sistema de archivos local.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/backoffice-api/internal/application/usecase"
)

// LocalStorage implementa usecase.FileStorage sobre una carpeta (UPLOAD_DIR).
type LocalStorage struct {
	dir string
}

var _ usecase.FileStorage = (*LocalStorage)(nil)

// NewLocalStorage crea la carpeta si no existe.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Save escribe data con un nombre único "<uuid>-<nombre saneado>" y devuelve ese nombre.
func (s *LocalStorage) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stored := uuid.NewString() + "-" + sanitize(name)
	path := filepath.Join(s.dir, stored)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: escribir %s: %w", stored, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("storage: mover %s: %w", stored, err)
	}
	return stored, nil
}

// sanitize deja sólo la base del nombre con [A-Za-z0-9._-]; el resto se reemplaza por "_".
func sanitize(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		base = ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "file"
	}
	if len(out) > 100 {
		out = out[len(out)-100:]
	}
	return out
}
