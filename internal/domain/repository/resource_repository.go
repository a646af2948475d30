package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// ResourceRepository define el puerto de persistencia para los recursos genéricos (DIP).
// Get devuelve nil, nil si el registro no existe.
type ResourceRepository interface {
	Create(ctx context.Context, rec *entity.Record) error
	Get(ctx context.Context, kind, id string, includeRemoved bool) (*entity.Record, error)
	Update(ctx context.Context, rec *entity.Record) error
	// List evalúa la consulta (kind = q.Schema.Name) y devuelve la página y el total de coincidencias.
	List(ctx context.Context, q query.Query) ([]*entity.Record, int, error)
}
