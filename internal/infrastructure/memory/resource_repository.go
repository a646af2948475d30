package memory

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.ResourceRepository = (*ResourceRepo)(nil)

// ResourceRepo recursos genéricos en memoria.
type ResourceRepo struct {
	s *Store
}

// NewResourceRepository construye el adaptador.
func NewResourceRepository(s *Store) *ResourceRepo {
	return &ResourceRepo{s: s}
}

// Create persiste el registro y le asigna Seq.
func (r *ResourceRepo) Create(ctx context.Context, rec *entity.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[rec.ID]; ok {
		return domain.ErrDuplicate
	}
	rec.Seq = r.s.nextSeq()
	r.s.records[rec.ID] = rec.Clone()
	return nil
}

// Get obtiene un registro por kind e id.
func (r *ResourceRepo) Get(ctx context.Context, kind, id string, includeRemoved bool) (*entity.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.records[id]
	if !ok || rec.Kind != kind || (rec.Removed && !includeRemoved) {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Update reemplaza el registro existente (conserva Seq y CreatedAt).
func (r *ResourceRepo) Update(ctx context.Context, rec *entity.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.records[rec.ID]
	if !ok || cur.Kind != rec.Kind {
		return domain.ErrNotFound
	}
	next := rec.Clone()
	next.Seq, next.CreatedAt = cur.Seq, cur.CreatedAt
	r.s.records[rec.ID] = next
	return nil
}

// List evalúa la consulta sobre los registros del kind.
func (r *ResourceRepo) List(ctx context.Context, q query.Query) ([]*entity.Record, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	rows := make([]*entity.Record, 0, len(r.s.records))
	for _, rec := range r.s.records {
		if rec.Kind == q.Schema.Name {
			rows = append(rows, rec.Clone())
		}
	}
	r.s.mu.RUnlock()

	page, total := query.Apply(rows, q)
	return page, total, nil
}
