package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.ResourceRepository = (*ResourceRepo)(nil)

const resourceColumns = `id::text, kind, seq, names, priority, active, removed, attributes, created_at, updated_at`

// ResourceRepo recursos genéricos en la tabla resources (atributos en JSONB).
type ResourceRepo struct {
	q Querier
}

// NewResourceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewResourceRepository(q Querier) *ResourceRepo {
	return &ResourceRepo{q: q}
}

// Create persiste el registro y asigna su seq.
func (r *ResourceRepo) Create(ctx context.Context, rec *entity.Record) error {
	names, attrs, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO resources (id, kind, names, priority, active, removed, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	err = r.q.QueryRow(ctx, query,
		rec.ID, rec.Kind, names, rec.Priority, rec.Active, rec.Removed, attrs, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

// Get obtiene un registro por kind e id; nil, nil si no existe.
func (r *ResourceRepo) Get(ctx context.Context, kind, id string, includeRemoved bool) (*entity.Record, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE kind = $1 AND id = $2`
	if !includeRemoved {
		query += ` AND removed = false`
	}
	rec, err := scanRecord(r.q.QueryRow(ctx, query, kind, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return rec, nil
}

// Update reemplaza los campos editables, removed y updated_at.
func (r *ResourceRepo) Update(ctx context.Context, rec *entity.Record) error {
	names, attrs, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	query := `
		UPDATE resources
		SET names = $3, priority = $4, active = $5, removed = $6, attributes = $7, updated_at = $8
		WHERE kind = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, rec.Kind, rec.ID, names, rec.Priority, rec.Active, rec.Removed, attrs, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List compila la consulta a SQL y devuelve la página junto con el total.
func (r *ResourceRepo) List(ctx context.Context, q query.Query) ([]*entity.Record, int, error) {
	s := compileSelect(q, true, func(c *sqlCompiler) string { return "kind = " + c.arg(q.Schema.Name) })
	total, err := count(ctx, r.q, "resources", s)
	if err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+resourceColumns+` FROM resources`+s.Where+s.Order+s.Page, s.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var list []*entity.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan resource: %w", err)
		}
		list = append(list, rec)
	}
	return list, total, rows.Err()
}

func marshalRecord(rec *entity.Record) ([]byte, []byte, error) {
	names := rec.Names
	if names == nil {
		names = entity.LanguageString{}
	}
	nb, err := json.Marshal(names)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal names: %w", err)
	}
	attrs := rec.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	ab, err := json.Marshal(attrs)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal attributes: %w", err)
	}
	return nb, ab, nil
}

// scanRecord lee una fila y normaliza los atributos según el esquema del recurso.
func scanRecord(row pgx.Row) (*entity.Record, error) {
	var (
		rec          entity.Record
		names, attrs []byte
	)
	err := row.Scan(&rec.ID, &rec.Kind, &rec.Seq, &names, &rec.Priority, &rec.Active, &rec.Removed, &attrs,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(names, &rec.Names); err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}
	raw := map[string]any{}
	if err := json.Unmarshal(attrs, &raw); err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	if schema, ok := catalog.Lookup(rec.Kind); ok {
		rec.Attributes = schema.NormalizeAttributes(raw)
	} else {
		rec.Attributes = raw
	}
	rec.CreatedAt, rec.UpdatedAt = rec.CreatedAt.UTC(), rec.UpdatedAt.UTC()
	return &rec, nil
}
