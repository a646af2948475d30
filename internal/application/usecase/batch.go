package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// batchWorkers actualizaciones concurrentes por petición batch.
const batchWorkers = 8

type fieldEdit struct {
	field query.Field
	value any
}

// Batch aplica ediciones masivas best-effort: cada registro se actualiza de forma independiente,
// sin rollback, y los fallos se reportan por id (ordenados). Una edición mal formada rechaza la
// petición completa antes de escribir.
func (uc *ResourceUseCase) Batch(ctx context.Context, parser query.Parser, schema *query.Schema, in dto.BatchRequest) (dto.BatchResult, error) {
	res := dto.BatchResult{Failures: []dto.Failure{}}
	if !schema.Batch {
		return res, fmt.Errorf("%s no admite edición masiva: %w", schema.Name, domain.ErrInvalidInput)
	}

	global, perID, err := decodeEdits(schema, in.Edits)
	if err != nil {
		return res, err
	}

	targets := dedupe(in.IDs)
	for id := range perID {
		targets = append(targets, id)
	}
	if len(in.Filters) > 0 {
		q, err := parser.ParseEnvelope(schema, in.Filters)
		if err != nil {
			return res, err
		}
		matched, _, err := uc.repo.List(ctx, q.WithFull())
		if err != nil {
			return res, err
		}
		for _, rec := range matched {
			targets = append(targets, rec.ID)
		}
	}
	targets = dedupe(targets)
	if len(targets) == 0 {
		return res, domain.NewValidationError("ids", "no hay registros objetivo: indique ids, filters o ediciones con id")
	}

	var (
		mu      sync.Mutex
		updated int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWorkers)
	for _, id := range targets {
		edits := append(append([]fieldEdit{}, global...), perID[id]...)
		if len(edits) == 0 {
			continue
		}
		g.Go(func() error {
			err := uc.applyEdits(gctx, schema, id, edits)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				updated++
			case isBusinessError(err):
				res.Failures = append(res.Failures, dto.Failure{ID: id, Reason: err.Error()})
			default:
				// fallo de infraestructura: se reporta y se detienen las restantes
				res.Failures = append(res.Failures, dto.Failure{ID: id, Reason: "error interno"})
				return err
			}
			return nil
		})
	}
	waitErr := g.Wait()

	res.Updated = updated
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].ID < res.Failures[j].ID })
	if waitErr != nil {
		return res, waitErr
	}
	return res, nil
}

func (uc *ResourceUseCase) applyEdits(ctx context.Context, schema *query.Schema, id string, edits []fieldEdit) error {
	rec, err := uc.Get(ctx, schema, id)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(edits))
	for _, e := range edits {
		if err := uc.rules.Set(rec, e.field, e.value); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, e.field.Name, err)
		}
		names = append(names, e.field.Name)
	}
	if err := uc.checkRefs(ctx, schema, rec, names); err != nil {
		return err
	}
	return uc.save(ctx, rec)
}

// decodeEdits valida forma y tipo de cada edición contra el esquema.
func decodeEdits(schema *query.Schema, edits []dto.BatchEdit) ([]fieldEdit, map[string][]fieldEdit, error) {
	verr := &domain.ValidationError{}
	var global []fieldEdit
	perID := map[string][]fieldEdit{}
	for i, e := range edits {
		key := fmt.Sprintf("edits[%d]", i)
		f, ok := schema.Field(e.Field)
		if !ok || !f.Editable {
			verr.Add(key+".field", "campo no editable")
			continue
		}
		v, err := decodeValue(e.Value)
		if err != nil {
			verr.Add(key+".value", err.Error())
			continue
		}
		if _, err := f.Coerce(v); err != nil {
			verr.Add(key+".value", err.Error())
			continue
		}
		fe := fieldEdit{field: f, value: v}
		if e.ID == "" {
			global = append(global, fe)
		} else {
			perID[e.ID] = append(perID[e.ID], fe)
		}
	}
	if !verr.Empty() {
		return nil, nil, verr
	}
	return global, perID, nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("valor inválido")
	}
	return v, nil
}

// isBusinessError errores esperables por registro (no de infraestructura).
func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrInvalidInput, domain.ErrDuplicate, domain.ErrReferenced,
		domain.ErrConflict, domain.ErrInvalidState, domain.ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
