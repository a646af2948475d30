package usecase

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// ResourceUseCase CRUD genérico de los recursos del catálogo (products, currencies, orders...).
type ResourceUseCase struct {
	repo  repository.ResourceRepository
	rules RecordRules
	deps  []dependent
	now   func() time.Time
}

// Dependents repositorios dedicados que guardan referencias a registros del catálogo.
// Los nil se ignoran.
type Dependents struct {
	Users       repository.UserRepository
	Barcodes    repository.BarcodeRepository
	Inventories repository.InventoryRepository
}

// dependent referencia desde una entidad dedicada hacia un recurso genérico.
type dependent struct {
	target string
	field  string // resource.campo, se devuelve en el fallo
	count  func(ctx context.Context, id string) (int, error)
}

// NewResourceUseCase construye el caso de uso.
func NewResourceUseCase(repo repository.ResourceRepository, rules RecordRules) *ResourceUseCase {
	return &ResourceUseCase{repo: repo, rules: rules, now: time.Now}
}

// WithDependents registra las referencias de users, barcodes e inventories para Remove.
func (uc *ResourceUseCase) WithDependents(d Dependents) *ResourceUseCase {
	uc.deps = nil
	if d.Users != nil {
		uc.deps = append(uc.deps, dependent{catalog.Roles, catalog.Users + ".roleId", d.Users.CountByRole})
	}
	if d.Barcodes != nil {
		uc.deps = append(uc.deps, dependent{catalog.Products, catalog.Barcodes + ".items", d.Barcodes.CountByProduct})
	}
	if d.Inventories != nil {
		uc.deps = append(uc.deps,
			dependent{catalog.Products, catalog.Inventories + ".items", d.Inventories.CountByProduct},
			dependent{catalog.Warehouses, catalog.Inventories + ".warehouseId", d.Inventories.CountByWarehouse},
		)
	}
	return uc
}

// Rules reglas de escritura activas (las comparte import).
func (uc *ResourceUseCase) Rules() RecordRules { return uc.rules }

// List devuelve la página de registros y el total de coincidencias.
func (uc *ResourceUseCase) List(ctx context.Context, q query.Query) ([]*entity.Record, int, error) {
	return uc.repo.List(ctx, q)
}

// Get obtiene un registro no eliminado; ErrNotFound si no existe.
func (uc *ResourceUseCase) Get(ctx context.Context, schema *query.Schema, id string) (*entity.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	rec, err := uc.repo.Get(ctx, schema.Name, id, false)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// Create valida y persiste un registro nuevo; el servidor asigna id y fechas.
func (uc *ResourceUseCase) Create(ctx context.Context, schema *query.Schema, values map[string]any) (*entity.Record, error) {
	rec, err := uc.rules.Build(schema, values)
	if err != nil {
		return nil, err
	}
	if err := uc.checkRefs(ctx, schema, rec, nil); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	rec.ID = uuid.New().String()
	rec.CreatedAt, rec.UpdatedAt = now, now
	if err := uc.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Edit aplica una edición parcial.
func (uc *ResourceUseCase) Edit(ctx context.Context, schema *query.Schema, id string, values map[string]any) (*entity.Record, error) {
	rec, err := uc.Get(ctx, schema, id)
	if err != nil {
		return nil, err
	}
	if err := uc.rules.Patch(rec, schema, values); err != nil {
		return nil, err
	}
	if err := uc.checkRefs(ctx, schema, rec, keys(values)); err != nil {
		return nil, err
	}
	return rec, uc.save(ctx, rec)
}

// Remove hace soft-delete de cada id. Un registro referenciado por otro no eliminado no se
// elimina (ErrReferenced); los fallos se reportan por id.
func (uc *ResourceUseCase) Remove(ctx context.Context, schema *query.Schema, ids []string) (dto.RemoveResult, error) {
	res := dto.RemoveResult{Failures: []dto.Failure{}}
	for _, id := range dedupe(ids) {
		rec, err := uc.Get(ctx, schema, id)
		if err == nil {
			err = uc.checkNotReferenced(ctx, schema, id)
		}
		if err == nil {
			rec.Removed = true
			err = uc.save(ctx, rec)
		}
		if err != nil {
			if !isBusinessError(err) {
				return res, err
			}
			res.Failures = append(res.Failures, dto.Failure{ID: id, Reason: err.Error()})
			continue
		}
		res.Removed++
	}
	return res, nil
}

// Duplicate copia los registros indicados con id y fechas nuevas.
func (uc *ResourceUseCase) Duplicate(ctx context.Context, schema *query.Schema, ids []string) ([]*entity.Record, error) {
	out := make([]*entity.Record, 0, len(ids))
	for _, id := range dedupe(ids) {
		src, err := uc.Get(ctx, schema, id)
		if err != nil {
			return nil, fmt.Errorf("duplicate %s: %w", id, err)
		}
		cp := src.Clone()
		now := uc.now().UTC()
		cp.ID = uuid.New().String()
		cp.CreatedAt, cp.UpdatedAt = now, now
		if err := uc.repo.Create(ctx, cp); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

// Attach agrega el nombre de un adjunto a la lista images del registro.
func (uc *ResourceUseCase) Attach(ctx context.Context, schema *query.Schema, id, fileName string) (*entity.Record, error) {
	f, ok := schema.Field("images")
	if !ok || f.Kind != query.KindStringList {
		return nil, fmt.Errorf("%s no admite adjuntos: %w", schema.Name, domain.ErrInvalidInput)
	}
	rec, err := uc.Get(ctx, schema, id)
	if err != nil {
		return nil, err
	}
	images, _ := rec.Attributes[f.Name].([]string)
	if !slices.Contains(images, fileName) {
		rec.Attributes[f.Name] = append(slices.Clone(images), fileName)
	}
	return rec, uc.save(ctx, rec)
}

func (uc *ResourceUseCase) save(ctx context.Context, rec *entity.Record) error {
	rec.UpdatedAt = uc.now().UTC()
	return uc.repo.Update(ctx, rec)
}

// checkRefs verifica que los campos de referencia apunten a registros existentes.
// only limita la verificación a los campos editados (nil = todos).
func (uc *ResourceUseCase) checkRefs(ctx context.Context, schema *query.Schema, rec *entity.Record, only []string) error {
	verr := &domain.ValidationError{}
	for _, f := range schema.Fields {
		if f.Ref == "" || (only != nil && !slices.Contains(only, f.Name)) {
			continue
		}
		id, _ := rec.Attributes[f.Name].(string)
		if id == "" {
			continue
		}
		if id == rec.ID {
			verr.Add(f.Name, "no puede referenciarse a sí mismo")
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			verr.Add(f.Name, "id inválido")
			continue
		}
		target, err := uc.repo.Get(ctx, f.Ref, id, false)
		if err != nil {
			return err
		}
		if target == nil {
			verr.Add(f.Name, fmt.Sprintf("%s %s no existe", f.Ref, id))
		}
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

// checkNotReferenced busca registros no eliminados que apunten a id por algún campo Ref
// y luego las referencias de las entidades dedicadas.
func (uc *ResourceUseCase) checkNotReferenced(ctx context.Context, schema *query.Schema, id string) error {
	referrers := catalog.Referrers(schema.Name)
	names := make([]string, 0, len(referrers))
	for name := range referrers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		src, _ := catalog.Lookup(name)
		for _, f := range referrers[name] {
			q := query.Query{
				Schema:     src,
				Filters:    []query.Predicate{{Field: f, Text: id}},
				Pagination: query.Pagination{Current: 1, PageSize: 1},
			}
			_, total, err := uc.repo.List(ctx, q)
			if err != nil {
				return err
			}
			if total > 0 {
				return fmt.Errorf("%s.%s: %w", name, f.Name, domain.ErrReferenced)
			}
		}
	}
	for _, d := range uc.deps {
		if d.target != schema.Name {
			continue
		}
		n, err := d.count(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%s: %w", d.field, domain.ErrReferenced)
		}
	}
	return nil
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
