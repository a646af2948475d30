package usecase

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// RecordRules reglas de escritura comunes a create, edit, batch e import.
type RecordRules struct {
	Languages []string // idiomas activos permitidos en names
}

// readOnly campos base que el servidor asigna; en la entrada se ignoran.
var readOnly = map[string]bool{
	catalog.FieldID:        true,
	catalog.FieldCreatedAt: true,
	catalog.FieldUpdatedAt: true,
	"removed":              true,
}

// Build construye un registro nuevo a partir de los valores de entrada (JSON decodificado o
// celdas ya tipadas por el codec). Devuelve *domain.ValidationError con un motivo por campo.
func (r RecordRules) Build(schema *query.Schema, values map[string]any) (*entity.Record, error) {
	rec := &entity.Record{Kind: schema.Name, Active: true, Attributes: map[string]any{}}
	verr := r.apply(rec, schema, values)
	for _, f := range schema.Fields {
		if f.Required && isEmpty(rec.Value(f.Name)) {
			verr.Add(f.Name, "requerido")
		}
	}
	if !verr.Empty() {
		return nil, verr
	}
	return rec, nil
}

// Patch aplica una edición parcial sobre rec. Sólo los campos presentes en values cambian;
// un valor null borra el atributo.
func (r RecordRules) Patch(rec *entity.Record, schema *query.Schema, values map[string]any) error {
	verr := r.apply(rec, schema, values)
	for name := range values {
		if f, ok := schema.Field(name); ok && f.Required && isEmpty(rec.Value(f.Name)) {
			verr.Add(f.Name, "requerido")
		}
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

// Set asigna un único campo editable (lo usa batch).
func (r RecordRules) Set(rec *entity.Record, f query.Field, v any) error {
	if !f.Editable {
		return fmt.Errorf("campo no editable")
	}
	if err := r.assign(rec, f, v); err != nil {
		return err
	}
	if f.Required && isEmpty(rec.Value(f.Name)) {
		return fmt.Errorf("requerido")
	}
	return nil
}

func (r RecordRules) apply(rec *entity.Record, schema *query.Schema, values map[string]any) *domain.ValidationError {
	verr := &domain.ValidationError{}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if readOnly[name] {
			continue
		}
		f, ok := schema.Field(name)
		if !ok {
			verr.Add(name, "campo desconocido")
			continue
		}
		if !f.Editable {
			verr.Add(name, "campo no editable")
			continue
		}
		if err := r.assign(rec, f, values[name]); err != nil {
			verr.Add(name, err.Error())
		}
	}
	return verr
}

func (r RecordRules) assign(rec *entity.Record, f query.Field, raw any) error {
	v, err := f.Coerce(raw)
	if err != nil {
		return err
	}
	switch f.Name {
	case catalog.FieldNames:
		if v == nil {
			rec.Names = entity.LanguageString{}
			return nil
		}
		names, err := r.names(v.(map[string]string))
		if err != nil {
			return err
		}
		rec.Names = names
		return nil
	case catalog.FieldPriority:
		if v == nil {
			rec.Priority = 0
			return nil
		}
		n := v.(float64)
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return fmt.Errorf("se esperaba un entero")
		}
		rec.Priority = int(n)
		return nil
	case catalog.FieldActive:
		if v == nil {
			return fmt.Errorf("se esperaba booleano")
		}
		rec.Active = v.(bool)
		return nil
	}
	if rec.Attributes == nil {
		rec.Attributes = map[string]any{}
	}
	if v == nil {
		delete(rec.Attributes, f.Name)
		return nil
	}
	switch x := v.(type) {
	case string:
		if x = strings.TrimSpace(x); x == "" {
			delete(rec.Attributes, f.Name)
			return nil
		}
		v = x
	case []string:
		items, err := listItems(x)
		if err != nil {
			return err
		}
		v = items
	}
	rec.Attributes[f.Name] = v
	return nil
}

// listItems recorta los elementos, descarta los vacíos y rechaza los que contienen ListSeparator.
func listItems(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, e := range in {
		if e = strings.TrimSpace(e); e == "" {
			continue
		}
		if strings.Contains(e, query.ListSeparator) {
			return nil, fmt.Errorf("los elementos no pueden contener %q", query.ListSeparator)
		}
		out = append(out, e)
	}
	return out, nil
}

// names valida los idiomas: deben ser etiquetas BCP 47 y estar activos.
func (r RecordRules) names(in map[string]string) (entity.LanguageString, error) {
	out := make(entity.LanguageString, len(in))
	for lang, text := range in {
		if _, err := language.Parse(lang); err != nil {
			return nil, fmt.Errorf("idioma inválido %q", lang)
		}
		if len(r.Languages) > 0 && !slices.Contains(r.Languages, lang) {
			return nil, fmt.Errorf("idioma no activo %q", lang)
		}
		if text = strings.TrimSpace(text); text != "" {
			out[lang] = text
		}
	}
	return out, nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case map[string]string:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}
