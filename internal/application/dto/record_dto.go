package dto

import (
	"encoding/json"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// RecordMap forma JSON de un registro genérico: campos base + atributos en el mismo nivel.
// Es la forma de get, create, edit y de la exportación JSON.
func RecordMap(rec *entity.Record) map[string]any {
	out := make(map[string]any, len(rec.Attributes)+6)
	for k, v := range rec.Attributes {
		out[k] = v
	}
	names := rec.Names
	if names == nil {
		names = entity.LanguageString{}
	}
	out["id"] = rec.ID
	out["names"] = names
	out["priority"] = rec.Priority
	out["active"] = rec.Active
	out["createdAt"] = rec.CreatedAt
	out["updatedAt"] = rec.UpdatedAt
	if rec.Removed {
		out["removed"] = true
	}
	return out
}

// RecordMaps aplica RecordMap a una lista.
func RecordMaps(recs []*entity.Record) []map[string]any {
	out := make([]map[string]any, 0, len(recs))
	for _, r := range recs {
		out = append(out, RecordMap(r))
	}
	return out
}

// ImportRow candidato decodificado de un archivo; Row es 1-based sin contar cabecera.
type ImportRow struct {
	Row    int
	Values map[string]any
}

// BatchRequest edición masiva: objetivos = ids ∪ registros que cumplen filters.
// Las ediciones con id sólo aplican a ese registro; sin id, a todos los objetivos.
type BatchRequest struct {
	IDs     []string                   `json:"ids" validate:"omitempty,dive,required"`
	Filters map[string]json.RawMessage `json:"filters"`
	Edits   []BatchEdit                `json:"edits" validate:"required,min=1,dive"`
}

// BatchEdit cambio de un campo.
type BatchEdit struct {
	ID    string          `json:"id"`
	Field string          `json:"field" validate:"required"`
	Value json.RawMessage `json:"value"`
}

// BatchResult resultado best-effort: registros actualizados y fallos por registro (ordenados por id).
type BatchResult struct {
	Updated  int       `json:"updated"`
	Failures []Failure `json:"failures"`
}

// RowFailure fila rechazada de una importación (1-based, sin contar cabecera).
type RowFailure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult resultado de importar un archivo.
type ImportResult struct {
	Imported int          `json:"imported"`
	Failures []RowFailure `json:"failures"`
}
