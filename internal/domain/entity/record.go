package entity

import (
	"maps"
	"slices"
	"time"
)

// LanguageString texto por código de idioma ("en" -> "Bolt", "es" -> "Perno").
type LanguageString map[string]string

// Record registro genérico de cualquier recurso del catálogo (products, currencies, orders...).
// Los campos propios de cada recurso viven en Attributes, ya normalizados según su esquema.
type Record struct {
	ID         string
	Kind       string
	Seq        int64 // contador de inserción; desempate final de todo orden
	Names      LanguageString
	Priority   int
	Active     bool
	Removed    bool
	Attributes map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Value implementa query.Row.
func (r *Record) Value(field string) any {
	switch field {
	case "id":
		return r.ID
	case "names":
		return map[string]string(r.Names)
	case "priority":
		return float64(r.Priority)
	case "active":
		return r.Active
	case "createdAt":
		return r.CreatedAt
	case "updatedAt":
		return r.UpdatedAt
	}
	return r.Attributes[field]
}

// Sequence implementa query.Row.
func (r *Record) Sequence() int64 { return r.Seq }

// IsRemoved implementa query.Row.
func (r *Record) IsRemoved() bool { return r.Removed }

// Clone copia profunda (los stores en memoria nunca comparten mapas con el llamador).
func (r *Record) Clone() *Record {
	c := *r
	c.Names = maps.Clone(r.Names)
	c.Attributes = make(map[string]any, len(r.Attributes))
	for k, v := range r.Attributes {
		if l, ok := v.([]string); ok {
			v = slices.Clone(l)
		}
		c.Attributes[k] = v
	}
	return &c
}
