package query

import (
	"math"
	"strings"
	"time"
)

// Límites de paginación. DefaultPageSize se aplica cuando la petición no trae pageSize.
const (
	DefaultCurrent  = 1
	DefaultPageSize = 10
	MaxPageSize     = 500
	MaxOffset       = math.MaxInt32 // (current-1)*pageSize no puede superarlo
)

// NumberRange rango numérico inclusivo; cualquier extremo puede faltar.
type NumberRange struct {
	From *float64
	To   *float64
}

// DateRange rango de fechas inclusivo; cualquier extremo puede faltar.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Predicate condición sobre un campo. Sólo uno de los valores está definido según Field.Kind.
type Predicate struct {
	Field  Field
	Text   string       // string, language, list
	Bools  []bool       // bool
	Number *float64     // number exacto
	Range  *NumberRange // number por rango
	Dates  *DateRange   // date
}

// Sorter criterio de orden. Lang se usa para campos language ("names.en").
type Sorter struct {
	Field Field
	Lang  string
	Desc  bool
}

// Key nombre del criterio tal como lo envió el cliente.
func (s Sorter) Key() string {
	if s.Lang != "" {
		return s.Field.Name + "." + s.Lang
	}
	return s.Field.Name
}

// Pagination página 1-based o Full para devolver todo.
type Pagination struct {
	Current  int
	PageSize int
	Full     bool
}

// Offset registros a saltar.
func (p Pagination) Offset() int {
	if p.Full {
		return 0
	}
	if p.Current < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Current-1 > MaxOffset/p.PageSize {
		return MaxOffset
	}
	return (p.Current - 1) * p.PageSize
}

// Limit tamaño de página; 0 = sin límite.
func (p Pagination) Limit() int {
	if p.Full {
		return 0
	}
	return p.PageSize
}

// Query consulta ya validada contra un esquema.
type Query struct {
	Schema         *Schema
	Filters        []Predicate
	Sorters        []Sorter
	Pagination     Pagination
	IncludeRemoved bool
}

// All devuelve una consulta sin filtros que trae todos los registros no eliminados.
func All(schema *Schema) Query {
	return Query{Schema: schema, Pagination: Pagination{Full: true}}
}

// WithFull copia la consulta ignorando la paginación (usado por batch y export).
func (q Query) WithFull() Query {
	q.Pagination = Pagination{Full: true}
	return q
}

func normalizePagination(p *Pagination, defaultPageSize int) {
	if p.Full {
		p.Current, p.PageSize = 0, 0
		return
	}
	if p.Current == 0 {
		p.Current = DefaultCurrent
	}
	if p.PageSize == 0 {
		p.PageSize = defaultPageSize
	}
}

func parseOrder(s string) (desc bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascend", "1":
		return false, true
	case "desc", "descend", "-1":
		return true, true
	}
	return false, false
}
