package query

import (
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Row registro evaluable en memoria.
// Value devuelve el valor normalizado del campo (string, float64, bool, time.Time,
// map[string]string o []string) o nil si no tiene valor.
type Row interface {
	Value(field string) any
	Sequence() int64
	IsRemoved() bool
}

// foldString normaliza para comparaciones sin mayúsculas. cases.Caser no es seguro entre goroutines.
func foldString(s string) string { return cases.Fold().String(s) }

// Apply evalúa la consulta sobre rows: filtra (AND de predicados, excluye eliminados salvo
// IncludeRemoved), ordena de forma estable con desempate final por Sequence y pagina.
// total es la cantidad de coincidencias antes de paginar.
func Apply[R Row](rows []R, q Query) (page []R, total int) {
	matched := make([]R, 0, len(rows))
	for _, r := range rows {
		if Matches(r, q) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return Less(matched[i], matched[j], q.Sorters)
	})
	total = len(matched)
	off, lim := q.Pagination.Offset(), q.Pagination.Limit()
	if off < 0 || off >= total {
		return []R{}, total
	}
	end := total
	if lim > 0 && off+lim < total {
		end = off + lim
	}
	return matched[off:end], total
}

// Matches informa si el registro cumple todos los predicados de la consulta.
func Matches(r Row, q Query) bool {
	if r.IsRemoved() && !q.IncludeRemoved {
		return false
	}
	for _, p := range q.Filters {
		if !p.matches(r.Value(p.Field.Name)) {
			return false
		}
	}
	return true
}

func (p Predicate) matches(v any) bool {
	switch p.Field.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return false
		}
		if p.Field.Match == MatchSubstring {
			return strings.Contains(foldString(s), foldString(p.Text))
		}
		return s == p.Text
	case KindLanguage:
		m, ok := v.(map[string]string)
		if !ok {
			return false
		}
		needle := foldString(p.Text)
		for _, text := range m {
			if strings.Contains(foldString(text), needle) {
				return true
			}
		}
		return false
	case KindStringList:
		l, ok := v.([]string)
		return ok && slices.Contains(l, p.Text)
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			// registros sin valor se comportan como false
			b = false
		}
		return slices.Contains(p.Bools, b)
	case KindNumber:
		n, ok := v.(float64)
		if !ok {
			return false
		}
		if p.Number != nil {
			return n == *p.Number
		}
		if p.Range != nil {
			if p.Range.From != nil && n < *p.Range.From {
				return false
			}
			if p.Range.To != nil && n > *p.Range.To {
				return false
			}
			return true
		}
		return true
	case KindDate:
		t, ok := v.(time.Time)
		if !ok {
			return false
		}
		if p.Dates == nil {
			return true
		}
		if p.Dates.From != nil && t.Before(*p.Dates.From) {
			return false
		}
		if p.Dates.To != nil && t.After(*p.Dates.To) {
			return false
		}
		return true
	}
	return false
}

// Less compara dos registros según los criterios; empates se resuelven por Sequence.
func Less(a, b Row, sorters []Sorter) bool {
	for _, s := range sorters {
		c := compare(sortValue(a, s), sortValue(b, s), s.Field.Kind)
		if c == 0 {
			continue
		}
		if s.Desc {
			return c > 0
		}
		return c < 0
	}
	return a.Sequence() < b.Sequence()
}

func sortValue(r Row, s Sorter) any {
	v := r.Value(s.Field.Name)
	if s.Field.Kind == KindLanguage {
		m, _ := v.(map[string]string)
		text, ok := m[s.Lang]
		if !ok {
			return nil
		}
		return text
	}
	return v
}

// compare ordena nil antes que cualquier valor (como NULLS FIRST en ascendente).
func compare(a, b any, kind Kind) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch kind {
	case KindNumber:
		x, y := a.(float64), b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case KindBool:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case KindDate:
		return a.(time.Time).Compare(b.(time.Time))
	case KindStringList:
		return strings.Compare(strings.Join(a.([]string), ListSeparator), strings.Join(b.([]string), ListSeparator))
	}
	return strings.Compare(foldString(a.(string)), foldString(b.(string)))
}
