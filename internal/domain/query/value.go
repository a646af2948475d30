package query

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cast"
)

// ListSeparator separa los elementos de un campo lista en formatos planos (CSV, XLSX, query-string).
const ListSeparator = "|"

// Coerce valida un valor decodificado de JSON contra el tipo del campo y lo normaliza
// (number -> float64, date -> time.Time, list -> []string). No convierte entre tipos:
// un string donde se espera número es un error.
func (f Field) Coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("se esperaba texto")
		}
		return s, nil
	case KindNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case json.Number:
			x, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("se esperaba número")
			}
			return x, nil
		}
		return nil, fmt.Errorf("se esperaba número")
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("se esperaba booleano")
		}
		return b, nil
	case KindDate:
		switch d := v.(type) {
		case time.Time:
			return d, nil
		case string:
			t, err := ParseDate(d)
			if err != nil {
				return nil, err
			}
			return t, nil
		}
		return nil, fmt.Errorf("se esperaba fecha")
	case KindStringList:
		switch l := v.(type) {
		case []string:
			return l, nil
		case []any:
			out := make([]string, 0, len(l))
			for _, e := range l {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("se esperaba lista de textos")
				}
				out = append(out, s)
			}
			return out, nil
		}
		return nil, fmt.Errorf("se esperaba lista de textos")
	case KindLanguage:
		switch m := v.(type) {
		case map[string]string:
			return m, nil
		case map[string]any:
			out := make(map[string]string, len(m))
			for k, e := range m {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("se esperaba texto para el idioma %q", k)
				}
				out[k] = s
			}
			return out, nil
		}
		return nil, fmt.Errorf("se esperaba un mapa idioma -> texto")
	}
	return nil, fmt.Errorf("tipo de campo no soportado")
}

// ParseString convierte un valor plano (query-string, celda CSV/XLSX) al tipo del campo.
// Es el único punto donde se permite coerción desde texto. Un texto vacío devuelve nil.
func (f Field) ParseString(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	switch f.Kind {
	case KindString, KindLanguage:
		return s, nil
	case KindNumber:
		n, err := cast.ToFloat64E(s)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%q no es un número", s)
		}
		return n, nil
	case KindBool:
		b, err := cast.ToBoolE(s)
		if err != nil {
			return nil, fmt.Errorf("%q no es un booleano", s)
		}
		return b, nil
	case KindDate:
		return ParseDate(s)
	case KindStringList:
		parts := strings.Split(s, ListSeparator)
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("tipo de campo no soportado")
}

// FormatString es la inversa de ParseString para exportar a formatos planos.
func (f Field) FormatString(v any) string {
	if v == nil {
		return ""
	}
	switch f.Kind {
	case KindNumber:
		return cast.ToString(v)
	case KindBool:
		return cast.ToString(v)
	case KindDate:
		if t, ok := v.(time.Time); ok {
			return t.UTC().Format(time.RFC3339Nano)
		}
	case KindStringList:
		if l, ok := v.([]string); ok {
			return strings.Join(l, ListSeparator)
		}
	}
	return cast.ToString(v)
}

// ParseDate interpreta una fecha en modo estricto (RFC3339, ISO 8601, "2006-01-02", ...).
// Formatos ambiguos como "01/02/2006" se rechazan; fechas sin zona se interpretan en UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if _, err := dateparse.ParseStrict(s); err != nil {
		return time.Time{}, fmt.Errorf("%q no es una fecha válida", s)
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q no es una fecha válida", s)
	}
	return t, nil
}
