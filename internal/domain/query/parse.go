package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/language"

	"github.com/jhoicas/backoffice-api/internal/domain"
)

// Parser decodifica peticiones de listado contra un esquema.
type Parser struct {
	DefaultPageSize int
}

// NewParser construye el parser; defaultPageSize <= 0 usa DefaultPageSize.
func NewParser(defaultPageSize int) Parser {
	if defaultPageSize <= 0 || defaultPageSize > MaxPageSize {
		defaultPageSize = DefaultPageSize
	}
	return Parser{DefaultPageSize: defaultPageSize}
}

type rawPagination struct {
	Current  *json.Number `json:"current"`
	PageSize *json.Number `json:"pageSize"`
	Full     bool         `json:"full"`
}

type rawRequest struct {
	Filters        map[string]json.RawMessage `json:"filters"`
	Sorters        json.RawMessage            `json:"sorters"`
	Pagination     *rawPagination             `json:"pagination"`
	IncludeRemoved bool                       `json:"includeRemoved"`
}

// ParseJSON decodifica un cuerpo {filters, sorters, pagination, includeRemoved} en modo estricto:
// ningún valor se convierte entre tipos. Un cuerpo vacío equivale a la consulta por defecto.
func (p Parser) ParseJSON(schema *Schema, data []byte) (Query, error) {
	var raw rawRequest
	if len(bytes.TrimSpace(data)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return Query{}, domain.NewValidationError("body", "JSON inválido")
		}
	}
	return p.fromRaw(schema, raw)
}

// ParseEnvelope decodifica la parte de consulta ya extraída de otro cuerpo (ej. batch: {filters}).
func (p Parser) ParseEnvelope(schema *Schema, filters map[string]json.RawMessage) (Query, error) {
	return p.fromRaw(schema, rawRequest{Filters: filters, Pagination: &rawPagination{Full: true}})
}

func (p Parser) fromRaw(schema *Schema, raw rawRequest) (Query, error) {
	q := Query{Schema: schema, IncludeRemoved: raw.IncludeRemoved}
	verr := &domain.ValidationError{}

	for _, f := range schema.Fields {
		val, ok := raw.Filters[f.Name]
		if !ok {
			continue
		}
		pred, err := parseFilterJSON(f, val)
		if err != nil {
			verr.Add("filters."+f.Name, err.Error())
			continue
		}
		if pred != nil {
			q.Filters = append(q.Filters, *pred)
		}
	}
	for name := range raw.Filters {
		if _, ok := schema.Field(name); !ok {
			verr.Add("filters."+name, "campo no filtrable")
		}
	}

	sorters, err := parseSortersJSON(schema, raw.Sorters)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			for k, v := range ve.Fields {
				verr.Add(k, v)
			}
		} else {
			verr.Add("sorters", err.Error())
		}
	}
	q.Sorters = sorters

	if raw.Pagination != nil {
		q.Pagination.Full = raw.Pagination.Full
		if !q.Pagination.Full {
			if n, err := jsonInt(raw.Pagination.Current); err != nil {
				verr.Add("pagination.current", err.Error())
			} else {
				q.Pagination.Current = n
			}
			if n, err := jsonInt(raw.Pagination.PageSize); err != nil {
				verr.Add("pagination.pageSize", err.Error())
			} else {
				q.Pagination.PageSize = n
			}
		}
	}
	p.finishPagination(&q.Pagination, verr)

	if !verr.Empty() {
		return Query{}, verr
	}
	return q, nil
}

func (p Parser) finishPagination(pg *Pagination, verr *domain.ValidationError) {
	if pg.Full {
		normalizePagination(pg, p.DefaultPageSize)
		return
	}
	if pg.Current < 0 {
		verr.Add("pagination.current", "debe ser >= 1")
	}
	if pg.PageSize < 0 || pg.PageSize > MaxPageSize {
		verr.Add("pagination.pageSize", fmt.Sprintf("debe estar entre 1 y %d", MaxPageSize))
	}
	normalizePagination(pg, p.DefaultPageSize)
	if pg.PageSize > 0 && pg.Current-1 > MaxOffset/pg.PageSize {
		verr.Add("pagination.current", "fuera de rango")
	}
}

func jsonInt(n *json.Number) (int, error) {
	if n == nil {
		return 0, nil
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("se esperaba un entero")
	}
	if v == 0 {
		return 0, fmt.Errorf("debe ser >= 1")
	}
	return int(v), nil
}

func parseFilterJSON(f Field, raw json.RawMessage) (*Predicate, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("valor inválido")
	}
	if v == nil {
		return nil, nil
	}
	pred := &Predicate{Field: f}
	switch f.Kind {
	case KindString, KindLanguage, KindStringList:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("se esperaba texto")
		}
		if s == "" {
			return nil, nil
		}
		pred.Text = s
	case KindBool:
		switch b := v.(type) {
		case bool:
			pred.Bools = []bool{b}
		case []any:
			for _, e := range b {
				x, ok := e.(bool)
				if !ok {
					return nil, fmt.Errorf("se esperaba lista de booleanos")
				}
				pred.Bools = append(pred.Bools, x)
			}
			if len(pred.Bools) == 0 {
				return nil, nil
			}
		default:
			return nil, fmt.Errorf("se esperaba booleano o lista de booleanos")
		}
	case KindNumber:
		switch n := v.(type) {
		case json.Number:
			x, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("se esperaba número")
			}
			pred.Number = &x
		case map[string]any:
			from, to, err := rangeBounds(n, func(e any) (float64, error) {
				num, ok := e.(json.Number)
				if !ok {
					return 0, fmt.Errorf("se esperaba número")
				}
				return num.Float64()
			})
			if err != nil {
				return nil, err
			}
			if from == nil && to == nil {
				return nil, nil
			}
			pred.Range = &NumberRange{From: from, To: to}
		default:
			return nil, fmt.Errorf("se esperaba número o rango {from, to}")
		}
	case KindDate:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("se esperaba rango {from, to}")
		}
		from, to, err := rangeBounds(m, func(e any) (time.Time, error) {
			s, ok := e.(string)
			if !ok {
				return time.Time{}, fmt.Errorf("se esperaba fecha")
			}
			return ParseDate(s)
		})
		if err != nil {
			return nil, err
		}
		if from == nil && to == nil {
			return nil, nil
		}
		pred.Dates = &DateRange{From: from, To: to}
	default:
		return nil, fmt.Errorf("campo no filtrable")
	}
	return pred, nil
}

func rangeBounds[T any](m map[string]any, conv func(any) (T, error)) (*T, *T, error) {
	var from, to *T
	for k, e := range m {
		if e == nil {
			continue
		}
		v, err := conv(e)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %v", k, err)
		}
		switch k {
		case "from":
			from = &v
		case "to":
			to = &v
		default:
			return nil, nil, fmt.Errorf("clave de rango desconocida %q", k)
		}
	}
	return from, to, nil
}

type rawSorter struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// parseSortersJSON acepta [{field, order}] o {field: order}. En el segundo caso el orden
// de las claves del objeto se conserva leyendo tokens, no a través de un map.
func parseSortersJSON(schema *Schema, raw json.RawMessage) ([]Sorter, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var pairs []rawSorter
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &pairs); err != nil {
			return nil, fmt.Errorf("se esperaba lista de {field, order}")
		}
	case '{':
		dec := json.NewDecoder(bytes.NewReader(raw))
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("objeto inválido")
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("objeto inválido")
			}
			key, _ := tok.(string)
			var order any
			if err := dec.Decode(&order); err != nil {
				return nil, fmt.Errorf("objeto inválido")
			}
			if order == nil {
				continue
			}
			s, ok := order.(string)
			if !ok {
				s = cast.ToString(order)
			}
			pairs = append(pairs, rawSorter{Field: key, Order: s})
		}
		if _, err := dec.Token(); err != nil && err != io.EOF {
			return nil, fmt.Errorf("objeto inválido")
		}
	default:
		return nil, fmt.Errorf("se esperaba lista u objeto")
	}

	verr := &domain.ValidationError{}
	out := make([]Sorter, 0, len(pairs))
	for _, pair := range pairs {
		s, err := resolveSorter(schema, pair.Field, pair.Order)
		if err != nil {
			verr.Add("sorters."+pair.Field, err.Error())
			continue
		}
		out = append(out, s)
	}
	if !verr.Empty() {
		return nil, verr
	}
	return out, nil
}

func resolveSorter(schema *Schema, key, order string) (Sorter, error) {
	name, lang, _ := strings.Cut(key, ".")
	f, ok := schema.Field(name)
	if !ok || !f.Sortable {
		return Sorter{}, fmt.Errorf("campo no ordenable")
	}
	desc, ok := parseOrder(order)
	if !ok {
		return Sorter{}, fmt.Errorf("orden inválido %q", order)
	}
	if f.Kind == KindLanguage {
		if lang == "" {
			return Sorter{}, fmt.Errorf("indique el idioma: %s.<idioma>", name)
		}
		if _, err := language.Parse(lang); err != nil {
			return Sorter{}, fmt.Errorf("idioma inválido %q", lang)
		}
	} else if lang != "" {
		return Sorter{}, fmt.Errorf("campo no ordenable")
	}
	return Sorter{Field: f, Lang: lang, Desc: desc}, nil
}
