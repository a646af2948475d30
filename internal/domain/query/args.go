package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/jhoicas/backoffice-api/internal/domain"
)

// Arg par clave/valor de query-string en el orden en que llegó.
type Arg struct {
	Key   string
	Value string
}

type argFilter struct {
	values   []string
	from, to string
	hasRange bool
}

// ParseArgs es el paso de preprocesamiento documentado para GET: convierte claves con corchetes
//
//	filters[name]=tor&filters[active]=true,false&filters[createdAt][from]=2024-01-01
//	sorters[priority]=desc&sorters[names.en]=asc
//	pagination[current]=2&pagination[pageSize]=10  (o pagination[full]=true)
//	includeRemoved=true
//
// aplicando la coerción de cada campo según su tipo (Field.ParseString). Las claves que no
// empiezan por filters/sorters/pagination/includeRemoved se ignoran (ej. format).
func (p Parser) ParseArgs(schema *Schema, args []Arg) (Query, error) {
	q := Query{Schema: schema}
	verr := &domain.ValidationError{}
	filters := map[string]*argFilter{}

	for _, a := range args {
		parts := splitKey(a.Key)
		switch parts[0] {
		case "filters":
			if len(parts) < 2 || len(parts) > 3 {
				verr.Add(a.Key, "clave inválida")
				continue
			}
			name := parts[1]
			af := filters[name]
			if af == nil {
				af = &argFilter{}
				filters[name] = af
			}
			if len(parts) == 3 {
				switch parts[2] {
				case "from":
					af.from, af.hasRange = a.Value, true
				case "to":
					af.to, af.hasRange = a.Value, true
				case "":
					af.values = append(af.values, a.Value)
				default:
					verr.Add(a.Key, "clave de rango desconocida")
				}
				continue
			}
			af.values = append(af.values, a.Value)
		case "sorters":
			if len(parts) != 2 {
				verr.Add(a.Key, "clave inválida")
				continue
			}
			s, err := resolveSorter(schema, parts[1], a.Value)
			if err != nil {
				verr.Add("sorters."+parts[1], err.Error())
				continue
			}
			q.Sorters = append(q.Sorters, s)
		case "pagination":
			if len(parts) != 2 {
				verr.Add(a.Key, "clave inválida")
				continue
			}
			switch parts[1] {
			case "current", "pageSize":
				n, err := strconv.Atoi(strings.TrimSpace(a.Value))
				if err != nil || n < 1 {
					verr.Add("pagination."+parts[1], "se esperaba un entero >= 1")
					continue
				}
				if parts[1] == "current" {
					q.Pagination.Current = n
				} else {
					q.Pagination.PageSize = n
				}
			case "full":
				b, err := cast.ToBoolE(a.Value)
				if err != nil {
					verr.Add("pagination.full", "se esperaba booleano")
					continue
				}
				q.Pagination.Full = b
			default:
				verr.Add(a.Key, "clave inválida")
			}
		case "includeRemoved":
			b, err := cast.ToBoolE(a.Value)
			if err != nil {
				verr.Add("includeRemoved", "se esperaba booleano")
				continue
			}
			q.IncludeRemoved = b
		}
	}

	for name := range filters {
		if _, ok := schema.Field(name); !ok {
			verr.Add("filters."+name, "campo no filtrable")
		}
	}
	for _, f := range schema.Fields {
		af, ok := filters[f.Name]
		if !ok {
			continue
		}
		pred, err := argPredicate(f, af)
		if err != nil {
			verr.Add("filters."+f.Name, err.Error())
			continue
		}
		if pred != nil {
			q.Filters = append(q.Filters, *pred)
		}
	}
	p.finishPagination(&q.Pagination, verr)
	if !verr.Empty() {
		return Query{}, verr
	}
	return q, nil
}

func argPredicate(f Field, af *argFilter) (*Predicate, error) {
	pred := &Predicate{Field: f}
	if af.hasRange {
		if len(af.values) > 0 {
			return nil, fmt.Errorf("no se puede combinar valor y rango")
		}
		switch f.Kind {
		case KindNumber:
			from, err := optionalNumber(f, af.from)
			if err != nil {
				return nil, err
			}
			to, err := optionalNumber(f, af.to)
			if err != nil {
				return nil, err
			}
			if from == nil && to == nil {
				return nil, nil
			}
			pred.Range = &NumberRange{From: from, To: to}
		case KindDate:
			from, err := optionalDate(f, af.from)
			if err != nil {
				return nil, err
			}
			to, err := optionalDate(f, af.to)
			if err != nil {
				return nil, err
			}
			if from == nil && to == nil {
				return nil, nil
			}
			pred.Dates = &DateRange{From: from, To: to}
		default:
			return nil, fmt.Errorf("el campo no admite rangos")
		}
		return pred, nil
	}

	switch f.Kind {
	case KindString, KindLanguage, KindStringList:
		if len(af.values) != 1 {
			return nil, fmt.Errorf("se esperaba un único valor")
		}
		if strings.TrimSpace(af.values[0]) == "" {
			return nil, nil
		}
		pred.Text = af.values[0]
	case KindBool:
		for _, v := range af.values {
			for _, item := range strings.Split(v, ",") {
				if strings.TrimSpace(item) == "" {
					continue
				}
				b, err := f.ParseString(item)
				if err != nil {
					return nil, err
				}
				pred.Bools = append(pred.Bools, b.(bool))
			}
		}
		if len(pred.Bools) == 0 {
			return nil, nil
		}
	case KindNumber:
		if len(af.values) != 1 {
			return nil, fmt.Errorf("se esperaba un único valor")
		}
		n, err := optionalNumber(f, af.values[0])
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, nil
		}
		pred.Number = n
	case KindDate:
		return nil, fmt.Errorf("use %s[from] / %s[to]", f.Name, f.Name)
	}
	return pred, nil
}

func optionalNumber(f Field, s string) (*float64, error) {
	v, err := f.ParseString(s)
	if err != nil || v == nil {
		return nil, err
	}
	n := v.(float64)
	return &n, nil
}

func optionalDate(f Field, s string) (*time.Time, error) {
	v, err := f.ParseString(s)
	if err != nil || v == nil {
		return nil, err
	}
	t := v.(time.Time)
	return &t, nil
}

// splitKey divide "filters[createdAt][from]" en ["filters", "createdAt", "from"].
func splitKey(key string) []string {
	head, rest, ok := strings.Cut(key, "[")
	if !ok {
		return []string{key}
	}
	parts := []string{head}
	for rest != "" {
		seg, after, found := strings.Cut(rest, "]")
		if !found {
			parts = append(parts, seg)
			break
		}
		parts = append(parts, seg)
		rest = strings.TrimPrefix(after, "[")
	}
	return parts
}
