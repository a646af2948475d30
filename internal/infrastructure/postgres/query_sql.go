package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// selectSQL consulta compilada: cláusulas WHERE/ORDER BY/LIMIT con argumentos posicionales.
type selectSQL struct {
	Where string
	Order string
	Page  string
	Args  []any
}

// sqlCompiler traduce un query.Query a SQL con los mismos criterios que query.Apply:
// AND de predicados, nulos primero en ascendente, desempate final por seq.
type sqlCompiler struct {
	args  []any
	conds []string
}

func (c *sqlCompiler) arg(v any) string {
	c.args = append(c.args, v)
	return "$" + strconv.Itoa(len(c.args))
}

// compileSelect compila q. base son condiciones fijas (con sus argumentos ya registrados vía where).
// removable indica que la tabla tiene columna removed.
func compileSelect(q query.Query, removable bool, base ...func(c *sqlCompiler) string) selectSQL {
	c := &sqlCompiler{}
	for _, b := range base {
		c.conds = append(c.conds, b(c))
	}
	if removable && !q.IncludeRemoved {
		c.conds = append(c.conds, "removed = false")
	}
	for _, p := range q.Filters {
		c.conds = append(c.conds, c.predicate(p))
	}

	out := selectSQL{}
	if len(c.conds) > 0 {
		out.Where = " WHERE " + strings.Join(c.conds, " AND ")
	}
	order := make([]string, 0, len(q.Sorters)+1)
	for _, s := range q.Sorters {
		order = append(order, c.sorter(s))
	}
	order = append(order, "seq ASC")
	out.Order = " ORDER BY " + strings.Join(order, ", ")
	if lim := q.Pagination.Limit(); lim > 0 {
		out.Page = fmt.Sprintf(" LIMIT %d OFFSET %d", lim, q.Pagination.Offset())
	}
	out.Args = c.args
	return out
}

// attrText devuelve la expresión que extrae un atributo como texto del JSONB.
func attrText(name string) string {
	return "attributes->>" + quoteLiteral(name)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// valueExpr expresión SQL tipada del campo (NULL cuando el registro no tiene valor).
func valueExpr(f query.Field) string {
	if !f.Attribute() {
		switch f.Kind {
		case query.KindNumber:
			return "(" + f.Column + ")::numeric"
		}
		return f.Column
	}
	switch f.Kind {
	case query.KindNumber:
		return "(" + attrText(f.Name) + ")::numeric"
	case query.KindBool:
		return "(" + attrText(f.Name) + ")::boolean"
	case query.KindDate:
		return "(" + attrText(f.Name) + ")::timestamptz"
	case query.KindStringList:
		return "attributes->" + quoteLiteral(f.Name)
	}
	return attrText(f.Name)
}

// escapeLike escapa los comodines de LIKE (el escape por defecto de PostgreSQL es la barra invertida).
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (c *sqlCompiler) predicate(p query.Predicate) string {
	f := p.Field
	expr := valueExpr(f)
	switch f.Kind {
	case query.KindString:
		if f.Match == query.MatchSubstring {
			return expr + " ILIKE " + c.arg(escapeLike(p.Text))
		}
		return expr + " = " + c.arg(p.Text)
	case query.KindLanguage:
		return "EXISTS (SELECT 1 FROM jsonb_each_text(" + expr + ") AS n(k, v) WHERE n.v ILIKE " + c.arg(escapeLike(p.Text)) + ")"
	case query.KindStringList:
		return "COALESCE(" + expr + ", '[]'::jsonb) @> jsonb_build_array(" + c.arg(p.Text) + "::text)"
	case query.KindBool:
		// sin valor se comporta como false
		return "COALESCE(" + expr + ", false) = ANY(" + c.arg(p.Bools) + "::boolean[])"
	case query.KindNumber:
		if p.Number != nil {
			return expr + " = " + c.arg(*p.Number) + "::numeric"
		}
		var parts []string
		if p.Range != nil && p.Range.From != nil {
			parts = append(parts, expr+" >= "+c.arg(*p.Range.From)+"::numeric")
		}
		if p.Range != nil && p.Range.To != nil {
			parts = append(parts, expr+" <= "+c.arg(*p.Range.To)+"::numeric")
		}
		if len(parts) == 0 {
			return "TRUE"
		}
		return strings.Join(parts, " AND ")
	case query.KindDate:
		var parts []string
		if p.Dates != nil && p.Dates.From != nil {
			parts = append(parts, expr+" >= "+c.arg(*p.Dates.From)+"::timestamptz")
		}
		if p.Dates != nil && p.Dates.To != nil {
			parts = append(parts, expr+" <= "+c.arg(*p.Dates.To)+"::timestamptz")
		}
		if len(parts) == 0 {
			return "TRUE"
		}
		return strings.Join(parts, " AND ")
	}
	return "FALSE"
}

func (c *sqlCompiler) sorter(s query.Sorter) string {
	expr := valueExpr(s.Field)
	switch s.Field.Kind {
	case query.KindLanguage:
		expr = "lower(" + expr + "->>" + c.arg(s.Lang) + "::text)"
	case query.KindString:
		expr = "lower(" + expr + ")"
	}
	if s.Desc {
		return expr + " DESC NULLS LAST"
	}
	return expr + " ASC NULLS FIRST"
}
