package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

func compileJSON(t *testing.T, schemaName, body string) selectSQL {
	t.Helper()
	schema, ok := catalog.Lookup(schemaName)
	require.True(t, ok)
	q, err := query.NewParser(0).ParseJSON(schema, []byte(body))
	require.NoError(t, err)
	return compileSelect(q, true, func(c *sqlCompiler) string { return "kind = " + c.arg(schema.Name) })
}

func TestCompileSelect_PorDefecto(t *testing.T) {
	s := compileJSON(t, catalog.Products, `{}`)

	assert.Equal(t, " WHERE kind = $1 AND removed = false", s.Where)
	assert.Equal(t, " ORDER BY seq ASC", s.Order)
	assert.Equal(t, " LIMIT 10 OFFSET 0", s.Page)
	assert.Equal(t, []any{"products"}, s.Args)
}

func TestCompileSelect_FiltrosTipados(t *testing.T) {
	s := compileJSON(t, catalog.Products, `{
		"filters": {
			"code": "50%_off",
			"category": "cat-1",
			"images": "a.png",
			"active": [true],
			"price": {"from": 10, "to": 20},
			"names": "tor"
		},
		"pagination": {"current": 3, "pageSize": 20}
	}`)

	assert.Contains(t, s.Where, `attributes->>'code' ILIKE $`)
	assert.Contains(t, s.Where, `attributes->>'category' = $`)
	assert.Contains(t, s.Where, `COALESCE(attributes->'images', '[]'::jsonb) @> jsonb_build_array($`)
	assert.Contains(t, s.Where, `COALESCE(active, false) = ANY($`)
	assert.Contains(t, s.Where, `(attributes->>'price')::numeric >= $`)
	assert.Contains(t, s.Where, `(attributes->>'price')::numeric <= $`)
	assert.Contains(t, s.Where, `EXISTS (SELECT 1 FROM jsonb_each_text(names) AS n(k, v) WHERE n.v ILIKE $`)
	assert.Contains(t, s.Args, `%50\%\_off%`, "los comodines se escapan")
	assert.Contains(t, s.Args, `%tor%`)
	assert.Equal(t, " LIMIT 20 OFFSET 40", s.Page)
}

func TestCompileSelect_IncludeRemovedYFull(t *testing.T) {
	s := compileJSON(t, catalog.Units, `{"includeRemoved": true, "pagination": {"full": true}}`)

	assert.NotContains(t, s.Where, "removed")
	assert.Empty(t, s.Page)
}

func TestCompileSelect_OrdenNulosYDesempate(t *testing.T) {
	s := compileJSON(t, catalog.Products, `{"sorters": [{"field": "names.en", "order": "desc"}, {"field": "priority", "order": "asc"}]}`)

	assert.Equal(t, " ORDER BY lower(names->>$2::text) DESC NULLS LAST, (priority)::numeric ASC NULLS FIRST, seq ASC", s.Order)
	assert.Equal(t, []any{"products", "en"}, s.Args)
}

func TestCompileSelect_FechasInclusivas(t *testing.T) {
	s := compileJSON(t, catalog.Expenses, `{"filters": {"date": {"from": "2024-01-01", "to": "2024-01-31"}}}`)

	assert.Contains(t, s.Where, `(attributes->>'date')::timestamptz >= $2::timestamptz AND (attributes->>'date')::timestamptz <= $3::timestamptz`)
	assert.Len(t, s.Args, 3)
}
