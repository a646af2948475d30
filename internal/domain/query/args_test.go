package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

func TestParseArgs_CoercionPorTipo(t *testing.T) {
	args := []query.Arg{
		{Key: "filters[priority]", Value: "2"},
		{Key: "filters[active]", Value: "true,false"},
		{Key: "filters[createdAt][from]", Value: "2024-01-03"},
		{Key: "filters[code]", Value: "sku"},
		{Key: "sorters[priority]", Value: "desc"},
		{Key: "sorters[names.en]", Value: "asc"},
		{Key: "pagination[current]", Value: "2"},
		{Key: "pagination[pageSize]", Value: "5"},
		{Key: "format", Value: "csv"},
	}
	q, err := query.NewParser(0).ParseArgs(testSchema, args)
	require.NoError(t, err)

	require.Len(t, q.Filters, 4)
	byField := map[string]query.Predicate{}
	for _, p := range q.Filters {
		byField[p.Field.Name] = p
	}
	assert.Equal(t, 2.0, *byField["priority"].Number)
	assert.ElementsMatch(t, []bool{true, false}, byField["active"].Bools)
	assert.True(t, byField["createdAt"].Dates.From.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, byField["createdAt"].Dates.To)
	assert.Equal(t, "sku", byField["code"].Text)

	require.Len(t, q.Sorters, 2)
	assert.Equal(t, "priority", q.Sorters[0].Key())
	assert.True(t, q.Sorters[0].Desc)
	assert.Equal(t, "names.en", q.Sorters[1].Key())
	assert.Equal(t, query.Pagination{Current: 2, PageSize: 5}, q.Pagination)
}

func TestParseArgs_MismaSemanticaQueJSON(t *testing.T) {
	rows := seedRows(25)
	fromArgs, err := query.NewParser(0).ParseArgs(testSchema, []query.Arg{
		{Key: "filters[active]", Value: "true"},
		{Key: "sorters[priority]", Value: "desc"},
		{Key: "pagination[full]", Value: "true"},
	})
	require.NoError(t, err)
	fromJSON := mustJSON(t, `{"filters":{"active":true},"sorters":{"priority":"desc"},"pagination":{"full":true}}`)

	a, totalA := query.Apply(rows, fromArgs)
	b, totalB := query.Apply(rows, fromJSON)
	assert.Equal(t, totalB, totalA)
	assert.Equal(t, seqs(b), seqs(a))
}

func TestParseArgs_ErroresDeCoercion(t *testing.T) {
	cases := map[string][]query.Arg{
		"filters.priority":    {{Key: "filters[priority]", Value: "mucho"}},
		"filters.active":      {{Key: "filters[active]", Value: "quizá"}},
		"filters.createdAt":   {{Key: "filters[createdAt]", Value: "2024-01-01"}},
		"filters.code":        {{Key: "filters[code][from]", Value: "a"}},
		"filters.nada":        {{Key: "filters[nada]", Value: "x"}},
		"pagination.pageSize": {{Key: "pagination[pageSize]", Value: "0"}},
		"pagination.current":  {{Key: "pagination[current]", Value: "0x10"}},
		"includeRemoved":      {{Key: "includeRemoved", Value: "tal vez"}},
	}
	for field, args := range cases {
		_, err := query.NewParser(0).ParseArgs(testSchema, args)
		fields := validationFields(t, err)
		assert.Contains(t, fields, field)
	}
}

func TestParseArgs_PaginacionDecimal(t *testing.T) {
	q, err := query.NewParser(0).ParseArgs(testSchema, []query.Arg{
		{Key: "pagination[current]", Value: " 010 "},
		{Key: "pagination[pageSize]", Value: "20"},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, q.Pagination.Current, "los ceros a la izquierda no cambian la base")
	assert.Equal(t, 20, q.Pagination.PageSize)
}

func TestParseArgs_PaginaDesbordada(t *testing.T) {
	_, err := query.NewParser(0).ParseArgs(testSchema, []query.Arg{
		{Key: "pagination[current]", Value: "922337203685477580"},
		{Key: "pagination[pageSize]", Value: "20"},
	})
	assert.Contains(t, validationFields(t, err), "pagination.current")
}

func TestParseArgs_IncludeRemoved(t *testing.T) {
	q, err := query.NewParser(0).ParseArgs(testSchema, []query.Arg{{Key: "includeRemoved", Value: "1"}})
	require.NoError(t, err)
	assert.True(t, q.IncludeRemoved)
}
