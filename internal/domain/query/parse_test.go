package query_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	return ve.Fields
}

func TestParseJSON_CuerpoVacioUsaPorDefecto(t *testing.T) {
	q, err := query.NewParser(0).ParseJSON(testSchema, nil)
	require.NoError(t, err)

	assert.Empty(t, q.Filters)
	assert.Empty(t, q.Sorters)
	assert.Equal(t, query.Pagination{Current: 1, PageSize: 10}, q.Pagination)
	assert.False(t, q.IncludeRemoved)
}

func TestParseJSON_PageSizeConfigurable(t *testing.T) {
	q, err := query.NewParser(25).ParseJSON(testSchema, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 25, q.Pagination.PageSize)
}

func TestParseJSON_FormasInvalidasNombranElCampo(t *testing.T) {
	cases := map[string]string{
		`{"filters":{"priority":"5"}}`:                  "filters.priority",
		`{"filters":{"active":"true"}}`:                 "filters.active",
		`{"filters":{"createdAt":"2024-01-01"}}`:        "filters.createdAt",
		`{"filters":{"createdAt":{"from":"ayer"}}}`:     "filters.createdAt",
		`{"filters":{"code":5}}`:                        "filters.code",
		`{"filters":{"desconocido":"x"}}`:               "filters.desconocido",
		`{"sorters":[{"field":"images","order":"asc"}]}`: "sorters.images",
		`{"sorters":{"priority":"sideways"}}`:           "sorters.priority",
		`{"sorters":[{"field":"names","order":"asc"}]}`: "sorters.names",
		`{"pagination":{"current":0}}`:                  "pagination.current",
		`{"pagination":{"pageSize":501}}`:               "pagination.pageSize",
		`{"pagination":{"current":1.5}}`:                "pagination.current",
	}
	for body, field := range cases {
		_, err := query.NewParser(0).ParseJSON(testSchema, []byte(body))
		fields := validationFields(t, err)
		assert.Contains(t, fields, field, body)
	}
}

func TestParseJSON_JSONMalformado(t *testing.T) {
	_, err := query.NewParser(0).ParseJSON(testSchema, []byte(`{"filters":`))
	fields := validationFields(t, err)
	assert.Contains(t, fields, "body")
}

func TestParseJSON_RangoNumericoYExacto(t *testing.T) {
	q, err := query.NewParser(0).ParseJSON(testSchema, []byte(`{"filters":{"priority":{"from":2}}}`))
	require.NoError(t, err)
	require.Len(t, q.Filters, 1)
	require.NotNil(t, q.Filters[0].Range)
	assert.Equal(t, 2.0, *q.Filters[0].Range.From)
	assert.Nil(t, q.Filters[0].Range.To)

	q, err = query.NewParser(0).ParseJSON(testSchema, []byte(`{"filters":{"priority":3}}`))
	require.NoError(t, err)
	require.Len(t, q.Filters, 1)
	assert.Equal(t, 3.0, *q.Filters[0].Number)
}

func TestParseJSON_OrdenesAceptados(t *testing.T) {
	q, err := query.NewParser(0).ParseJSON(testSchema, []byte(
		`{"sorters":[{"field":"priority","order":"descend"},{"field":"names.es","order":"ascend"}]}`))
	require.NoError(t, err)
	require.Len(t, q.Sorters, 2)
	assert.True(t, q.Sorters[0].Desc)
	assert.False(t, q.Sorters[1].Desc)
	assert.Equal(t, "es", q.Sorters[1].Lang)
	assert.Equal(t, "names.es", q.Sorters[1].Key())
}

func TestParseEnvelope_PaginacionCompleta(t *testing.T) {
	q, err := query.NewParser(0).ParseEnvelope(testSchema, nil)
	require.NoError(t, err)
	assert.True(t, q.Pagination.Full)
	assert.Equal(t, 0, q.Pagination.Limit())
}
