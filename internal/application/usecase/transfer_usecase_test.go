package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/codec"
)

func newTransfer(t *testing.T) (*usecase.TransferUseCase, *usecase.ResourceUseCase) {
	t.Helper()
	resources, _ := newResources(t)
	return usecase.NewTransferUseCase(resources, codec.New([]string{"en", "es"})), resources
}

func TestImport_CSVConFilasRechazadas(t *testing.T) {
	tr, _ := newTransfer(t)
	data := "names.es,code,rate\nDólar,USD,1\nEuro,,2\nPeso,COP,abc\nYen,JPY,0.01\n"

	res, err := tr.Import(context.Background(), schemaOf(t, catalog.Currencies), usecase.FormatCSV, []byte(data))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, 2, res.Failures[0].Row, "code requerido")
	assert.Equal(t, 3, res.Failures[1].Row, "rate no numérico")
}

func TestExportImport_IdaYVuelta(t *testing.T) {
	for _, format := range []string{usecase.FormatCSV, usecase.FormatXLSX, usecase.FormatJSON} {
		t.Run(format, func(t *testing.T) {
			tr, resources := newTransfer(t)
			ctx := context.Background()
			schema := schemaOf(t, catalog.Currencies)
			_, err := resources.Create(ctx, schema, map[string]any{
				"names": map[string]any{"en": "Dollar", "es": "Dólar"}, "code": "USD", "rate": json.Number("1"), "priority": json.Number("2"),
			})
			require.NoError(t, err)
			_, err = resources.Create(ctx, schema, map[string]any{"names": names("Peso"), "code": "COP", "active": false})
			require.NoError(t, err)

			out, err := tr.Export(ctx, query.All(schema), format)
			require.NoError(t, err)

			other, dst := newTransfer(t)
			res, err := other.Import(ctx, schema, format, out)
			require.NoError(t, err)
			assert.Empty(t, res.Failures)
			assert.Equal(t, 2, res.Imported)

			recs, _, err := dst.List(ctx, query.All(schema))
			require.NoError(t, err)
			require.Len(t, recs, 2)
			assert.Equal(t, "USD", recs[0].Attributes["code"])
			assert.Equal(t, "Dollar", recs[0].Names["en"])
			assert.Equal(t, 2, recs[0].Priority)
			assert.False(t, recs[1].Active)
		})
	}
}

func TestExportImport_ListasYTextosConservados(t *testing.T) {
	for _, format := range []string{usecase.FormatCSV, usecase.FormatXLSX} {
		t.Run(format, func(t *testing.T) {
			tr, resources := newTransfer(t)
			ctx := context.Background()
			schema := schemaOf(t, catalog.Roles)
			_, err := resources.Create(ctx, schema, map[string]any{
				"names": names("Bodega"), "code": " bodega ", "permissions": []any{"inventories.scan ", " inventories.read"},
			})
			require.NoError(t, err)

			out, err := tr.Export(ctx, query.All(schema), format)
			require.NoError(t, err)

			other, dst := newTransfer(t)
			res, err := other.Import(ctx, schema, format, out)
			require.NoError(t, err)
			assert.Empty(t, res.Failures)

			recs, _, err := dst.List(ctx, query.All(schema))
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, "bodega", recs[0].Attributes["code"])
			assert.Equal(t, []string{"inventories.scan", "inventories.read"}, recs[0].Attributes["permissions"])
		})
	}
}

func TestExport_FormatoDesconocido(t *testing.T) {
	tr, _ := newTransfer(t)
	_, err := tr.Export(context.Background(), query.All(schemaOf(t, catalog.Currencies)), "pdf")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
