package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/pdf"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRenderDiscrepancies_GeneraPDF(t *testing.T) {
	closed := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	inv := &entity.Inventory{
		ID: "inv-1", Kind: entity.InventoryKindCount, Number: "INV-20260314-ab12cd",
		Status: entity.InventoryFinalized, FinalizedAt: &closed,
	}
	lines := []inventory.ReportLine{
		{ProductName: "Tornillo", Item: &entity.InventoryItem{
			ExpectedQuantity: decimal.NewFromInt(10), ScannedQuantity: decimal.NewFromInt(7), Discrepancy: dec("-3"),
		}},
		{ProductName: "Arandela", Item: &entity.InventoryItem{
			ScannedQuantity: decimal.NewFromInt(1), Unexpected: true, Discrepancy: dec("1"),
			ReceivedQuantity: dec("2.5"),
		}},
	}

	out, err := pdf.NewMarotoPDFGenerator().RenderDiscrepancies(inv, "Bodega central", lines)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "la salida debe ser un PDF")
}

func TestRenderDiscrepancies_SinLineas(t *testing.T) {
	inv := &entity.Inventory{ID: "inv-2", Kind: entity.InventoryKindTransaction, Number: "INV-2", WarehouseID: "wh-1"}

	out, err := pdf.NewMarotoPDFGenerator().RenderDiscrepancies(inv, "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
