package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
)

type fixture struct {
	uc        *inventory.UseCase
	warehouse string
	bolt      string
	nut       string
	washer    string
}

func seedRecord(t *testing.T, repo *memory.ResourceRepo, kind, name string) string {
	t.Helper()
	rec := &entity.Record{
		ID:         uuid.NewString(),
		Kind:       kind,
		Names:      entity.LanguageString{"es": name},
		Active:     true,
		Attributes: map[string]any{},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), rec))
	return rec.ID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	resources := memory.NewResourceRepository(store)
	barcodes := memory.NewBarcodeRepository(store)
	f := fixture{
		warehouse: seedRecord(t, resources, catalog.Warehouses, "Principal"),
		bolt:      seedRecord(t, resources, catalog.Products, "Perno"),
		nut:       seedRecord(t, resources, catalog.Products, "Tuerca"),
		washer:    seedRecord(t, resources, catalog.Products, "Arandela"),
	}
	ctx := context.Background()
	require.NoError(t, barcodes.Create(ctx, &entity.Barcode{
		ID: uuid.NewString(), Code: "00012345678905",
		Items: []entity.BarcodeItem{{ProductID: f.bolt, Quantity: decimal.NewFromInt(1)}},
	}))
	require.NoError(t, barcodes.Create(ctx, &entity.Barcode{
		ID: uuid.NewString(), Code: "CAJA-12",
		Items: []entity.BarcodeItem{{ProductID: f.bolt, Quantity: decimal.NewFromInt(12)}},
	}))
	require.NoError(t, barcodes.Create(ctx, &entity.Barcode{
		ID: uuid.NewString(), Code: "ARANDELA",
		Items: []entity.BarcodeItem{{ProductID: f.washer, Quantity: decimal.NewFromInt(1)}},
	}))
	f.uc = inventory.NewUseCase(memory.NewTxRunner(store), memory.NewInventoryRepository(store), barcodes, resources, nil)
	return f
}

func (f fixture) counting(t *testing.T, expected map[string]int64) *dto.InventoryResponse {
	t.Helper()
	ctx := context.Background()
	items := make([]dto.InventoryItemInput, 0, len(expected))
	for id, q := range expected {
		items = append(items, dto.InventoryItemInput{ProductID: id, ExpectedQuantity: decimal.NewFromInt(q)})
	}
	inv, err := f.uc.Create(ctx, "user-1", dto.CreateInventoryRequest{WarehouseID: f.warehouse, Items: items})
	require.NoError(t, err)
	inv, err = f.uc.Start(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, entity.InventoryCounting, inv.Status)
	return inv
}

func qty(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

// ─── Create / AddItems ──────────────────────────────────────────────────────

func TestCreate_EnDraftConLineasEsperadas(t *testing.T) {
	f := newFixture(t)
	inv, err := f.uc.Create(context.Background(), "user-1", dto.CreateInventoryRequest{
		WarehouseID: f.warehouse,
		Items:       []dto.InventoryItemInput{{ProductID: f.bolt, ExpectedQuantity: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.InventoryDraft, inv.Status)
	assert.Equal(t, entity.InventoryKindCount, inv.Kind)
	assert.NotEmpty(t, inv.Number)
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Items[0].ScannedQuantity.IsZero())
	assert.False(t, inv.Items[0].Unexpected)
}

func TestCreate_BodegaInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), "user-1", dto.CreateInventoryRequest{WarehouseID: uuid.NewString()})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "warehouseId")
}

func TestAddItems_SoloEnDraft(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 1})
	_, err := f.uc.AddItems(context.Background(), dto.AddItemsRequest{
		InventoryID: inv.ID,
		Items:       []dto.InventoryItemInput{{ProductID: f.nut, ExpectedQuantity: decimal.NewFromInt(2)}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestAddItems_ProductoRepetido(t *testing.T) {
	f := newFixture(t)
	inv, err := f.uc.Create(context.Background(), "user-1", dto.CreateInventoryRequest{
		WarehouseID: f.warehouse,
		Items:       []dto.InventoryItemInput{{ProductID: f.bolt, ExpectedQuantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	_, err = f.uc.AddItems(context.Background(), dto.AddItemsRequest{
		InventoryID: inv.ID,
		Items:       []dto.InventoryItemInput{{ProductID: f.bolt, ExpectedQuantity: decimal.NewFromInt(3)}},
	})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

// ─── Scan ───────────────────────────────────────────────────────────────────

func TestScan_CodigoNormalizadoSumaEsperado(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 10})

	// 12 dígitos se rellenan a GTIN-14
	res, err := f.uc.Scan(context.Background(), dto.ScanRequest{InventoryID: inv.ID, Code: "012345678905"})
	require.NoError(t, err)
	assert.Equal(t, dto.ScanMatched, res.Outcome)
	assert.Equal(t, "00012345678905", res.Code)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].ScannedQuantity.Equal(decimal.NewFromInt(1)))
}

func TestScan_MultiplicadorPorCantidad(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 100})

	res, err := f.uc.Scan(context.Background(), dto.ScanRequest{InventoryID: inv.ID, Code: " CAJA-12 ", Quantity: qty(3)})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].ScannedQuantity.Equal(decimal.NewFromInt(36)), "3 cajas x 12")
}

func TestScan_CodigoDesconocidoNoModifica(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 10})

	res, err := f.uc.Scan(context.Background(), dto.ScanRequest{InventoryID: inv.ID, Code: "NO-EXISTE"})
	require.NoError(t, err)
	assert.Equal(t, dto.ScanNotFound, res.Outcome)
	assert.Empty(t, res.Items)

	got, err := f.uc.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].ScannedQuantity.IsZero())
}

func TestScan_ProductoNoEsperadoCreaLineaInesperada(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 10})
	ctx := context.Background()

	res, err := f.uc.Scan(ctx, dto.ScanRequest{InventoryID: inv.ID, Code: "ARANDELA"})
	require.NoError(t, err)
	assert.Equal(t, dto.ScanUnexpected, res.Outcome)
	_, err = f.uc.Scan(ctx, dto.ScanRequest{InventoryID: inv.ID, Code: "ARANDELA", Quantity: qty(2)})
	require.NoError(t, err)

	got, err := f.uc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2, "la línea inesperada se incrementa, no se duplica")
	var unexpected dto.InventoryItemResponse
	for _, it := range got.Items {
		if it.Unexpected {
			unexpected = it
		}
	}
	assert.Equal(t, f.washer, unexpected.ProductID)
	assert.True(t, unexpected.ScannedQuantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, unexpected.ExpectedQuantity.IsZero())
}

func TestScan_FueraDeCountingEsConflicto(t *testing.T) {
	f := newFixture(t)
	inv, err := f.uc.Create(context.Background(), "user-1", dto.CreateInventoryRequest{WarehouseID: f.warehouse})
	require.NoError(t, err)

	_, err = f.uc.Scan(context.Background(), dto.ScanRequest{InventoryID: inv.ID, Code: "CAJA-12"})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestScan_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 10})
	_, err := f.uc.Scan(context.Background(), dto.ScanRequest{InventoryID: inv.ID, Code: "CAJA-12", Quantity: qty(0)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestScan_ConcurrentesNoPierdenIncrementos(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 100})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Scan(ctx, dto.ScanRequest{InventoryID: inv.ID, Code: "00012345678905"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := f.uc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].ScannedQuantity.Equal(decimal.NewFromInt(50)))
}

// ─── Receive ────────────────────────────────────────────────────────────────

func TestReceive_Acumula(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 10})
	ctx := context.Background()
	itemID := inv.Items[0].ID

	_, err := f.uc.Receive(ctx, dto.ReceiveRequest{InventoryID: inv.ID, ItemID: itemID, Quantity: decimal.NewFromInt(4)})
	require.NoError(t, err)
	item, err := f.uc.Receive(ctx, dto.ReceiveRequest{InventoryID: inv.ID, ItemID: itemID, Quantity: decimal.NewFromInt(3)})
	require.NoError(t, err)
	require.NotNil(t, item.ReceivedQuantity)
	assert.True(t, item.ReceivedQuantity.Equal(decimal.NewFromInt(7)))
}

func TestReceive_LineaDeOtroInventario(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 10})
	_, err := f.uc.Receive(context.Background(), dto.ReceiveRequest{InventoryID: inv.ID, ItemID: uuid.NewString(), Quantity: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ─── Finalize ───────────────────────────────────────────────────────────────

func TestFinalize_CalculaDiscrepancias(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 10, f.nut: 5})
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := f.uc.Scan(ctx, dto.ScanRequest{InventoryID: inv.ID, Code: "00012345678905"})
		require.NoError(t, err)
	}
	_, err := f.uc.Scan(ctx, dto.ScanRequest{InventoryID: inv.ID, Code: "ARANDELA"})
	require.NoError(t, err)

	res, err := f.uc.Finalize(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InventoryFinalized, res.Inventory.Status)
	require.NotNil(t, res.Inventory.FinalizedAt)
	require.Len(t, res.Discrepancies, 3)

	byProduct := map[string]decimal.Decimal{}
	for _, it := range res.Discrepancies {
		require.NotNil(t, it.Discrepancy)
		byProduct[it.ProductID] = *it.Discrepancy
	}
	assert.True(t, byProduct[f.bolt].Equal(decimal.NewFromInt(-3)), "esperado 10, leído 7")
	assert.True(t, byProduct[f.nut].Equal(decimal.NewFromInt(-5)))
	assert.True(t, byProduct[f.washer].Equal(decimal.NewFromInt(1)))
}

func TestFinalize_LineasInmutablesDespues(t *testing.T) {
	f := newFixture(t)
	inv := f.counting(t, map[string]int64{f.bolt: 10})
	ctx := context.Background()

	_, err := f.uc.Finalize(ctx, inv.ID)
	require.NoError(t, err)

	_, err = f.uc.Scan(ctx, dto.ScanRequest{InventoryID: inv.ID, Code: "CAJA-12"})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	_, err = f.uc.Receive(ctx, dto.ReceiveRequest{InventoryID: inv.ID, ItemID: inv.Items[0].ID, Quantity: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	_, err = f.uc.Finalize(ctx, inv.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestFinalize_DesdeDraftEsConflicto(t *testing.T) {
	f := newFixture(t)
	inv, err := f.uc.Create(context.Background(), "user-1", dto.CreateInventoryRequest{WarehouseID: f.warehouse})
	require.NoError(t, err)
	_, err = f.uc.Finalize(context.Background(), inv.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestGet_IDInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Get(context.Background(), "no-es-uuid")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ─── Report ─────────────────────────────────────────────────────────────────

type fakeRenderer struct {
	warehouse string
	lines     []inventory.ReportLine
}

func (r *fakeRenderer) RenderDiscrepancies(_ *entity.Inventory, warehouse string, lines []inventory.ReportLine) ([]byte, error) {
	r.warehouse = warehouse
	r.lines = lines
	return []byte("%PDF"), nil
}

func TestReport_ResuelveNombres(t *testing.T) {
	store := memory.NewStore()
	resources := memory.NewResourceRepository(store)
	wh := seedRecord(t, resources, catalog.Warehouses, "Principal")
	bolt := seedRecord(t, resources, catalog.Products, "Perno")
	renderer := &fakeRenderer{}
	uc := inventory.NewUseCase(memory.NewTxRunner(store), memory.NewInventoryRepository(store), memory.NewBarcodeRepository(store), resources, renderer)
	ctx := context.Background()

	inv, err := uc.Create(ctx, "user-1", dto.CreateInventoryRequest{
		WarehouseID: wh,
		Items:       []dto.InventoryItemInput{{ProductID: bolt, ExpectedQuantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	_, err = uc.Report(ctx, inv.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidState), "sólo finalizados")

	_, err = uc.Start(ctx, inv.ID)
	require.NoError(t, err)
	_, err = uc.Finalize(ctx, inv.ID)
	require.NoError(t, err)

	pdf, err := uc.Report(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), pdf)
	assert.Equal(t, "Principal", renderer.warehouse)
	require.Len(t, renderer.lines, 1)
	assert.Equal(t, "Perno", renderer.lines[0].ProductName)
}
