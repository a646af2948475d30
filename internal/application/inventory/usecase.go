package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/barcode"
)

// UseCase flujo de conciliación de inventarios: draft -> counting -> finalized.
// Scan, receive y finalize corren dentro de TxRunner; los incrementos son atómicos en el store.
type UseCase struct {
	txRunner  TxRunner
	repo      repository.InventoryRepository
	barcodes  repository.BarcodeRepository
	resources repository.ResourceRepository
	report    ReportRenderer
	now       func() time.Time
}

// NewUseCase construye el caso de uso. report puede ser nil (sin reporte PDF).
func NewUseCase(
	txRunner TxRunner,
	repo repository.InventoryRepository,
	barcodes repository.BarcodeRepository,
	resources repository.ResourceRepository,
	report ReportRenderer,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		repo:      repo,
		barcodes:  barcodes,
		resources: resources,
		report:    report,
		now:       time.Now,
	}
}

// List lista inventarios (sin líneas).
func (uc *UseCase) List(ctx context.Context, q query.Query) ([]dto.InventoryResponse, int, error) {
	list, total, err := uc.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.InventoryResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInventoryResponse(inv, nil))
	}
	return out, total, nil
}

// Get obtiene un inventario con sus líneas.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.InventoryResponse, error) {
	inv, err := find(ctx, uc.repo.GetByID, id)
	if err != nil {
		return nil, err
	}
	items, err := uc.repo.Items(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	resp := toInventoryResponse(inv, items)
	return &resp, nil
}

// Create da de alta un inventario en draft con sus líneas esperadas.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateInventoryRequest) (*dto.InventoryResponse, error) {
	wh, err := uc.resources.Get(ctx, catalog.Warehouses, in.WarehouseID, false)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.NewValidationError("warehouseId", "la bodega no existe")
	}
	if err := uc.checkItems(ctx, in.Items); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	kind := in.Kind
	if kind == "" {
		kind = entity.InventoryKindCount
	}
	number := strings.TrimSpace(in.Number)
	if number == "" {
		number = fmt.Sprintf("INV-%s-%s", now.Format("20060102"), uuid.NewString()[:6])
	}
	inv := &entity.Inventory{
		ID:          uuid.New().String(),
		Kind:        kind,
		WarehouseID: in.WarehouseID,
		Number:      number,
		Status:      entity.InventoryDraft,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.txRunner.Run(ctx, func(repo repository.InventoryRepository) error {
		if err := repo.Create(ctx, inv); err != nil {
			return err
		}
		return addItems(ctx, repo, inv.ID, in.Items)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, inv.ID)
}

// AddItems agrega líneas esperadas; sólo en draft.
func (uc *UseCase) AddItems(ctx context.Context, in dto.AddItemsRequest) (*dto.InventoryResponse, error) {
	if err := uc.checkItems(ctx, in.Items); err != nil {
		return nil, err
	}
	err := uc.txRunner.Run(ctx, func(repo repository.InventoryRepository) error {
		inv, err := find(ctx, repo.GetForUpdate, in.InventoryID)
		if err != nil {
			return err
		}
		if inv.Status != entity.InventoryDraft {
			return fmt.Errorf("agregar líneas en %s: %w", inv.Status, domain.ErrInvalidState)
		}
		return addItems(ctx, repo, inv.ID, in.Items)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, in.InventoryID)
}

// Start pasa el inventario de draft a counting.
func (uc *UseCase) Start(ctx context.Context, id string) (*dto.InventoryResponse, error) {
	err := uc.txRunner.Run(ctx, func(repo repository.InventoryRepository) error {
		inv, err := find(ctx, repo.GetForUpdate, id)
		if err != nil {
			return err
		}
		if inv.Status != entity.InventoryDraft {
			return fmt.Errorf("iniciar conteo en %s: %w", inv.Status, domain.ErrInvalidState)
		}
		inv.Status = entity.InventoryCounting
		inv.UpdatedAt = uc.now().UTC()
		return repo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// Scan registra la lectura de un código. Un código desconocido devuelve not_found sin cambios;
// cada producto del código suma quantity × multiplicador a su línea, o crea una línea inesperada.
func (uc *UseCase) Scan(ctx context.Context, in dto.ScanRequest) (*dto.ScanResponse, error) {
	qty := decimal.NewFromInt(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if !qty.IsPositive() {
		return nil, domain.NewValidationError("quantity", "debe ser positiva")
	}
	code := barcode.Normalize(in.Code)
	resp := &dto.ScanResponse{Outcome: dto.ScanNotFound, Code: code, Items: []dto.InventoryItemResponse{}}

	err := uc.txRunner.Run(ctx, func(repo repository.InventoryRepository) error {
		inv, err := find(ctx, repo.GetForShare, in.InventoryID)
		if err != nil {
			return err
		}
		if inv.Status != entity.InventoryCounting {
			return fmt.Errorf("scan en %s: %w", inv.Status, domain.ErrInvalidState)
		}
		bc, err := uc.barcodes.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if bc == nil {
			return nil
		}
		resp.Outcome = dto.ScanMatched
		for _, bi := range bc.Items {
			item, err := repo.IncrementScanned(ctx, inv.ID, bi.ProductID, qty.Mul(bi.Quantity))
			if err != nil {
				return err
			}
			if item.Unexpected {
				resp.Outcome = dto.ScanUnexpected
			}
			resp.Items = append(resp.Items, toItemResponse(item))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Receive suma quantity a la cantidad recibida de una línea; sólo en counting.
func (uc *UseCase) Receive(ctx context.Context, in dto.ReceiveRequest) (*dto.InventoryItemResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.NewValidationError("quantity", "debe ser positiva")
	}
	var out dto.InventoryItemResponse
	err := uc.txRunner.Run(ctx, func(repo repository.InventoryRepository) error {
		inv, err := find(ctx, repo.GetForShare, in.InventoryID)
		if err != nil {
			return err
		}
		if inv.Status != entity.InventoryCounting {
			return fmt.Errorf("recepción en %s: %w", inv.Status, domain.ErrInvalidState)
		}
		item, err := repo.IncrementReceived(ctx, inv.ID, in.ItemID, in.Quantity)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		out = toItemResponse(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Finalize bloquea el inventario, calcula discrepancy = scanned - expected en cada línea,
// la persiste y cierra el inventario. Las líneas quedan inmutables.
func (uc *UseCase) Finalize(ctx context.Context, id string) (*dto.FinalizeResponse, error) {
	var (
		inv   *entity.Inventory
		items []*entity.InventoryItem
	)
	err := uc.txRunner.Run(ctx, func(repo repository.InventoryRepository) error {
		var err error
		inv, err = find(ctx, repo.GetForUpdate, id)
		if err != nil {
			return err
		}
		if inv.Status != entity.InventoryCounting {
			return fmt.Errorf("finalizar en %s: %w", inv.Status, domain.ErrInvalidState)
		}
		items, err = repo.Items(ctx, inv.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			d := it.ScannedQuantity.Sub(it.ExpectedQuantity)
			it.Discrepancy = &d
		}
		if err := repo.SetDiscrepancies(ctx, items); err != nil {
			return err
		}
		now := uc.now().UTC()
		inv.Status = entity.InventoryFinalized
		inv.FinalizedAt = &now
		inv.UpdatedAt = now
		return repo.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	resp := &dto.FinalizeResponse{
		Inventory:     toInventoryResponse(inv, nil),
		Discrepancies: make([]dto.InventoryItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Discrepancies = append(resp.Discrepancies, toItemResponse(it))
	}
	return resp, nil
}

// Report genera el PDF de discrepancias; sólo para inventarios finalizados.
func (uc *UseCase) Report(ctx context.Context, id string) ([]byte, error) {
	if uc.report == nil {
		return nil, fmt.Errorf("reporte PDF no configurado")
	}
	inv, err := find(ctx, uc.repo.GetByID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != entity.InventoryFinalized {
		return nil, fmt.Errorf("reporte en %s: %w", inv.Status, domain.ErrInvalidState)
	}
	items, err := uc.repo.Items(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	lines := make([]ReportLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, ReportLine{Item: it, ProductName: uc.recordName(ctx, catalog.Products, it.ProductID)})
	}
	return uc.report.RenderDiscrepancies(inv, uc.recordName(ctx, catalog.Warehouses, inv.WarehouseID), lines)
}

// recordName primer nombre disponible del registro; el id si no existe.
func (uc *UseCase) recordName(ctx context.Context, kind, id string) string {
	rec, err := uc.resources.Get(ctx, kind, id, true)
	if err != nil || rec == nil {
		return id
	}
	for _, lang := range []string{"es", "en"} {
		if n := rec.Names[lang]; n != "" {
			return n
		}
	}
	for _, n := range rec.Names {
		return n
	}
	return id
}

func (uc *UseCase) checkItems(ctx context.Context, items []dto.InventoryItemInput) error {
	verr := &domain.ValidationError{}
	seen := map[string]bool{}
	for i, it := range items {
		key := fmt.Sprintf("items[%d]", i)
		if it.ExpectedQuantity.IsNegative() {
			verr.Add(key+".expectedQuantity", "no puede ser negativa")
		}
		if seen[it.ProductID] {
			verr.Add(key+".productId", "producto repetido")
			continue
		}
		seen[it.ProductID] = true
		p, err := uc.resources.Get(ctx, catalog.Products, it.ProductID, false)
		if err != nil {
			return err
		}
		if p == nil {
			verr.Add(key+".productId", "el producto no existe")
		}
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func addItems(ctx context.Context, repo repository.InventoryRepository, inventoryID string, items []dto.InventoryItemInput) error {
	for _, it := range items {
		err := repo.AddItem(ctx, &entity.InventoryItem{
			ID:               uuid.New().String(),
			InventoryID:      inventoryID,
			ProductID:        it.ProductID,
			ExpectedQuantity: it.ExpectedQuantity,
			ScannedQuantity:  decimal.Zero,
		})
		if err != nil {
			return fmt.Errorf("producto %s: %w", it.ProductID, err)
		}
	}
	return nil
}

func find(ctx context.Context, get func(context.Context, string) (*entity.Inventory, error), id string) (*entity.Inventory, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	inv, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func toItemResponse(it *entity.InventoryItem) dto.InventoryItemResponse {
	return dto.InventoryItemResponse{
		ID:               it.ID,
		ProductID:        it.ProductID,
		ExpectedQuantity: it.ExpectedQuantity,
		ScannedQuantity:  it.ScannedQuantity,
		ReceivedQuantity: it.ReceivedQuantity,
		Unexpected:       it.Unexpected,
		Discrepancy:      it.Discrepancy,
	}
}

func toInventoryResponse(inv *entity.Inventory, items []*entity.InventoryItem) dto.InventoryResponse {
	resp := dto.InventoryResponse{
		ID:          inv.ID,
		Kind:        inv.Kind,
		WarehouseID: inv.WarehouseID,
		Number:      inv.Number,
		Status:      inv.Status,
		CreatedBy:   inv.CreatedBy,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
		FinalizedAt: inv.FinalizedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, toItemResponse(it))
	}
	return resp
}
