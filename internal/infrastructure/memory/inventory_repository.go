package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo inventarios en memoria. Los bloqueos de fila los da TxRunner (txMu).
type InventoryRepo struct {
	s *Store
}

// NewInventoryRepository construye el adaptador.
func NewInventoryRepository(s *Store) *InventoryRepo {
	return &InventoryRepo{s: s}
}

func cloneInventory(i *entity.Inventory) *entity.Inventory {
	c := *i
	if i.FinalizedAt != nil {
		t := *i.FinalizedAt
		c.FinalizedAt = &t
	}
	return &c
}

func cloneItem(it *entity.InventoryItem) *entity.InventoryItem {
	c := *it
	if it.ReceivedQuantity != nil {
		q := *it.ReceivedQuantity
		c.ReceivedQuantity = &q
	}
	if it.Discrepancy != nil {
		d := *it.Discrepancy
		c.Discrepancy = &d
	}
	return &c
}

// Create persiste el inventario.
func (r *InventoryRepo) Create(ctx context.Context, inv *entity.Inventory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv.Seq = r.s.nextSeq()
	r.s.inventory[inv.ID] = cloneInventory(inv)
	return nil
}

// GetByID obtiene un inventario por ID.
func (r *InventoryRepo) GetByID(ctx context.Context, id string) (*entity.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.inventory[id]
	if !ok {
		return nil, nil
	}
	return cloneInventory(inv), nil
}

// GetForShare en memoria equivale a GetByID: la exclusión la da TxRunner.
func (r *InventoryRepo) GetForShare(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.GetByID(ctx, id)
}

// GetForUpdate en memoria equivale a GetByID: la exclusión la da TxRunner.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.GetByID(ctx, id)
}

// Update actualiza estado y fechas del inventario.
func (r *InventoryRepo) Update(ctx context.Context, inv *entity.Inventory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.inventory[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := cloneInventory(inv)
	next.Seq = cur.Seq
	r.s.inventory[inv.ID] = next
	return nil
}

// List lista inventarios con el motor de consultas.
func (r *InventoryRepo) List(ctx context.Context, q query.Query) ([]*entity.Inventory, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	rows := make([]*entity.Inventory, 0, len(r.s.inventory))
	for _, inv := range r.s.inventory {
		rows = append(rows, cloneInventory(inv))
	}
	r.s.mu.RUnlock()

	page, total := query.Apply(rows, q)
	return page, total, nil
}

// Items devuelve las líneas en orden de alta.
func (r *InventoryRepo) Items(ctx context.Context, inventoryID string) ([]*entity.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.InventoryItem, 0, len(r.s.items[inventoryID]))
	for _, it := range r.s.items[inventoryID] {
		out = append(out, cloneItem(it))
	}
	return out, nil
}

// AddItem agrega una línea; un producto sólo puede tener una línea por inventario.
func (r *InventoryRepo) AddItem(ctx context.Context, item *entity.InventoryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items[item.InventoryID] {
		if it.ProductID == item.ProductID {
			return domain.ErrDuplicate
		}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	r.s.items[item.InventoryID] = append(r.s.items[item.InventoryID], cloneItem(item))
	return nil
}

// IncrementScanned suma quantity o crea una línea inesperada.
func (r *InventoryRepo) IncrementScanned(ctx context.Context, inventoryID, productID string, quantity decimal.Decimal) (*entity.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items[inventoryID] {
		if it.ProductID == productID {
			it.ScannedQuantity = it.ScannedQuantity.Add(quantity)
			return cloneItem(it), nil
		}
	}
	it := &entity.InventoryItem{
		ID:               uuid.NewString(),
		InventoryID:      inventoryID,
		ProductID:        productID,
		ExpectedQuantity: decimal.Zero,
		ScannedQuantity:  quantity,
		Unexpected:       true,
	}
	r.s.items[inventoryID] = append(r.s.items[inventoryID], it)
	return cloneItem(it), nil
}

// IncrementReceived suma quantity a receivedQuantity de la línea.
func (r *InventoryRepo) IncrementReceived(ctx context.Context, inventoryID, itemID string, quantity decimal.Decimal) (*entity.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items[inventoryID] {
		if it.ID == itemID {
			q := quantity
			if it.ReceivedQuantity != nil {
				q = it.ReceivedQuantity.Add(quantity)
			}
			it.ReceivedQuantity = &q
			return cloneItem(it), nil
		}
	}
	return nil, nil
}

// SetDiscrepancies persiste la discrepancia calculada de cada línea.
func (r *InventoryRepo) SetDiscrepancies(ctx context.Context, items []*entity.InventoryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byID := make(map[string]*entity.InventoryItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, list := range r.s.items {
		for _, it := range list {
			if upd, ok := byID[it.ID]; ok && upd.Discrepancy != nil {
				d := *upd.Discrepancy
				it.Discrepancy = &d
			}
		}
	}
	return nil
}

// CountByWarehouse cuenta los inventarios de la bodega, en cualquier estado.
func (r *InventoryRepo) CountByWarehouse(ctx context.Context, warehouseID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, inv := range r.s.inventory {
		if inv.WarehouseID == warehouseID {
			n++
		}
	}
	return n, nil
}

// CountByProduct cuenta las líneas de inventario del producto.
func (r *InventoryRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, list := range r.s.items {
		for _, it := range list {
			if it.ProductID == productID {
				n++
			}
		}
	}
	return n, nil
}
