package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

const (
	inventoryColumns = `id::text, kind, warehouse_id::text, number, status, created_by, created_at, updated_at, finalized_at, seq`
	itemColumns      = `id::text, inventory_id::text, product_id::text, expected_quantity, scanned_quantity, received_quantity, unexpected, discrepancy`
)

// InventoryRepo inventarios y líneas sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Create persiste el inventario.
func (r *InventoryRepo) Create(ctx context.Context, inv *entity.Inventory) error {
	query := `
		INSERT INTO inventories (id, kind, warehouse_id, number, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		inv.ID, inv.Kind, inv.WarehouseID, inv.Number, inv.Status, inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.Seq)
	if err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

// GetByID obtiene un inventario por ID.
func (r *InventoryRepo) GetByID(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.get(ctx, id, "")
}

// GetForShare bloquea la fila en modo compartido (SELECT ... FOR SHARE).
func (r *InventoryRepo) GetForShare(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.get(ctx, id, " FOR SHARE")
}

// GetForUpdate bloquea la fila para update (SELECT ... FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Inventory, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *InventoryRepo) get(ctx context.Context, id, lock string) (*entity.Inventory, error) {
	inv, err := scanInventory(r.q.QueryRow(ctx, `SELECT `+inventoryColumns+` FROM inventories WHERE id = $1`+lock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return inv, nil
}

// Update actualiza estado y fechas.
func (r *InventoryRepo) Update(ctx context.Context, inv *entity.Inventory) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventories SET status = $2, updated_at = $3, finalized_at = $4 WHERE id = $1`,
		inv.ID, inv.Status, inv.UpdatedAt, inv.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista inventarios con el motor de consultas.
func (r *InventoryRepo) List(ctx context.Context, q query.Query) ([]*entity.Inventory, int, error) {
	s := compileSelect(q, false)
	total, err := count(ctx, r.q, "inventories", s)
	if err != nil {
		return nil, 0, fmt.Errorf("count inventories: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+inventoryColumns+` FROM inventories`+s.Where+s.Order+s.Page, s.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventories: %w", err)
	}
	defer rows.Close()

	var list []*entity.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

// Items devuelve las líneas en orden de alta.
func (r *InventoryRepo) Items(ctx context.Context, inventoryID string) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE inventory_id = $1 ORDER BY seq`, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// AddItem agrega una línea esperada; ErrDuplicate si el producto ya tiene línea.
func (r *InventoryRepo) AddItem(ctx context.Context, item *entity.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	query := `
		INSERT INTO inventory_items (id, inventory_id, product_id, expected_quantity, scanned_quantity, unexpected)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.InventoryID, item.ProductID, item.ExpectedQuantity, item.ScannedQuantity, item.Unexpected,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

// IncrementScanned suma quantity en una sola sentencia; sin línea previa inserta una inesperada.
func (r *InventoryRepo) IncrementScanned(ctx context.Context, inventoryID, productID string, quantity decimal.Decimal) (*entity.InventoryItem, error) {
	query := `
		INSERT INTO inventory_items (id, inventory_id, product_id, expected_quantity, scanned_quantity, unexpected)
		VALUES ($1, $2, $3, 0, $4, true)
		ON CONFLICT (inventory_id, product_id)
		DO UPDATE SET scanned_quantity = inventory_items.scanned_quantity + EXCLUDED.scanned_quantity
		RETURNING ` + itemColumns
	it, err := scanItem(r.q.QueryRow(ctx, query, uuid.NewString(), inventoryID, productID, quantity))
	if err != nil {
		return nil, fmt.Errorf("increment scanned: %w", err)
	}
	return it, nil
}

// IncrementReceived suma quantity a received_quantity; nil, nil si la línea no es del inventario.
func (r *InventoryRepo) IncrementReceived(ctx context.Context, inventoryID, itemID string, quantity decimal.Decimal) (*entity.InventoryItem, error) {
	query := `
		UPDATE inventory_items
		SET received_quantity = COALESCE(received_quantity, 0) + $3
		WHERE inventory_id = $1 AND id = $2
		RETURNING ` + itemColumns
	it, err := scanItem(r.q.QueryRow(ctx, query, inventoryID, itemID, quantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("increment received: %w", err)
	}
	return it, nil
}

// SetDiscrepancies persiste la discrepancia de cada línea en un solo batch.
func (r *InventoryRepo) SetDiscrepancies(ctx context.Context, items []*entity.InventoryItem) error {
	b := &pgx.Batch{}
	for _, it := range items {
		b.Queue(`UPDATE inventory_items SET discrepancy = $2 WHERE id = $1`, it.ID, it.Discrepancy)
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("set discrepancies: %w", err)
	}
	return nil
}

func scanInventory(row pgx.Row) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := row.Scan(&inv.ID, &inv.Kind, &inv.WarehouseID, &inv.Number, &inv.Status, &inv.CreatedBy,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.FinalizedAt, &inv.Seq)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(&it.ID, &it.InventoryID, &it.ProductID, &it.ExpectedQuantity, &it.ScannedQuantity,
		&it.ReceivedQuantity, &it.Unexpected, &it.Discrepancy)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// CountByWarehouse cuenta los inventarios de la bodega, en cualquier estado.
func (r *InventoryRepo) CountByWarehouse(ctx context.Context, warehouseID string) (int, error) {
	n, err := countWhere(ctx, r.q, `SELECT count(*) FROM inventories WHERE warehouse_id::text = $1`, warehouseID)
	if err != nil {
		return 0, fmt.Errorf("count inventories by warehouse: %w", err)
	}
	return n, nil
}

// CountByProduct cuenta las líneas de inventario del producto.
func (r *InventoryRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	n, err := countWhere(ctx, r.q, `SELECT count(*) FROM inventory_items WHERE product_id::text = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("count inventory items by product: %w", err)
	}
	return n, nil
}
