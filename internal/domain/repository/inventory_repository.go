package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// InventoryRepository define el puerto de persistencia para inventarios y sus líneas (DIP).
// Los incrementos son atómicos en el store; los bloqueos sólo tienen efecto dentro de una tx.
type InventoryRepository interface {
	Create(ctx context.Context, inv *entity.Inventory) error
	GetByID(ctx context.Context, id string) (*entity.Inventory, error)
	// GetForShare bloquea la fila en modo compartido (SELECT ... FOR SHARE): varios scans concurrentes, ningún finalize.
	GetForShare(ctx context.Context, id string) (*entity.Inventory, error)
	// GetForUpdate bloquea la fila en exclusiva (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Inventory, error)
	Update(ctx context.Context, inv *entity.Inventory) error
	List(ctx context.Context, q query.Query) ([]*entity.Inventory, int, error)
	CountByWarehouse(ctx context.Context, warehouseID string) (int, error)

	Items(ctx context.Context, inventoryID string) ([]*entity.InventoryItem, error)
	// AddItem falla con domain.ErrDuplicate si el producto ya tiene línea en el inventario.
	AddItem(ctx context.Context, item *entity.InventoryItem) error
	// IncrementScanned suma quantity a la línea del producto; si no existe la crea como inesperada.
	IncrementScanned(ctx context.Context, inventoryID, productID string, quantity decimal.Decimal) (*entity.InventoryItem, error)
	// IncrementReceived suma quantity a receivedQuantity; nil, nil si la línea no pertenece al inventario.
	IncrementReceived(ctx context.Context, inventoryID, itemID string, quantity decimal.Decimal) (*entity.InventoryItem, error)
	SetDiscrepancies(ctx context.Context, items []*entity.InventoryItem) error
	// CountByProduct cuenta las líneas de cualquier inventario que apuntan al producto.
	CountByProduct(ctx context.Context, productID string) (int, error)
}
