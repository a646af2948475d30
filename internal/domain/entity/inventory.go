package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de inventario.
const (
	InventoryKindCount       = "count"       // conteo físico de bodega
	InventoryKindTransaction = "transaction" // recepción de mercancía contra un documento
)

// Estados del inventario: draft -> counting -> finalized.
const (
	InventoryDraft     = "draft"
	InventoryCounting  = "counting"
	InventoryFinalized = "finalized"
)

// Inventory documento de conteo o recepción de una bodega.
type Inventory struct {
	ID          string
	Kind        string
	WarehouseID string
	Number      string
	Status      string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FinalizedAt *time.Time
	Seq         int64
}

// InventoryItem línea del inventario. Unexpected marca productos leídos que no estaban esperados.
type InventoryItem struct {
	ID               string
	InventoryID      string
	ProductID        string
	ExpectedQuantity decimal.Decimal
	ScannedQuantity  decimal.Decimal
	ReceivedQuantity *decimal.Decimal
	Unexpected       bool
	Discrepancy      *decimal.Decimal // scanned - expected, al finalizar
}

// Value implementa query.Row.
func (i *Inventory) Value(field string) any {
	switch field {
	case "id":
		return i.ID
	case "kind":
		return i.Kind
	case "number":
		return i.Number
	case "warehouseId":
		return i.WarehouseID
	case "status":
		return i.Status
	case "createdAt":
		return i.CreatedAt
	case "finalizedAt":
		if i.FinalizedAt == nil {
			return nil
		}
		return *i.FinalizedAt
	}
	return nil
}

// Sequence implementa query.Row.
func (i *Inventory) Sequence() int64 { return i.Seq }

// IsRemoved implementa query.Row.
func (i *Inventory) IsRemoved() bool { return false }
