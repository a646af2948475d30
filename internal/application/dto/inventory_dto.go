package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItemInput línea esperada al crear o ampliar un inventario.
type InventoryItemInput struct {
	ProductID        string          `json:"productId" validate:"required,uuid"`
	ExpectedQuantity decimal.Decimal `json:"expectedQuantity"`
}

// CreateInventoryRequest alta de un inventario en draft.
type CreateInventoryRequest struct {
	Kind        string               `json:"kind" validate:"omitempty,oneof=count transaction"`
	WarehouseID string               `json:"warehouseId" validate:"required,uuid"`
	Number      string               `json:"number" validate:"omitempty,max=50"`
	Items       []InventoryItemInput `json:"items" validate:"omitempty,dive"`
}

// AddItemsRequest agrega líneas esperadas (sólo en draft).
type AddItemsRequest struct {
	InventoryID string               `json:"inventoryId" validate:"required,uuid"`
	Items       []InventoryItemInput `json:"items" validate:"required,min=1,dive"`
}

// InventoryIDRequest cuerpo de start y finalize.
type InventoryIDRequest struct {
	InventoryID string `json:"inventoryId" validate:"required,uuid"`
}

// ScanRequest lectura de un código; Quantity por defecto 1.
type ScanRequest struct {
	InventoryID string           `json:"inventoryId" validate:"required,uuid"`
	Code        string           `json:"code" validate:"required,max=128"`
	Quantity    *decimal.Decimal `json:"quantity"`
}

// ReceiveRequest recepción sobre una línea.
type ReceiveRequest struct {
	InventoryID string          `json:"inventoryId" validate:"required,uuid"`
	ItemID      string          `json:"itemId" validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Resultados de un scan.
const (
	ScanMatched    = "matched"
	ScanUnexpected = "unexpected"
	ScanNotFound   = "not_found"
)

// InventoryItemResponse línea del inventario.
type InventoryItemResponse struct {
	ID               string           `json:"id"`
	ProductID        string           `json:"productId"`
	ExpectedQuantity decimal.Decimal  `json:"expectedQuantity"`
	ScannedQuantity  decimal.Decimal  `json:"scannedQuantity"`
	ReceivedQuantity *decimal.Decimal `json:"receivedQuantity,omitempty"`
	Unexpected       bool             `json:"unexpected"`
	Discrepancy      *decimal.Decimal `json:"discrepancy,omitempty"`
}

// InventoryResponse inventario con sus líneas (Items vacío en listados).
type InventoryResponse struct {
	ID          string                  `json:"id"`
	Kind        string                  `json:"kind"`
	WarehouseID string                  `json:"warehouseId"`
	Number      string                  `json:"number"`
	Status      string                  `json:"status"`
	CreatedBy   string                  `json:"createdBy"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
	FinalizedAt *time.Time              `json:"finalizedAt,omitempty"`
	Items       []InventoryItemResponse `json:"items,omitempty"`
}

// ScanResponse resultado de un scan: matched, unexpected o not_found (sin cambios).
type ScanResponse struct {
	Outcome string                  `json:"outcome"`
	Code    string                  `json:"code"`
	Items   []InventoryItemResponse `json:"items"`
}

// FinalizeResponse inventario finalizado y todas sus líneas con la discrepancia calculada.
type FinalizeResponse struct {
	Inventory     InventoryResponse       `json:"inventory"`
	Discrepancies []InventoryItemResponse `json:"discrepancies"`
}
