package inventory

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el repositorio atado a esa tx.
// Garantiza atomicidad para scan, receive y finalize.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.InventoryRepository) error) error
}

// ReportLine línea del reporte de discrepancias con el nombre de producto resuelto.
type ReportLine struct {
	Item        *entity.InventoryItem
	ProductName string
}

// ReportRenderer genera el PDF de discrepancias de un inventario finalizado.
type ReportRenderer interface {
	RenderDiscrepancies(inv *entity.Inventory, warehouse string, lines []ReportLine) ([]byte, error)
}
