package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// BarcodeRepository define el puerto de persistencia para Barcode (DIP).
// El código se guarda ya normalizado; GetByCode devuelve nil, nil si no existe.
type BarcodeRepository interface {
	Create(ctx context.Context, b *entity.Barcode) error
	GetByCode(ctx context.Context, code string) (*entity.Barcode, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q query.Query) ([]*entity.Barcode, int, error)
	// CountByProduct cuenta los códigos con al menos un ítem del producto.
	CountByProduct(ctx context.Context, productID string) (int, error)
}
