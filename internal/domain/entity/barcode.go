package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BarcodeItem producto y multiplicador que aporta una lectura del código (ej. caja x12).
type BarcodeItem struct {
	ProductID string
	Quantity  decimal.Decimal
}

// Barcode código de barras normalizado asociado a uno o varios productos.
type Barcode struct {
	ID        string
	Code      string
	Items     []BarcodeItem
	CreatedAt time.Time
	Seq       int64
}

// Value implementa query.Row.
func (b *Barcode) Value(field string) any {
	switch field {
	case "id":
		return b.ID
	case "code":
		return b.Code
	case "createdAt":
		return b.CreatedAt
	}
	return nil
}

// Sequence implementa query.Row.
func (b *Barcode) Sequence() int64 { return b.Seq }

// IsRemoved implementa query.Row.
func (b *Barcode) IsRemoved() bool { return false }
