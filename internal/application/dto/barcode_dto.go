package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BarcodeItemInput producto y multiplicador de un código.
type BarcodeItemInput struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateBarcodeRequest alta de un código de barras.
type CreateBarcodeRequest struct {
	Code  string             `json:"code" validate:"required,max=128"`
	Items []BarcodeItemInput `json:"items" validate:"required,min=1,dive"`
}

// BarcodeResponse salida de un código.
type BarcodeResponse struct {
	ID        string             `json:"id"`
	Code      string             `json:"code"`
	Items     []BarcodeItemInput `json:"items"`
	CreatedAt time.Time          `json:"createdAt"`
}
