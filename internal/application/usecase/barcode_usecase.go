package usecase

import (
	"context"
	"fmt"
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

// BarcodeUseCase alta, baja y listado de códigos de barras.
type BarcodeUseCase struct {
	repo      repository.BarcodeRepository
	resources repository.ResourceRepository
}

// NewBarcodeUseCase construye el caso de uso.
func NewBarcodeUseCase(repo repository.BarcodeRepository, resources repository.ResourceRepository) *BarcodeUseCase {
	return &BarcodeUseCase{repo: repo, resources: resources}
}

// List lista códigos.
func (uc *BarcodeUseCase) List(ctx context.Context, q query.Query) ([]dto.BarcodeResponse, int, error) {
	list, total, err := uc.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.BarcodeResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBarcodeResponse(b))
	}
	return out, total, nil
}

// Create normaliza el código y valida que los productos existan. Quantity cero equivale a 1.
func (uc *BarcodeUseCase) Create(ctx context.Context, in dto.CreateBarcodeRequest) (*dto.BarcodeResponse, error) {
	code := barcode.Normalize(in.Code)
	if code == "" {
		return nil, domain.NewValidationError("code", "requerido")
	}
	if !barcode.Valid(code) {
		return nil, domain.NewValidationError("code", "dígito verificador inválido")
	}
	verr := &domain.ValidationError{}
	items := make([]entity.BarcodeItem, 0, len(in.Items))
	for i, it := range in.Items {
		qty := it.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		if qty.IsNegative() {
			verr.Add(itemKey(i, "quantity"), "debe ser positiva")
			continue
		}
		p, err := uc.resources.Get(ctx, catalog.Products, it.ProductID, false)
		if err != nil {
			return nil, err
		}
		if p == nil {
			verr.Add(itemKey(i, "productId"), "el producto no existe")
			continue
		}
		items = append(items, entity.BarcodeItem{ProductID: it.ProductID, Quantity: qty})
	}
	if !verr.Empty() {
		return nil, verr
	}
	b := &entity.Barcode{ID: uuid.New().String(), Code: code, Items: items, CreatedAt: time.Now().UTC()}
	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	resp := toBarcodeResponse(b)
	return &resp, nil
}

// Remove elimina códigos por id.
func (uc *BarcodeUseCase) Remove(ctx context.Context, ids []string) (dto.RemoveResult, error) {
	res := dto.RemoveResult{Failures: []dto.Failure{}}
	for _, id := range dedupe(ids) {
		if _, err := uuid.Parse(id); err != nil {
			res.Failures = append(res.Failures, dto.Failure{ID: id, Reason: domain.ErrNotFound.Error()})
			continue
		}
		if err := uc.repo.Delete(ctx, id); err != nil {
			if !isBusinessError(err) {
				return res, err
			}
			res.Failures = append(res.Failures, dto.Failure{ID: id, Reason: err.Error()})
			continue
		}
		res.Removed++
	}
	return res, nil
}

func toBarcodeResponse(b *entity.Barcode) dto.BarcodeResponse {
	items := make([]dto.BarcodeItemInput, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, dto.BarcodeItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return dto.BarcodeResponse{ID: b.ID, Code: b.Code, Items: items, CreatedAt: b.CreatedAt}
}

func itemKey(i int, field string) string {
	return fmt.Sprintf("items[%d].%s", i, field)
}
