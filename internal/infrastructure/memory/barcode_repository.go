package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.BarcodeRepository = (*BarcodeRepo)(nil)

// BarcodeRepo códigos de barras en memoria.
type BarcodeRepo struct {
	s *Store
}

// NewBarcodeRepository construye el adaptador.
func NewBarcodeRepository(s *Store) *BarcodeRepo {
	return &BarcodeRepo{s: s}
}

func cloneBarcode(b *entity.Barcode) *entity.Barcode {
	c := *b
	c.Items = slices.Clone(b.Items)
	return &c
}

// Create persiste el código; falla con ErrDuplicate si ya existe.
func (r *BarcodeRepo) Create(ctx context.Context, b *entity.Barcode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cur := range r.s.barcodes {
		if cur.Code == b.Code {
			return domain.ErrDuplicate
		}
	}
	b.Seq = r.s.nextSeq()
	r.s.barcodes[b.ID] = cloneBarcode(b)
	return nil
}

// GetByCode busca por código normalizado.
func (r *BarcodeRepo) GetByCode(ctx context.Context, code string) (*entity.Barcode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.barcodes {
		if b.Code == code {
			return cloneBarcode(b), nil
		}
	}
	return nil, nil
}

// Delete elimina un código por ID.
func (r *BarcodeRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.barcodes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.barcodes, id)
	return nil
}

// List lista códigos con el motor de consultas.
func (r *BarcodeRepo) List(ctx context.Context, q query.Query) ([]*entity.Barcode, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	rows := make([]*entity.Barcode, 0, len(r.s.barcodes))
	for _, b := range r.s.barcodes {
		rows = append(rows, cloneBarcode(b))
	}
	r.s.mu.RUnlock()

	page, total := query.Apply(rows, q)
	return page, total, nil
}

// CountByProduct cuenta los códigos que incluyen el producto en sus ítems.
func (r *BarcodeRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, b := range r.s.barcodes {
		if slices.ContainsFunc(b.Items, func(it entity.BarcodeItem) bool { return it.ProductID == productID }) {
			n++
		}
	}
	return n, nil
}
