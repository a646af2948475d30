package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.BarcodeRepository = (*BarcodeRepo)(nil)

const barcodeColumns = `id::text, code, items, created_at, seq`

// barcodeItemJSON forma de cada elemento de la columna items.
type barcodeItemJSON struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// BarcodeRepo códigos de barras sobre PostgreSQL; los productos viajan en items (JSONB).
type BarcodeRepo struct {
	q Querier
}

// NewBarcodeRepository construye el adaptador.
func NewBarcodeRepository(q Querier) *BarcodeRepo {
	return &BarcodeRepo{q: q}
}

// Create persiste el código; ErrDuplicate si ya existe.
func (r *BarcodeRepo) Create(ctx context.Context, b *entity.Barcode) error {
	items := make([]barcodeItemJSON, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, barcodeItemJSON{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal barcode items: %w", err)
	}
	err = r.q.QueryRow(ctx,
		`INSERT INTO barcodes (id, code, items, created_at) VALUES ($1, $2, $3, $4) RETURNING seq`,
		b.ID, b.Code, raw, b.CreatedAt,
	).Scan(&b.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert barcode: %w", err)
	}
	return nil
}

// GetByCode busca por código normalizado.
func (r *BarcodeRepo) GetByCode(ctx context.Context, code string) (*entity.Barcode, error) {
	b, err := scanBarcode(r.q.QueryRow(ctx, `SELECT `+barcodeColumns+` FROM barcodes WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get barcode: %w", err)
	}
	return b, nil
}

// Delete elimina por id; ErrNotFound si no existe.
func (r *BarcodeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM barcodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete barcode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista códigos con el motor de consultas.
func (r *BarcodeRepo) List(ctx context.Context, q query.Query) ([]*entity.Barcode, int, error) {
	s := compileSelect(q, false)
	total, err := count(ctx, r.q, "barcodes", s)
	if err != nil {
		return nil, 0, fmt.Errorf("count barcodes: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+barcodeColumns+` FROM barcodes`+s.Where+s.Order+s.Page, s.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list barcodes: %w", err)
	}
	defer rows.Close()

	var list []*entity.Barcode
	for rows.Next() {
		b, err := scanBarcode(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan barcode: %w", err)
		}
		list = append(list, b)
	}
	return list, total, rows.Err()
}

func scanBarcode(row pgx.Row) (*entity.Barcode, error) {
	var (
		b   entity.Barcode
		raw []byte
	)
	if err := row.Scan(&b.ID, &b.Code, &raw, &b.CreatedAt, &b.Seq); err != nil {
		return nil, err
	}
	var items []barcodeItemJSON
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("barcode items: %w", err)
	}
	for _, it := range items {
		b.Items = append(b.Items, entity.BarcodeItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return &b, nil
}

// CountByProduct cuenta los códigos con algún elemento de items del producto.
func (r *BarcodeRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	n, err := countWhere(ctx, r.q,
		`SELECT count(*) FROM barcodes WHERE items @> jsonb_build_array(jsonb_build_object('productId', $1::text))`, productID)
	if err != nil {
		return 0, fmt.Errorf("count barcodes by product: %w", err)
	}
	return n, nil
}
