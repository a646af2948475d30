package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// TransferUseCase importación y exportación de registros (CSV, XLSX, JSON).
type TransferUseCase struct {
	resources *ResourceUseCase
	codec     RecordCodec
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(resources *ResourceUseCase, codec RecordCodec) *TransferUseCase {
	return &TransferUseCase{resources: resources, codec: codec}
}

// Import decodifica el archivo y crea cada candidato válido con las mismas reglas que Create.
// Las filas rechazadas (formato o reglas) se reportan y la importación continúa.
func (uc *TransferUseCase) Import(ctx context.Context, schema *query.Schema, format string, data []byte) (dto.ImportResult, error) {
	res := dto.ImportResult{Failures: []dto.RowFailure{}}
	if err := checkFormat(format); err != nil {
		return res, err
	}
	rows, failures, err := uc.codec.Decode(schema, format, data)
	if err != nil {
		return res, err
	}
	res.Failures = append(res.Failures, failures...)
	for _, row := range rows {
		if _, err := uc.resources.Create(ctx, schema, row.Values); err != nil {
			if !isBusinessError(err) {
				return res, fmt.Errorf("import fila %d: %w", row.Row, err)
			}
			res.Failures = append(res.Failures, dto.RowFailure{Row: row.Row, Reason: err.Error()})
			continue
		}
		res.Imported++
	}
	sort.SliceStable(res.Failures, func(i, j int) bool { return res.Failures[i].Row < res.Failures[j].Row })
	return res, nil
}

// Export codifica todos los registros que cumplen la consulta (se ignora la paginación).
func (uc *TransferUseCase) Export(ctx context.Context, q query.Query, format string) ([]byte, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	recs, _, err := uc.resources.List(ctx, q.WithFull())
	if err != nil {
		return nil, err
	}
	return uc.codec.Encode(q.Schema, format, recs)
}

func checkFormat(format string) error {
	switch format {
	case FormatCSV, FormatXLSX, FormatJSON:
		return nil
	}
	return domain.NewValidationError("format", "formatos soportados: csv, xlsx, json")
}
