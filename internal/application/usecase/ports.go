package usecase

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// Formatos de import/export.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// RecordCodec convierte registros desde/hacia archivos planos (CSV, XLSX) o JSON.
// Decode no valida reglas de negocio: devuelve candidatos tipados y los errores de formato por fila.
type RecordCodec interface {
	Decode(schema *query.Schema, format string, data []byte) ([]dto.ImportRow, []dto.RowFailure, error)
	Encode(schema *query.Schema, format string, records []*entity.Record) ([]byte, error)
}

// FileStorage guarda adjuntos y devuelve el nombre con el que quedaron almacenados.
type FileStorage interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}
