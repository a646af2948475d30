// Package codec convierte registros genéricos desde/hacia CSV (gocsv), XLSX (excelize) y JSON.
package codec

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

var _ usecase.RecordCodec = (*Codec)(nil)

// namesPrefix cabecera de las columnas de idioma en formatos planos: names.es, names.en...
const namesPrefix = "names."

// serverColumns columnas que se exportan pero se ignoran al importar.
var serverColumns = map[string]bool{
	catalog.FieldID:        true,
	catalog.FieldCreatedAt: true,
	catalog.FieldUpdatedAt: true,
	"removed":              true,
}

// Codec implementa usecase.RecordCodec.
type Codec struct {
	languages []string // columnas names.<lang> mínimas en la exportación
}

// New construye el codec con los idiomas activos.
func New(languages []string) *Codec {
	return &Codec{languages: slices.Clone(languages)}
}

// Decode lee el archivo completo y devuelve los candidatos tipados. Una cabecera desconocida
// rechaza el archivo; un valor mal formado rechaza sólo su fila.
func (c *Codec) Decode(schema *query.Schema, format string, data []byte) ([]dto.ImportRow, []dto.RowFailure, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	switch format {
	case usecase.FormatCSV:
		cells, err := readCSV(data)
		if err != nil {
			return nil, nil, err
		}
		return decodeCells(schema, cells)
	case usecase.FormatXLSX:
		cells, err := readXLSX(data)
		if err != nil {
			return nil, nil, err
		}
		return decodeCells(schema, cells)
	case usecase.FormatJSON:
		return decodeJSON(data)
	}
	return nil, nil, domain.NewValidationError("format", "formato no soportado")
}

// Encode escribe los registros con todas las columnas del esquema.
func (c *Codec) Encode(schema *query.Schema, format string, records []*entity.Record) ([]byte, error) {
	switch format {
	case usecase.FormatCSV:
		header, rows := c.table(schema, records)
		return writeCSV(header, rows)
	case usecase.FormatXLSX:
		header, rows := c.table(schema, records)
		return writeXLSX(schema.Name, header, rows)
	case usecase.FormatJSON:
		return encodeJSON(records)
	}
	return nil, domain.NewValidationError("format", "formato no soportado")
}

// table aplana los registros: una columna por campo, names expandido por idioma.
func (c *Codec) table(schema *query.Schema, records []*entity.Record) ([]string, [][]string) {
	langs := c.exportLanguages(records)
	var header []string
	for _, f := range schema.Fields {
		if f.Name == catalog.FieldNames {
			for _, l := range langs {
				header = append(header, namesPrefix+l)
			}
			continue
		}
		header = append(header, f.Name)
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, 0, len(header))
		for _, f := range schema.Fields {
			if f.Name == catalog.FieldNames {
				for _, l := range langs {
					row = append(row, rec.Names[l])
				}
				continue
			}
			row = append(row, f.FormatString(rec.Value(f.Name)))
		}
		rows = append(rows, row)
	}
	return header, rows
}

// exportLanguages idiomas activos más cualquier otro presente en los datos, sin perder textos.
func (c *Codec) exportLanguages(records []*entity.Record) []string {
	langs := slices.Clone(c.languages)
	var extra []string
	for _, rec := range records {
		for l := range rec.Names {
			if !slices.Contains(langs, l) && !slices.Contains(extra, l) {
				extra = append(extra, l)
			}
		}
	}
	sort.Strings(extra)
	return append(langs, extra...)
}

// decodeCells convierte filas de texto (cabecera -> celda) en candidatos.
func decodeCells(schema *query.Schema, cells []map[string]string) ([]dto.ImportRow, []dto.RowFailure, error) {
	if err := checkHeader(schema, cells); err != nil {
		return nil, nil, err
	}
	var (
		rows     []dto.ImportRow
		failures []dto.RowFailure
	)
	for i, cell := range cells {
		n := i + 1
		if blank(cell) {
			continue
		}
		values, err := rowValues(schema, cell)
		if err != nil {
			failures = append(failures, dto.RowFailure{Row: n, Reason: err.Error()})
			continue
		}
		rows = append(rows, dto.ImportRow{Row: n, Values: values})
	}
	return rows, failures, nil
}

func checkHeader(schema *query.Schema, cells []map[string]string) error {
	verr := &domain.ValidationError{}
	for _, cell := range cells {
		for col := range cell {
			if serverColumns[col] || strings.HasPrefix(col, namesPrefix) {
				continue
			}
			if _, ok := schema.Field(col); !ok {
				verr.Add(col, "columna desconocida")
			}
		}
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func rowValues(schema *query.Schema, cell map[string]string) (map[string]any, error) {
	values := map[string]any{}
	names := map[string]string{}
	cols := make([]string, 0, len(cell))
	for col := range cell {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		raw := strings.TrimSpace(cell[col])
		if raw == "" || serverColumns[col] {
			continue
		}
		if lang, ok := strings.CutPrefix(col, namesPrefix); ok {
			names[lang] = raw
			continue
		}
		f, _ := schema.Field(col)
		v, err := f.ParseString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", col, err)
		}
		values[col] = v
	}
	if len(names) > 0 {
		values[catalog.FieldNames] = names
	}
	return values, nil
}

func blank(cell map[string]string) bool {
	for _, v := range cell {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
