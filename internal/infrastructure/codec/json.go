package codec

import (
	"bytes"
	"encoding/json"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// decodeJSON espera un arreglo de objetos con la misma forma que devuelve get.
func decodeJSON(data []byte) ([]dto.ImportRow, []dto.RowFailure, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil, domain.NewValidationError("file", "se esperaba un arreglo JSON de objetos")
	}
	var (
		rows     []dto.ImportRow
		failures []dto.RowFailure
	)
	for i, raw := range items {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var values map[string]any
		if err := dec.Decode(&values); err != nil || values == nil {
			failures = append(failures, dto.RowFailure{Row: i + 1, Reason: "se esperaba un objeto JSON"})
			continue
		}
		rows = append(rows, dto.ImportRow{Row: i + 1, Values: values})
	}
	return rows, failures, nil
}

func encodeJSON(records []*entity.Record) ([]byte, error) {
	return json.Marshal(dto.RecordMaps(records))
}
