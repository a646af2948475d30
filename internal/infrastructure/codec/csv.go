package codec

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/jhoicas/backoffice-api/internal/domain"
)

func readCSV(data []byte) ([]map[string]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	cells, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewValidationError("file", fmt.Sprintf("CSV inválido: %v", err))
	}
	return cells, nil
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
