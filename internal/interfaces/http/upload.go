package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// uploadFormat informa si el tipo MIME se acepta en subidas y el formato de import que le
// corresponde ("" = sólo adjunto).
func uploadFormat(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "application/pdf":
		return "", true
	case "text/csv":
		return usecase.FormatCSV, true
	case "application/vnd.ms-excel", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return usecase.FormatXLSX, true
	case "application/json":
		return usecase.FormatJSON, true
	}
	return "", false
}

type upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// readUpload lee el campo multipart "file": tamaño y tipo se validan antes de leer el contenido.
func readUpload(c *fiber.Ctx, maxBytes int) (*upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, domain.NewValidationError("file", "archivo requerido (multipart, campo file)")
	}
	if maxBytes > 0 && fh.Size > int64(maxBytes) {
		return nil, fmt.Errorf("%s: %w", fh.Filename, domain.ErrFileTooLarge)
	}
	ct := mediaType(fh.Header.Get("Content-Type"), fh.Filename)
	if _, ok := uploadFormat(ct); !ok {
		return nil, fmt.Errorf("%s (%s): %w", fh.Filename, ct, domain.ErrFileType)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", fh.Filename, err)
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, fmt.Errorf("%s: %w", fh.Filename, domain.ErrFileTooLarge)
	}
	return &upload{Name: fh.Filename, ContentType: ct, Data: data}, nil
}

// mediaType tipo declarado sin parámetros; si falta o es genérico, se deduce de la extensión.
func mediaType(header, name string) string {
	ct, _, err := mime.ParseMediaType(header)
	if err != nil || ct == "" || ct == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv":
			return "text/csv"
		case ".xlsx":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case ".json":
			return "application/json"
		}
		ct, _, _ = mime.ParseMediaType(mime.TypeByExtension(filepath.Ext(name)))
	}
	return strings.ToLower(ct)
}

// importFormat formato del import: ?format explícito, la extensión del archivo o el MIME.
func importFormat(c *fiber.Ctx, up *upload) (string, error) {
	if isAttachment(up.ContentType) {
		return "", fmt.Errorf("%s sólo se admite como adjunto: %w", up.ContentType, domain.ErrFileType)
	}
	if f := strings.ToLower(c.Query("format")); f != "" {
		return f, nil
	}
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(up.Name), ".")); ext {
	case usecase.FormatCSV, usecase.FormatXLSX, usecase.FormatJSON:
		return ext, nil
	}
	if f, _ := uploadFormat(up.ContentType); f != "" {
		return f, nil
	}
	return "", fmt.Errorf("%s sólo se admite como adjunto: %w", up.ContentType, domain.ErrFileType)
}

func isAttachment(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}

// queryArgs query-string en orden de llegada.
func queryArgs(c *fiber.Ctx) []query.Arg {
	var args []query.Arg
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		args = append(args, query.Arg{Key: string(k), Value: string(v)})
	})
	return args
}

// parseQuery GET usa la query-string (con coerción); POST el cuerpo JSON estricto.
func parseQuery(c *fiber.Ctx, parser query.Parser, schema *query.Schema) (query.Query, error) {
	var (
		q   query.Query
		err error
	)
	if c.Method() == fiber.MethodGet {
		q, err = parser.ParseArgs(schema, queryArgs(c))
	} else {
		q, err = parser.ParseJSON(schema, c.Body())
	}
	if err != nil {
		return q, err
	}
	if q.IncludeRemoved && !hasPermission(c, PermissionArchiveRead) {
		return q, fmt.Errorf("includeRemoved requiere %s: %w", PermissionArchiveRead, domain.ErrForbidden)
	}
	return q, nil
}

func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}
