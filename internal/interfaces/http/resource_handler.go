package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

const localSchema = "schema"

// ResourceHandler superficie genérica /api/:resource/* de los recursos del catálogo (protegido).
type ResourceHandler struct {
	uc        *usecase.ResourceUseCase
	transfer  *usecase.TransferUseCase
	storage   usecase.FileStorage
	parser    query.Parser
	maxUpload int
}

// NewResourceHandler construye el handler.
func NewResourceHandler(uc *usecase.ResourceUseCase, transfer *usecase.TransferUseCase, storage usecase.FileStorage, parser query.Parser, maxUpload int) *ResourceHandler {
	return &ResourceHandler{uc: uc, transfer: transfer, storage: storage, parser: parser, maxUpload: maxUpload}
}

// ResolveSchema carga el esquema de :resource; 404 si el recurso no existe.
func ResolveSchema(c *fiber.Ctx) error {
	schema, ok := catalog.Lookup(c.Params("resource"))
	if !ok {
		return fail(c, fmt.Errorf("recurso %q: %w", c.Params("resource"), domain.ErrNotFound))
	}
	c.Locals(localSchema, schema)
	return c.Next()
}

func schemaOf(c *fiber.Ctx) *query.Schema {
	s, _ := c.Locals(localSchema).(*query.Schema)
	return s
}

// List godoc
// @Summary      Listar registros
// @Description  GET usa filters[...], sorters[...], pagination[...] en la query-string; POST el cuerpo JSON.
// @Tags         resources
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        resource  path  string  true  "Recurso (products, categories, ...)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/{resource}/get [get]
// @Router       /api/{resource}/get [post]
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	schema := schemaOf(c)
	q, err := parseQuery(c, h.parser, schema)
	if err != nil {
		return fail(c, err)
	}
	recs, total, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}
	return listed(c, schema.Name, dto.RecordMaps(recs), total)
}

// GetByID godoc
// @Summary      Obtener registro por ID
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        resource  path  string  true  "Recurso"
// @Param        id        path  string  true  "ID del registro"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{resource}/get/{id} [get]
func (h *ResourceHandler) GetByID(c *fiber.Ctx) error {
	schema := schemaOf(c)
	rec, err := h.uc.Get(c.UserContext(), schema, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return listed(c, schema.Name, []map[string]any{dto.RecordMap(rec)}, 1)
}

// Create godoc
// @Summary      Crear registro
// @Tags         resources
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        resource  path  string  true  "Recurso"
// @Param        body      body  object  true  "Campos del registro"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{resource}/create [post]
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	schema := schemaOf(c)
	var values map[string]any
	if err := decodeJSON(c.Body(), &values); err != nil || values == nil {
		return invalidBody(c)
	}
	rec, err := h.uc.Create(c.UserContext(), schema, values)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, "registro creado", fiber.Map{schema.Name: []map[string]any{dto.RecordMap(rec)}, schema.Name + "Count": 1})
}

// Edit godoc
// @Summary      Editar registro (parcial)
// @Tags         resources
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        resource  path  string  true  "Recurso"
// @Param        body      body  object  true  "id + campos a modificar (null borra)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{resource}/edit [post]
func (h *ResourceHandler) Edit(c *fiber.Ctx) error {
	schema := schemaOf(c)
	var values map[string]any
	if err := decodeJSON(c.Body(), &values); err != nil || values == nil {
		return invalidBody(c)
	}
	id, _ := values[catalog.FieldID].(string)
	if id == "" {
		return fail(c, domain.NewValidationError("id", "requerido"))
	}
	rec, err := h.uc.Edit(c.UserContext(), schema, id, values)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "registro actualizado", fiber.Map{schema.Name: []map[string]any{dto.RecordMap(rec)}, schema.Name + "Count": 1})
}

// Remove godoc
// @Summary      Eliminar registros (soft-delete)
// @Tags         resources
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        resource  path  string          true  "Recurso"
// @Param        body      body  dto.IDsRequest  true  "ids"
// @Success      200  {object}  dto.RemoveResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/{resource}/remove [post]
func (h *ResourceHandler) Remove(c *fiber.Ctx) error {
	var in dto.IDsRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	res, err := h.uc.Remove(c.UserContext(), schemaOf(c), in.IDs)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "registros eliminados", fiber.Map{"removed": res.Removed, "failures": res.Failures})
}

// Batch godoc
// @Summary      Edición masiva best-effort
// @Tags         resources
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        resource  path  string            true  "Recurso con edición masiva"
// @Param        body      body  dto.BatchRequest  true  "ids, filters, edits"
// @Success      200  {object}  dto.BatchResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/{resource}/batch [post]
func (h *ResourceHandler) Batch(c *fiber.Ctx) error {
	var in dto.BatchRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	res, err := h.uc.Batch(c.UserContext(), h.parser, schemaOf(c), in)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "edición masiva aplicada", fiber.Map{"updated": res.Updated, "failures": res.Failures})
}

// Duplicate godoc
// @Summary      Duplicar registros
// @Tags         resources
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        resource  path  string          true  "Recurso"
// @Param        body      body  dto.IDsRequest  true  "ids"
// @Success      201  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{resource}/duplicate [post]
func (h *ResourceHandler) Duplicate(c *fiber.Ctx) error {
	schema := schemaOf(c)
	var in dto.IDsRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	recs, err := h.uc.Duplicate(c.UserContext(), schema, in.IDs)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, "registros duplicados", fiber.Map{schema.Name: dto.RecordMaps(recs), schema.Name + "Count": len(recs)})
}

// Import godoc
// @Summary      Importar registros desde CSV, XLSX o JSON
// @Tags         resources
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        resource  path      string  true   "Recurso"
// @Param        file      formData  file    true   "Archivo"
// @Param        format    query     string  false  "csv | xlsx | json (por defecto según el archivo)"
// @Success      200  {object}  dto.ImportResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Failure      415  {object}  dto.ErrorResponse
// @Router       /api/{resource}/import [post]
func (h *ResourceHandler) Import(c *fiber.Ctx) error {
	up, err := readUpload(c, h.maxUpload)
	if err != nil {
		return fail(c, err)
	}
	format, err := importFormat(c, up)
	if err != nil {
		return fail(c, err)
	}
	res, err := h.transfer.Import(c.UserContext(), schemaOf(c), format, up.Data)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "importación finalizada", fiber.Map{"imported": res.Imported, "failures": res.Failures})
}

// Export godoc
// @Summary      Exportar registros
// @Description  Exporta todos los registros que cumplen la consulta (se ignora la paginación).
// @Tags         resources
// @Security     Bearer
// @Produce      octet-stream
// @Param        resource  path   string  true   "Recurso"
// @Param        format    query  string  false  "csv | xlsx | json"  default(csv)
// @Success      200  {file}  file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/{resource}/export [get]
// @Router       /api/{resource}/export [post]
func (h *ResourceHandler) Export(c *fiber.Ctx) error {
	schema := schemaOf(c)
	format := c.Query("format", usecase.FormatCSV)
	q, err := parseQuery(c, h.parser, schema)
	if err != nil {
		return fail(c, err)
	}
	data, err := h.transfer.Export(c.UserContext(), q, format)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, exportContentType(format))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.%s"`, schema.Name, format))
	return c.Send(data)
}

// Upload godoc
// @Summary      Adjuntar imagen o PDF a un registro
// @Tags         resources
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        resource  path      string  true  "Recurso con lista images"
// @Param        id        path      string  true  "ID del registro"
// @Param        file      formData  file    true  "Imagen o PDF"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      415  {object}  dto.ErrorResponse
// @Router       /api/{resource}/upload/{id} [post]
func (h *ResourceHandler) Upload(c *fiber.Ctx) error {
	schema := schemaOf(c)
	if f, ok := schema.Field("images"); !ok || f.Kind != query.KindStringList {
		return fail(c, fmt.Errorf("%s no admite adjuntos: %w", schema.Name, domain.ErrInvalidInput))
	}
	if _, err := h.uc.Get(c.UserContext(), schema, c.Params("id")); err != nil {
		return fail(c, err)
	}
	up, err := readUpload(c, h.maxUpload)
	if err != nil {
		return fail(c, err)
	}
	if !isAttachment(up.ContentType) {
		return fail(c, fmt.Errorf("adjunto %s: %w", up.ContentType, domain.ErrFileType))
	}
	name, err := h.storage.Save(c.UserContext(), up.Name, up.Data)
	if err != nil {
		return fail(c, err)
	}
	rec, err := h.uc.Attach(c.UserContext(), schema, c.Params("id"), name)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "archivo adjuntado", fiber.Map{"file": name, schema.Name: []map[string]any{dto.RecordMap(rec)}, schema.Name + "Count": 1})
}

func exportContentType(format string) string {
	switch format {
	case usecase.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case usecase.FormatJSON:
		return fiber.MIMEApplicationJSON
	}
	return "text/csv; charset=utf-8"
}
