package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// BarcodeHandler maneja /api/barcodes (protegido).
type BarcodeHandler struct {
	uc     *usecase.BarcodeUseCase
	parser query.Parser
}

// NewBarcodeHandler construye el handler.
func NewBarcodeHandler(uc *usecase.BarcodeUseCase, parser query.Parser) *BarcodeHandler {
	return &BarcodeHandler{uc: uc, parser: parser}
}

// List godoc
// @Summary      Listar códigos de barras
// @Tags         barcodes
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/barcodes/get [get]
// @Router       /api/barcodes/get [post]
func (h *BarcodeHandler) List(c *fiber.Ctx) error {
	q, err := parseQuery(c, h.parser, catalog.BarcodeSchema)
	if err != nil {
		return fail(c, err)
	}
	list, total, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}
	return listed(c, catalog.Barcodes, list, total)
}

// Create godoc
// @Summary      Crear código de barras
// @Description  El código se normaliza (GTIN-14, GS1 AI(01)) antes de guardarse.
// @Tags         barcodes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBarcodeRequest  true  "code, items"
// @Success      201   {object}  dto.BarcodeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/barcodes/create [post]
func (h *BarcodeHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBarcodeRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, "código creado", fiber.Map{catalog.Barcodes: []dto.BarcodeResponse{*out}, catalog.Barcodes + "Count": 1})
}

// Remove godoc
// @Summary      Eliminar códigos de barras
// @Tags         barcodes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IDsRequest  true  "ids"
// @Success      200   {object}  dto.RemoveResult
// @Router       /api/barcodes/remove [post]
func (h *BarcodeHandler) Remove(c *fiber.Ctx) error {
	var in dto.IDsRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	res, err := h.uc.Remove(c.UserContext(), in.IDs)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "códigos eliminados", fiber.Map{"removed": res.Removed, "failures": res.Failures})
}
