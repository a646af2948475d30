package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// InventoryHandler maneja el flujo de conciliación /api/inventories (protegido).
type InventoryHandler struct {
	uc     *inventory.UseCase
	parser query.Parser
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase, parser query.Parser) *InventoryHandler {
	return &InventoryHandler{uc: uc, parser: parser}
}

// List godoc
// @Summary      Listar inventarios
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventories/get [get]
// @Router       /api/inventories/get [post]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	q, err := parseQuery(c, h.parser, catalog.InventorySchema)
	if err != nil {
		return fail(c, err)
	}
	list, total, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}
	return listed(c, catalog.Inventories, list, total)
}

// GetByID godoc
// @Summary      Obtener inventario con sus líneas
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del inventario"
// @Success      200  {object}  dto.InventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventories/get/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return listed(c, catalog.Inventories, []dto.InventoryResponse{*out}, 1)
}

// Create godoc
// @Summary      Crear inventario (draft)
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInventoryRequest  true  "warehouseId, kind, items esperados"
// @Success      201   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventories/create [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInventoryRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return h.one(c, fiber.StatusCreated, "inventario creado", out)
}

// AddItems godoc
// @Summary      Agregar líneas esperadas (sólo draft)
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddItemsRequest  true  "inventoryId, items"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventories/items [post]
func (h *InventoryHandler) AddItems(c *fiber.Ctx) error {
	var in dto.AddItemsRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.AddItems(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return h.one(c, fiber.StatusOK, "líneas agregadas", out)
}

// Start godoc
// @Summary      Iniciar conteo (draft -> counting)
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InventoryIDRequest  true  "inventoryId"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventories/start [post]
func (h *InventoryHandler) Start(c *fiber.Ctx) error {
	var in dto.InventoryIDRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Start(c.UserContext(), in.InventoryID)
	if err != nil {
		return fail(c, err)
	}
	return h.one(c, fiber.StatusOK, "conteo iniciado", out)
}

// Scan godoc
// @Summary      Registrar lectura de código
// @Description  outcome: matched | unexpected | not_found (sin cambios).
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "inventoryId, code, quantity (1 por defecto)"
// @Success      200   {object}  dto.ScanResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventories/scan [post]
func (h *InventoryHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Scan(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "lectura registrada", fiber.Map{"outcome": out.Outcome, "code": out.Code, "items": out.Items})
}

// Receive godoc
// @Summary      Registrar recepción sobre una línea
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveRequest  true  "inventoryId, itemId, quantity"
// @Success      200   {object}  dto.InventoryItemResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventories/receive [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Receive(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "recepción registrada", fiber.Map{"item": out})
}

// Finalize godoc
// @Summary      Finalizar inventario y calcular discrepancias
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InventoryIDRequest  true  "inventoryId"
// @Success      200   {object}  dto.FinalizeResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventories/finalize [post]
func (h *InventoryHandler) Finalize(c *fiber.Ctx) error {
	var in dto.InventoryIDRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Finalize(c.UserContext(), in.InventoryID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "inventario finalizado", fiber.Map{
		catalog.Inventories:           []dto.InventoryResponse{out.Inventory},
		catalog.Inventories + "Count": 1,
		"discrepancies":               out.Discrepancies,
	})
}

// Report godoc
// @Summary      Reporte PDF de discrepancias
// @Tags         inventories
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del inventario finalizado"
// @Success      200  {file}  file
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventories/report/{id} [get]
func (h *InventoryHandler) Report(c *fiber.Ctx) error {
	pdf, err := h.uc.Report(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="inventario-%s.pdf"`, c.Params("id")))
	return c.Send(pdf)
}

func (h *InventoryHandler) one(c *fiber.Ctx, status int, message string, out *dto.InventoryResponse) error {
	return success(c, status, message, fiber.Map{catalog.Inventories: []dto.InventoryResponse{*out}, catalog.Inventories + "Count": 1})
}
