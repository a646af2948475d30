package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// UserHandler maneja /api/users (protegido).
type UserHandler struct {
	uc     *usecase.UserUseCase
	parser query.Parser
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, parser query.Parser) *UserHandler {
	return &UserHandler{uc: uc, parser: parser}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/users/get [get]
// @Router       /api/users/get [post]
func (h *UserHandler) List(c *fiber.Ctx) error {
	q, err := parseQuery(c, h.parser, catalog.UserSchema)
	if err != nil {
		return fail(c, err)
	}
	users, total, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}
	return listed(c, catalog.Users, users, total)
}

// GetByID godoc
// @Summary      Obtener usuario por ID
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/get/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return listed(c, catalog.Users, []dto.UserResponse{*out}, 1)
}

// Create godoc
// @Summary      Crear usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "login, password, name, roleId"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/create [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusCreated, "usuario creado", fiber.Map{catalog.Users: []dto.UserResponse{*out}, catalog.Users + "Count": 1})
}

// Edit godoc
// @Summary      Editar usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateUserRequest  true  "id + campos a modificar"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/edit [post]
func (h *UserHandler) Edit(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "usuario actualizado", fiber.Map{catalog.Users: []dto.UserResponse{*out}, catalog.Users + "Count": 1})
}

// Remove godoc
// @Summary      Eliminar usuarios
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IDsRequest  true  "ids"
// @Success      200   {object}  dto.RemoveResult
// @Router       /api/users/remove [post]
func (h *UserHandler) Remove(c *fiber.Ctx) error {
	var in dto.IDsRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	res, err := h.uc.Remove(c.UserContext(), GetUserID(c), in.IDs)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "usuarios eliminados", fiber.Map{"removed": res.Removed, "failures": res.Failures})
}
