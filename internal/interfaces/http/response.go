package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
)

// success responde el envelope {status, code, message, ...extra}.
func success(c *fiber.Ctx, status int, message string, extra fiber.Map) error {
	body := fiber.Map{
		"status":  dto.StatusSuccess,
		"code":    successCode(status),
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// listed responde {…, <resource>: items, <resource>Count: total}.
func listed(c *fiber.Ctx, resource string, items any, total int) error {
	return success(c, fiber.StatusOK, "OK", fiber.Map{resource: items, resource + "Count": total})
}

func successCode(status int) string {
	if status == fiber.StatusCreated {
		return "CREATED"
	}
	return "OK"
}

// errorStatus traduce errores de dominio a status HTTP, código y mensaje público.
func errorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", "datos inválidos"
	case errors.Is(err, domain.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "archivo demasiado grande"
	case errors.Is(err, domain.ErrFileType):
		return fiber.StatusUnsupportedMediaType, "UNSUPPORTED_FILE", "tipo de archivo no permitido"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenRevoked):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"
	case errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusConflict, "INVALID_STATE", "operación no permitida en el estado actual"
	case errors.Is(err, domain.ErrReferenced):
		return fiber.StatusConflict, "REFERENCED", "el recurso está referenciado por otros registros"
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrLoginExists):
		return fiber.StatusConflict, "DUPLICATE", "recurso duplicado"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "TIMEOUT", "la operación excedió el tiempo de espera"
	}
	return fiber.StatusInternalServerError, "INTERNAL", "error interno"
}

// fail responde el error en el envelope. Los 5xx se registran con detalle y nunca se exponen.
func fail(c *fiber.Ctx, err error) error {
	status, code, message := errorStatus(err)
	resp := dto.ErrorResponse{Status: dto.StatusError, Code: code, Message: message}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	switch {
	case status >= fiber.StatusInternalServerError:
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("request_id", requestID(c)).
			Msg("error en petición")
	case status != fiber.StatusUnauthorized:
		// 401 no describe el motivo (login inexistente vs password incorrecto)
		resp.Description = err.Error()
	}
	return c.Status(status).JSON(resp)
}

// ErrorHandler manejador global de Fiber: rutas inexistentes, body demasiado grande, panics recuperados.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "HTTP_ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusRequestEntityTooLarge:
			code = "FILE_TOO_LARGE"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusTooManyRequests:
			code = "TOO_MANY_REQUESTS"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Status: dto.StatusError, Code: code, Message: fe.Message})
	}
	return fail(c, err)
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Status: dto.StatusError, Code: code, Message: message})
}

func forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Status: dto.StatusError, Code: "FORBIDDEN", Message: message})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Status: dto.StatusError, Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
