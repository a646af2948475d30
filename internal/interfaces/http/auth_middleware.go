package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/pkg/jwt"
)

// Locals keys de la sesión en Fiber.
const (
	LocalUserID      = "user_id"
	LocalRoleID      = "role_id"
	LocalPermissions = "permissions"
	LocalClient      = "client"
)

// PermissionArchiveRead permite listar registros eliminados (includeRemoved).
const PermissionArchiveRead = "archive.read"

// AuthMiddleware valida el Bearer access token y carga usuario, rol, permisos y cliente en c.Locals.
func AuthMiddleware(signer *jwt.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "MISSING_TOKEN", "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return unauthorized(c, "MISSING_TOKEN", "token vacío")
		}
		claims, err := signer.Parse(tokenString, jwt.TypeAccess)
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", "token inválido o expirado")
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRoleID, claims.RoleID)
		c.Locals(LocalPermissions, claims.Permissions)
		c.Locals(LocalClient, claims.Client)
		return c.Next()
	}
}

// RequirePermission exige el permiso perm ("*" concede todo). Debe usarse DESPUÉS de AuthMiddleware.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !auth.HasPermission(GetPermissions(c), perm) {
			return forbidden(c, "permiso requerido: "+perm)
		}
		return c.Next()
	}
}

// RequireResourcePermission exige "<:resource>.<action>" según el recurso de la ruta.
func RequireResourcePermission(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		perm := c.Params("resource") + "." + action
		if !auth.HasPermission(GetPermissions(c), perm) {
			return forbidden(c, "permiso requerido: "+perm)
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRoleID devuelve el rol del token.
func GetRoleID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRoleID).(string)
	return s
}

// GetPermissions devuelve los permisos del token.
func GetPermissions(c *fiber.Ctx) []string {
	p, _ := c.Locals(LocalPermissions).([]string)
	return p
}

// GetClient devuelve el tipo de cliente (web | terminal).
func GetClient(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalClient).(string)
	return s
}

func hasPermission(c *fiber.Ctx, perm string) bool {
	return auth.HasPermission(GetPermissions(c), perm)
}
