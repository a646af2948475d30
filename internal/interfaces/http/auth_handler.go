package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
)

// RefreshCookie nombre de la cookie HttpOnly con el refresh token.
const RefreshCookie = "refreshToken"

// AuthHandler maneja login, refresh, logout y me.
type AuthHandler struct {
	uc           *auth.AuthUseCase
	refreshTTL   time.Duration
	cookieSecure bool
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, refreshTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{uc: uc, refreshTTL: refreshTTL, cookieSecure: cookieSecure}
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Devuelve el access token; el refresh token va en la cookie HttpOnly refreshToken y en el cuerpo.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "login, password, type (web | terminal)"
// @Success      200   {object}  dto.TokenResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := bind(c.Body(), &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return h.session(c, "sesión iniciada", out)
}

// Refresh godoc
// @Summary      Renovar tokens
// @Description  Consume el refresh token (cookie o cuerpo) y emite un par nuevo. Un token reutilizado devuelve 401.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RefreshRequest  false  "refreshToken (clientes sin cookies)"
// @Success      200   {object}  dto.TokenResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	out, err := h.uc.Refresh(c.UserContext(), h.refreshToken(c))
	if err != nil {
		h.clearCookie(c)
		return fail(c, err)
	}
	return h.session(c, "sesión renovada", out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RefreshRequest  false  "refreshToken (clientes sin cookies)"
// @Success      200   {object}  map[string]interface{}
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.uc.Logout(c.UserContext(), h.refreshToken(c)); err != nil {
		return fail(c, err)
	}
	h.clearCookie(c)
	return success(c, fiber.StatusOK, "sesión cerrada", nil)
}

// Me godoc
// @Summary      Usuario autenticado
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.Me(c.UserContext(), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.StatusOK, "OK", fiber.Map{"user": out, "client": GetClient(c)})
}

func (h *AuthHandler) session(c *fiber.Ctx, message string, out *dto.TokenResponse) error {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookie,
		Value:    out.RefreshToken,
		Path:     "/api/auth",
		Expires:  time.Now().Add(h.refreshTTL),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return success(c, fiber.StatusOK, message, fiber.Map{
		"accessToken":  out.AccessToken,
		"refreshToken": out.RefreshToken,
		"expiresIn":    out.ExpiresIn,
		"user":         out.User,
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/api/auth",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// refreshToken cuerpo {refreshToken} si viene; si no, la cookie.
func (h *AuthHandler) refreshToken(c *fiber.Ctx) string {
	var in dto.RefreshRequest
	if len(c.Body()) > 0 && decodeJSON(c.Body(), &in) == nil && in.RefreshToken != "" {
		return in.RefreshToken
	}
	return c.Cookies(RefreshCookie)
}
