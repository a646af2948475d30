// Package client cliente HTTP de la API con manejo de sesión: adjunta el access token, lo renueva
// una sola vez ante un 401 (deduplicado entre peticiones concurrentes) y reintenta una vez.
package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNoSession no hay refresh token con el que renovar la sesión.
var ErrNoSession = errors.New("client: sin sesión")

// Hooks observadores del ciclo de vida de la sesión. Todos son opcionales.
type Hooks struct {
	OnRefresh   func(accessToken string)  // tras renovar el access token
	OnLogout    func()                    // la sesión terminó (logout explícito o refresh rechazado)
	OnForbidden func(method, path string) // 403: la sesión sigue activa
}

// Session estado de autenticación compartido por todas las peticiones del cliente.
type Session struct {
	mu      sync.RWMutex
	access  string
	refresh string
	hooks   Hooks
	group   singleflight.Group
}

// NewSession construye la sesión con sus hooks.
func NewSession(hooks Hooks) *Session {
	return &Session{hooks: hooks}
}

// SetTokens instala el par de tokens (tras login).
func (s *Session) SetTokens(access, refresh string) {
	s.mu.Lock()
	s.access, s.refresh = access, refresh
	s.mu.Unlock()
}

// AccessToken token actual; vacío si no hay sesión.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken token de refresh actual.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Active indica si hay un access token instalado.
func (s *Session) Active() bool { return s.AccessToken() != "" }

// renew renueva el access token una sola vez por cada token vencido: las peticiones que
// recibieron 401 con el mismo token comparten la misma llamada a fn. Si otro refresh ya
// reemplazó stale, devuelve el token actual sin volver a llamar a fn.
func (s *Session) renew(ctx context.Context, stale string, fn func(ctx context.Context, refresh string) (string, string, error)) (string, error) {
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		s.mu.RLock()
		current, refresh := s.access, s.refresh
		s.mu.RUnlock()
		if current != "" && current != stale {
			return current, nil
		}
		if refresh == "" {
			return "", ErrNoSession
		}
		// independiente de la cancelación de la petición que lo disparó
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		access, next, err := fn(rctx, refresh)
		if err != nil {
			return "", err
		}
		s.SetTokens(access, next)
		if s.hooks.OnRefresh != nil {
			s.hooks.OnRefresh(access)
		}
		return access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// end limpia los tokens y dispara OnLogout una vez por sesión activa.
func (s *Session) end() {
	s.mu.Lock()
	had := s.access != "" || s.refresh != ""
	s.access, s.refresh = "", ""
	s.mu.Unlock()
	if had && s.hooks.OnLogout != nil {
		s.hooks.OnLogout()
	}
}

func (s *Session) forbidden(method, path string) {
	if s.hooks.OnForbidden != nil {
		s.hooks.OnForbidden(method, path)
	}
}

// authorize agrega el header Bearer si hay sesión.
func authorize(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
