package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Errores por status HTTP; APIError los envuelve.
var (
	ErrUnauthorized = errors.New("client: no autorizado")
	ErrForbidden    = errors.New("client: permiso denegado")
)

// APIError respuesta de error de la API ({status, code, message, fields}).
type APIError struct {
	StatusCode int               `json:"-"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap permite errors.Is(err, ErrUnauthorized) / ErrForbidden.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// Tokens respuesta de login y refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// Client cliente de la API que usa una Session.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New construye el cliente. httpClient nil usa uno con timeout de 30s.
func New(baseURL string, session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, session: session}
}

// Session sesión asociada.
func (c *Client) Session() *Session { return c.session }

// Login inicia sesión e instala los tokens.
func (c *Client) Login(ctx context.Context, login, password, clientType string) (*Tokens, error) {
	var out Tokens
	body := map[string]string{"login": login, "password": password, "type": clientType}
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	c.session.SetTokens(out.AccessToken, out.RefreshToken)
	return &out, nil
}

// Logout revoca el refresh token en el servidor y termina la sesión local aunque falle la llamada.
func (c *Client) Logout(ctx context.Context) error {
	refresh := c.session.RefreshToken()
	defer c.session.end()
	if refresh == "" {
		return nil
	}
	return c.send(ctx, http.MethodPost, "/api/auth/logout", "", map[string]string{"refreshToken": refresh}, nil)
}

// Do ejecuta una petición autenticada y decodifica la respuesta JSON en out (si no es nil).
// Ante un 401 renueva la sesión una vez y reintenta una vez; un segundo 401 termina la sesión.
// Un 403 dispara OnForbidden y devuelve el error sin cerrar la sesión.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	token := c.session.AccessToken()
	err := c.send(ctx, method, path, token, body, out)
	if !errors.Is(err, ErrUnauthorized) {
		if errors.Is(err, ErrForbidden) {
			c.session.forbidden(method, path)
		}
		return err
	}

	fresh, rerr := c.session.renew(ctx, token, c.refresh)
	if rerr != nil {
		c.session.end()
		return err
	}
	err = c.send(ctx, method, path, fresh, body, out)
	switch {
	case errors.Is(err, ErrUnauthorized):
		c.session.end()
	case errors.Is(err, ErrForbidden):
		c.session.forbidden(method, path)
	}
	return err
}

func (c *Client) refresh(ctx context.Context, refresh string) (string, string, error) {
	var out Tokens
	if err := c.send(ctx, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": refresh}, &out); err != nil {
		return "", "", err
	}
	return out.AccessToken, out.RefreshToken, nil
}

func (c *Client) send(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: serializar body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	authorize(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decodificar respuesta: %w", err)
	}
	return nil
}
