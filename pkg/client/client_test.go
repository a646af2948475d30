package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-api/pkg/client"
)

// fakeAPI acepta sólo el access token vigente y rota el par en /api/auth/refresh.
type fakeAPI struct {
	mu          sync.Mutex
	access      string
	refresh     string
	refreshHits atomic.Int32
	rejectAll   bool // todo access token devuelve 401
	forbidden   bool // /api/products/get devuelve 403
	refreshFail bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/auth/refresh":
		f.refreshHits.Add(1)
		time.Sleep(20 * time.Millisecond)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.refreshFail || body["refreshToken"] != f.refresh {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","code":"UNAUTHORIZED","message":"refresh inválido"}`))
			return
		}
		f.access, f.refresh = "access-2", "refresh-2"
		_ = json.NewEncoder(w).Encode(map[string]any{"accessToken": f.access, "refreshToken": f.refresh, "expiresIn": 900})
		return
	}

	f.mu.Lock()
	valid := r.Header.Get("Authorization") == "Bearer "+f.access && !f.rejectAll
	f.mu.Unlock()
	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"UNAUTHORIZED","message":"token inválido"}`))
		return
	}
	if f.forbidden {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":"error","code":"FORBIDDEN","message":"sin permiso"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"success","products":[],"productsCount":0}`))
}

type recorder struct {
	mu        sync.Mutex
	refreshed []string
	logouts   int
	forbidden []string
}

func (r *recorder) hooks() client.Hooks {
	return client.Hooks{
		OnRefresh: func(tok string) { r.mu.Lock(); r.refreshed = append(r.refreshed, tok); r.mu.Unlock() },
		OnLogout:  func() { r.mu.Lock(); r.logouts++; r.mu.Unlock() },
		OnForbidden: func(method, path string) {
			r.mu.Lock()
			r.forbidden = append(r.forbidden, method+" "+path)
			r.mu.Unlock()
		},
	}
}

func setup(t *testing.T, api *fakeAPI) (*client.Client, *recorder) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	rec := &recorder{}
	session := client.NewSession(rec.hooks())
	session.SetTokens("access-1", "refresh-1")
	return client.New(srv.URL, session, srv.Client()), rec
}

// ─── Refresh ─────────────────────────────────────────────────────────────────

func TestDo_RefreshUnicoConPeticionesConcurrentes(t *testing.T) {
	api := &fakeAPI{access: "", refresh: "refresh-1"}
	c, rec := setup(t, api)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out map[string]any
			errs[i] = c.Do(context.Background(), http.MethodGet, "/api/products/get", nil, &out)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), api.refreshHits.Load(), "un solo refresh para todas las peticiones")
	assert.Equal(t, []string{"access-2"}, rec.refreshed)
	assert.Equal(t, "access-2", c.Session().AccessToken())
	assert.Equal(t, "refresh-2", c.Session().RefreshToken())
	assert.Zero(t, rec.logouts)
}

func TestDo_SegundoUnauthorizedCierraSesion(t *testing.T) {
	api := &fakeAPI{access: "x", refresh: "refresh-1", rejectAll: true}
	c, rec := setup(t, api)

	err := c.Do(context.Background(), http.MethodGet, "/api/products/get", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, int32(1), api.refreshHits.Load(), "no hay segundo refresh")
	assert.Equal(t, 1, rec.logouts)
	assert.False(t, c.Session().Active())
}

func TestDo_RefreshRechazadoCierraSesion(t *testing.T) {
	api := &fakeAPI{access: "other", refresh: "refresh-1", refreshFail: true}
	c, rec := setup(t, api)

	err := c.Do(context.Background(), http.MethodGet, "/api/products/get", nil, nil)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, 1, rec.logouts)
	assert.Empty(t, rec.refreshed)
	assert.False(t, c.Session().Active())
}

// ─── Forbidden ───────────────────────────────────────────────────────────────

func TestDo_ForbiddenNoCierraSesion(t *testing.T) {
	api := &fakeAPI{access: "access-1", refresh: "refresh-1", forbidden: true}
	c, rec := setup(t, api)

	err := c.Do(context.Background(), http.MethodGet, "/api/products/get", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrForbidden)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)

	assert.Equal(t, []string{"GET /api/products/get"}, rec.forbidden)
	assert.Zero(t, rec.logouts)
	assert.Zero(t, api.refreshHits.Load())
	assert.True(t, c.Session().Active())
}

// ─── Login / Logout ──────────────────────────────────────────────────────────

func TestLoginLogout(t *testing.T) {
	var logoutBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/login"):
			_, _ = w.Write([]byte(`{"accessToken":"a","refreshToken":"r","expiresIn":900}`))
		case strings.HasSuffix(r.URL.Path, "/logout"):
			_ = json.NewDecoder(r.Body).Decode(&logoutBody)
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	rec := &recorder{}
	c := client.New(srv.URL, client.NewSession(rec.hooks()), srv.Client())

	tok, err := c.Login(context.Background(), "admin", "secret123", "terminal")
	require.NoError(t, err)
	assert.Equal(t, "a", tok.AccessToken)
	assert.True(t, c.Session().Active())

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, "r", logoutBody["refreshToken"])
	assert.False(t, c.Session().Active())
	assert.Equal(t, 1, rec.logouts)
}
