package jwt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/backoffice-api/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testUserID = "00000000-0000-0000-0000-000000000001"
	testIssuer = "backoffice-test"
)

func newSigner(t *testing.T, access, refresh time.Duration) *pkgjwt.Signer {
	t.Helper()
	s, err := pkgjwt.NewSigner(testSecret, testIssuer, access, refresh)
	require.NoError(t, err)
	return s
}

func TestSigner_AccessLlevaPermisos(t *testing.T) {
	s := newSigner(t, 15*time.Minute, 12*time.Hour)
	tok, err := s.Access(testUserID, "role-1", []string{"products.read", "products.write"}, pkgjwt.ClientTerminal)
	require.NoError(t, err)

	c, err := s.Parse(tok, pkgjwt.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, testUserID, c.UserID)
	assert.Equal(t, "role-1", c.RoleID)
	assert.Equal(t, []string{"products.read", "products.write"}, c.Permissions)
	assert.Equal(t, pkgjwt.ClientTerminal, c.Client)
	assert.Empty(t, c.ID)
}

func TestSigner_RefreshConJTI(t *testing.T) {
	s := newSigner(t, 15*time.Minute, 12*time.Hour)
	tok, jti, err := s.Refresh(testUserID, pkgjwt.ClientWeb)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	c, err := s.Parse(tok, pkgjwt.TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, jti, c.ID)
	assert.Equal(t, 12*time.Hour, c.ExpiresAt.Sub(c.IssuedAt.Time))
}

func TestSigner_TipoIncorrecto(t *testing.T) {
	s := newSigner(t, 15*time.Minute, 12*time.Hour)
	tok, _, err := s.Refresh(testUserID, pkgjwt.ClientWeb)
	require.NoError(t, err)

	_, err = s.Parse(tok, pkgjwt.TypeAccess)
	assert.True(t, errors.Is(err, pkgjwt.ErrWrongType), "un refresh no sirve como access")
}

func TestSigner_TokenExpirado(t *testing.T) {
	s := newSigner(t, -time.Minute, time.Hour)
	tok, err := s.Access(testUserID, "", nil, pkgjwt.ClientWeb)
	require.NoError(t, err)

	_, err = s.Parse(tok, pkgjwt.TypeAccess)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestSigner_SecretIncorrecto(t *testing.T) {
	tok, err := newSigner(t, time.Minute, time.Hour).Access(testUserID, "", nil, pkgjwt.ClientWeb)
	require.NoError(t, err)

	other, err := pkgjwt.NewSigner("otro-secret-completamente-distinto", testIssuer, time.Minute, time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(tok, pkgjwt.TypeAccess)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestNewSigner_SecretVacio(t *testing.T) {
	_, err := pkgjwt.NewSigner("", testIssuer, time.Minute, time.Hour)
	assert.Error(t, err)
}
