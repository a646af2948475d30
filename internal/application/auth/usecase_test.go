package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-api/pkg/jwt"
)

const testPassword = "secreto-123"

type fixture struct {
	uc     *auth.AuthUseCase
	signer *jwt.Signer
	users  *memory.UserRepo
	roleID string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	resources := memory.NewResourceRepository(store)
	users := memory.NewUserRepository(store)
	ctx := context.Background()

	role := &entity.Record{
		ID:     uuid.NewString(),
		Kind:   catalog.Roles,
		Names:  entity.LanguageString{"es": "Bodega"},
		Active: true,
		Attributes: map[string]any{
			"code":        "warehouse",
			"permissions": []string{"products.read", "inventories.write", "products.read"},
		},
	}
	require.NoError(t, resources.Create(ctx, role))

	signer, err := jwt.NewSigner("test-secret", "backoffice-test", 15*time.Minute, 12*time.Hour)
	require.NoError(t, err)

	f := fixture{
		uc:     auth.NewAuthUseCase(users, resources, signer, memory.NewRefreshStore()),
		signer: signer,
		users:  users,
		roleID: role.ID,
	}
	f.addUser(t, "ana", entity.UserActive)
	f.addUser(t, "luis", entity.UserInactive)
	return f
}

func (f fixture) addUser(t *testing.T, login, status string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), &entity.User{
		ID:           uuid.NewString(),
		Login:        login,
		PasswordHash: string(hash),
		Name:         login,
		RoleID:       f.roleID,
		Status:       status,
	}))
}

// ─── Login ──────────────────────────────────────────────────────────────────

func TestLogin_EmiteParConPermisos(t *testing.T) {
	f := newFixture(t)
	res, err := f.uc.Login(context.Background(), dto.LoginRequest{Login: "ana", Password: testPassword, Type: jwt.ClientTerminal})
	require.NoError(t, err)
	assert.Equal(t, 900, res.ExpiresIn)
	assert.Equal(t, []string{"inventories.write", "products.read"}, res.User.Permissions)

	claims, err := f.signer.Parse(res.AccessToken, jwt.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, f.roleID, claims.RoleID)
	assert.Equal(t, jwt.ClientTerminal, claims.Client)
	assert.Equal(t, []string{"inventories.write", "products.read"}, claims.Permissions)
}

func TestLogin_TipoPorDefectoWeb(t *testing.T) {
	f := newFixture(t)
	res, err := f.uc.Login(context.Background(), dto.LoginRequest{Login: "ana", Password: testPassword})
	require.NoError(t, err)
	claims, err := f.signer.Parse(res.AccessToken, jwt.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, jwt.ClientWeb, claims.Client)
}

func TestLogin_ErroresIndistinguibles(t *testing.T) {
	f := newFixture(t)
	_, errUnknown := f.uc.Login(context.Background(), dto.LoginRequest{Login: "nadie", Password: testPassword})
	_, errBadPass := f.uc.Login(context.Background(), dto.LoginRequest{Login: "ana", Password: "otra-clave"})

	assert.True(t, errors.Is(errUnknown, domain.ErrUnauthorized))
	assert.True(t, errors.Is(errBadPass, domain.ErrUnauthorized))
	assert.Equal(t, errUnknown.Error(), errBadPass.Error())
}

func TestLogin_CuentaInactiva(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Login: "luis", Password: testPassword})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// ─── Refresh / Logout ───────────────────────────────────────────────────────

func TestRefresh_RotaElToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	login, err := f.uc.Login(ctx, dto.LoginRequest{Login: "ana", Password: testPassword, Type: jwt.ClientTerminal})
	require.NoError(t, err)

	next, err := f.uc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, next.RefreshToken)
	claims, err := f.signer.Parse(next.AccessToken, jwt.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, jwt.ClientTerminal, claims.Client, "el tipo de cliente se conserva")

	_, err = f.uc.Refresh(ctx, login.RefreshToken)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized), "el refresh ya usado no sirve")

	_, err = f.uc.Refresh(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_AccessTokenNoSirve(t *testing.T) {
	f := newFixture(t)
	login, err := f.uc.Login(context.Background(), dto.LoginRequest{Login: "ana", Password: testPassword})
	require.NoError(t, err)
	_, err = f.uc.Refresh(context.Background(), login.AccessToken)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogout_RevocaRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	login, err := f.uc.Login(ctx, dto.LoginRequest{Login: "ana", Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, f.uc.Logout(ctx, login.RefreshToken))
	_, err = f.uc.Refresh(ctx, login.RefreshToken)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	assert.NoError(t, f.uc.Logout(ctx, "basura"), "un token inválido no es error")
}

// ─── Me / permisos ──────────────────────────────────────────────────────────

func TestMe_IncluyePermisos(t *testing.T) {
	f := newFixture(t)
	login, err := f.uc.Login(context.Background(), dto.LoginRequest{Login: "ana", Password: testPassword})
	require.NoError(t, err)

	me, err := f.uc.Me(context.Background(), login.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", me.Login)
	assert.Equal(t, []string{"inventories.write", "products.read"}, me.Permissions)
}

func TestHasPermission(t *testing.T) {
	assert.True(t, auth.HasPermission([]string{"products.read"}, "products.read"))
	assert.False(t, auth.HasPermission([]string{"products.read"}, "products.write"))
	assert.True(t, auth.HasPermission([]string{auth.PermissionAll}, "users.remove"))
	assert.False(t, auth.HasPermission(nil, "products.read"))
}
