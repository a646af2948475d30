package auth

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/jwt"
)

// PermissionAll comodín: concede cualquier permiso.
const PermissionAll = "*"

// dummyHash se compara cuando el login no existe, para que el tiempo de respuesta no lo revele.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("backoffice-dummy-password"), bcrypt.DefaultCost)

// RolePolicy atributos de un registro del recurso roles.
type RolePolicy struct {
	Code        string   `mapstructure:"code"`
	Permissions []string `mapstructure:"permissions"`
}

// AuthUseCase casos de uso de sesión: login, refresh con rotación, logout y me.
type AuthUseCase struct {
	userRepo repository.UserRepository
	roleRepo repository.ResourceRepository
	signer   *jwt.Signer
	store    RefreshStore
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, roleRepo repository.ResourceRepository, signer *jwt.Signer, store RefreshStore) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, roleRepo: roleRepo, signer: signer, store: store}
}

// Login verifica login/password y emite el par de tokens. Login inexistente y password
// incorrecto devuelven el mismo ErrUnauthorized; una cuenta inactiva, ErrForbidden.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := uc.userRepo.GetByLogin(ctx, strings.TrimSpace(in.Login))
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserActive {
		return nil, domain.ErrForbidden
	}
	client := in.Type
	if client == "" {
		client = jwt.ClientWeb
	}
	return uc.issue(ctx, user, client)
}

// Refresh consume el jti del refresh token y emite un par nuevo. Un token desconocido,
// expirado o ya usado devuelve ErrUnauthorized.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := uc.signer.Parse(refreshToken, jwt.TypeRefresh)
	if err != nil || claims.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	userID, ok, err := uc.store.Consume(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !ok || userID != claims.UserID {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, domain.ErrTokenRevoked)
	}
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserActive {
		return nil, domain.ErrForbidden
	}
	return uc.issue(ctx, user, claims.Client)
}

// Logout revoca el refresh token. Un token inválido no es error: la sesión ya no sirve.
func (uc *AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := uc.signer.Parse(refreshToken, jwt.TypeRefresh)
	if err != nil || claims.ID == "" {
		return nil
	}
	return uc.store.Revoke(ctx, claims.ID)
}

// Me devuelve el usuario autenticado con sus permisos actuales.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	policy, err := uc.policy(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	return usecase.ToUserResponse(user, policy.Permissions), nil
}

func (uc *AuthUseCase) issue(ctx context.Context, user *entity.User, client string) (*dto.TokenResponse, error) {
	policy, err := uc.policy(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	access, err := uc.signer.Access(user.ID, user.RoleID, policy.Permissions, client)
	if err != nil {
		return nil, err
	}
	refresh, jti, err := uc.signer.Refresh(user.ID, client)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, jti, user.ID, uc.signer.RefreshTTL()); err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(uc.signer.AccessTTL().Seconds()),
		User:         *usecase.ToUserResponse(user, policy.Permissions),
	}, nil
}

// policy lee los permisos del rol. Un rol inexistente o eliminado no concede nada.
func (uc *AuthUseCase) policy(ctx context.Context, roleID string) (RolePolicy, error) {
	var p RolePolicy
	if roleID == "" {
		return p, nil
	}
	role, err := uc.roleRepo.Get(ctx, catalog.Roles, roleID, false)
	if err != nil {
		return p, err
	}
	if role == nil || !role.Active {
		return p, nil
	}
	if err := mapstructure.WeakDecode(role.Attributes, &p); err != nil {
		return p, fmt.Errorf("permisos del rol %s: %w", roleID, err)
	}
	p.Permissions = slices.Compact(slices.Sorted(slices.Values(p.Permissions)))
	return p, nil
}

// HasPermission informa si la lista concede perm ("*" concede todo).
func HasPermission(permissions []string, perm string) bool {
	return slices.Contains(permissions, PermissionAll) || slices.Contains(permissions, perm)
}
