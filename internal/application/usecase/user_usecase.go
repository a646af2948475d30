package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/catalog"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo  repository.UserRepository
	roles repository.ResourceRepository
	now   func() time.Time
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, roles repository.ResourceRepository) *UserUseCase {
	return &UserUseCase{repo: repo, roles: roles, now: time.Now}
}

// List lista usuarios con el motor de consultas.
func (uc *UserUseCase) List(ctx context.Context, q query.Query) ([]dto.UserResponse, int, error) {
	users, total, err := uc.repo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *ToUserResponse(u, nil))
	}
	return out, total, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user, nil), nil
}

// Create hashea el password con bcrypt y persiste. El rol debe existir.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := uc.checkRole(ctx, in.RoleID); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = entity.UserActive
	}
	now := uc.now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Login:        strings.TrimSpace(in.Login),
		PasswordHash: string(hash),
		Name:         in.Name,
		RoleID:       in.RoleID,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user, nil), nil
}

// Update edita los campos enviados.
func (uc *UserUseCase) Update(ctx context.Context, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.find(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if in.RoleID != "" && in.RoleID != user.RoleID {
		if err := uc.checkRole(ctx, in.RoleID); err != nil {
			return nil, err
		}
		user.RoleID = in.RoleID
	}
	if in.Login != "" {
		user.Login = strings.TrimSpace(in.Login)
	}
	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Status != "" {
		user.Status = in.Status
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user, nil), nil
}

// Remove elimina usuarios; el usuario autenticado no puede eliminarse a sí mismo.
func (uc *UserUseCase) Remove(ctx context.Context, callerID string, ids []string) (dto.RemoveResult, error) {
	res := dto.RemoveResult{Failures: []dto.Failure{}}
	for _, id := range dedupe(ids) {
		if id == callerID {
			res.Failures = append(res.Failures, dto.Failure{ID: id, Reason: domain.ErrConflict.Error()})
			continue
		}
		if _, err := uc.find(ctx, id); err != nil {
			if !isBusinessError(err) {
				return res, err
			}
			res.Failures = append(res.Failures, dto.Failure{ID: id, Reason: err.Error()})
			continue
		}
		if err := uc.repo.Delete(ctx, id); err != nil {
			return res, err
		}
		res.Removed++
	}
	return res, nil
}

func (uc *UserUseCase) find(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (uc *UserUseCase) checkRole(ctx context.Context, roleID string) error {
	role, err := uc.roles.Get(ctx, catalog.Roles, roleID, false)
	if err != nil {
		return err
	}
	if role == nil {
		return domain.NewValidationError("roleId", "el rol no existe")
	}
	return nil
}

// ToUserResponse convierte la entidad a su salida pública (sin password).
func ToUserResponse(u *entity.User, permissions []string) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Login:       u.Login,
		Name:        u.Name,
		RoleID:      u.RoleID,
		Status:      u.Status,
		Permissions: permissions,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
