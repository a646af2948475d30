package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
)

// UserRepository define el puerto de persistencia para User (DIP).
// GetByID y GetByLogin devuelven nil, nil si no existe. CountByRole cuenta los usuarios de un rol.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByLogin(ctx context.Context, login string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q query.Query) ([]*entity.User, int, error)
	CountByRole(ctx context.Context, roleID string) (int, error)
}
