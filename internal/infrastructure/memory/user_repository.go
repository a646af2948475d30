package memory

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct {
	s *Store
}

// NewUserRepository construye el adaptador.
func NewUserRepository(s *Store) *UserRepo {
	return &UserRepo{s: s}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

// Create persiste un nuevo usuario; el login es único.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Login == user.Login {
			return domain.ErrLoginExists
		}
	}
	user.Seq = r.s.nextSeq()
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

// GetByLogin obtiene un usuario por login.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Login == login {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && u.Login == user.Login {
			return domain.ErrLoginExists
		}
	}
	next := cloneUser(user)
	next.Seq, next.CreatedAt = cur.Seq, cur.CreatedAt
	r.s.users[user.ID] = next
	return nil
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

// List lista usuarios con el motor de consultas.
func (r *UserRepo) List(ctx context.Context, q query.Query) ([]*entity.User, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	rows := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		rows = append(rows, cloneUser(u))
	}
	r.s.mu.RUnlock()

	page, total := query.Apply(rows, q)
	return page, total, nil
}

// CountByRole cuenta los usuarios asignados al rol.
func (r *UserRepo) CountByRole(ctx context.Context, roleID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, u := range r.s.users {
		if u.RoleID == roleID {
			n++
		}
	}
	return n, nil
}
