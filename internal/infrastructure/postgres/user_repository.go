package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id::text, login, password_hash, name, COALESCE(role_id::text, ''), status, created_at, updated_at, seq`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, login, password_hash, name, role_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		user.ID, user.Login, user.PasswordHash, user.Name, user.RoleID, user.Status,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrLoginExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByLogin obtiene un usuario por login.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE login = $1`, login)
}

// Update actualiza login, nombre, rol, estado y password.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET login = $2, password_hash = $3, name = $4, role_id = NULLIF($5, '')::uuid, status = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, user.ID, user.Login, user.PasswordHash, user.Name, user.RoleID, user.Status, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrLoginExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// List lista usuarios con el motor de consultas.
func (r *UserRepo) List(ctx context.Context, q query.Query) ([]*entity.User, int, error) {
	s := compileSelect(q, false)
	total, err := count(ctx, r.q, "users", s)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users`+s.Where+s.Order+s.Page, s.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Name, &u.RoleID, &u.Status, &u.CreatedAt, &u.UpdatedAt, &u.Seq)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountByRole cuenta los usuarios asignados al rol.
func (r *UserRepo) CountByRole(ctx context.Context, roleID string) (int, error) {
	n, err := countWhere(ctx, r.q, `SELECT count(*) FROM users WHERE role_id::text = $1`, roleID)
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}
