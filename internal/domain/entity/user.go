package entity

import "time"

// Estados válidos para User.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User representa un usuario del back-office. Sus permisos vienen del rol (RoleID -> roles).
type User struct {
	ID           string
	Login        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	RoleID       string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Seq          int64
}

// Value implementa query.Row para listar usuarios con el mismo motor de consultas.
func (u *User) Value(field string) any {
	switch field {
	case "id":
		return u.ID
	case "login":
		return u.Login
	case "name":
		return u.Name
	case "roleId":
		return u.RoleID
	case "status":
		return u.Status
	case "createdAt":
		return u.CreatedAt
	}
	return nil
}

// Sequence implementa query.Row.
func (u *User) Sequence() int64 { return u.Seq }

// IsRemoved los usuarios se eliminan físicamente.
func (u *User) IsRemoved() bool { return false }
