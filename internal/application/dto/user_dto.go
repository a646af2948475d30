package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	RoleID   string `json:"roleId" validate:"required,uuid"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateUserRequest edición parcial; los campos vacíos no se modifican.
type UpdateUserRequest struct {
	ID       string `json:"id" validate:"required,uuid"`
	Login    string `json:"login" validate:"omitempty,min=3,max=100"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Name     string `json:"name" validate:"omitempty,max=200"`
	RoleID   string `json:"roleId" validate:"omitempty,uuid"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string    `json:"id"`
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	RoleID      string    `json:"roleId"`
	Status      string    `json:"status"`
	Permissions []string  `json:"permissions,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LoginRequest entrada para login. Type identifica el cliente: web (por defecto) o terminal.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
	Type     string `json:"type" validate:"omitempty,oneof=web terminal"`
}

// RefreshRequest refresh token para clientes sin cookies; el navegador usa la cookie refreshToken.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse salida de login y refresh.
type TokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"` // segundos de vida del access token
	User         UserResponse `json:"user"`
}
