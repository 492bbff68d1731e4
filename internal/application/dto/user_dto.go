package dto

import "time"

// Acciones del endpoint de administración de usuarios.
const (
	UserActionList     = "list"
	UserActionCreate   = "create"
	UserActionUpdate   = "update"
	UserActionPassword = "password"
	UserActionDelete   = "delete"
)

// AdminUsersRequest cuerpo único del endpoint de usuarios; los campos usados dependen de Action.
type AdminUsersRequest struct {
	Action   string `json:"action" validate:"required,oneof=list create update password delete"`
	UserID   string `json:"user_id" validate:"omitempty,uuid"`
	Username string `json:"username" validate:"omitempty,min=3,max=60"`
	FullName string `json:"full_name" validate:"omitempty,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,oneof=admin comercial inventarios produccion logistica facturacion financiera"`
	Password string `json:"password"`
	Active   *bool  `json:"active"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Username string
	FullName string
	Email    string
	Role     string
	Password string
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminUsersResponse respuesta del endpoint de usuarios.
type AdminUsersResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	User    *UserResponse  `json:"user,omitempty"`
	Users   []UserResponse `json:"users,omitempty"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
