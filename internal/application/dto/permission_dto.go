package dto

import "time"

// PermissionDTO elemento del catálogo de permisos.
type PermissionDTO struct {
	PermCode    string    `json:"perm_code"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// RolePermissionDTO tupla de la matriz.
type RolePermissionDTO struct {
	Role      string    `json:"role"`
	PermCode  string    `json:"perm_code"`
	Allowed   bool      `json:"allowed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PermissionMatrixResponse respuesta del GET al endpoint de administración de permisos.
type PermissionMatrixResponse struct {
	Permissions     []PermissionDTO     `json:"permissions"`
	RolePermissions []RolePermissionDTO `json:"rolePermissions"`
}

// RolePermissionUpdate cambio pedido sobre un par (rol, permiso).
type RolePermissionUpdate struct {
	Role     string `json:"role" validate:"required"`
	PermCode string `json:"perm_code" validate:"required,max=150"`
	Allowed  bool   `json:"allowed"`
}

// UpdatePermissionsRequest cuerpo del PUT: un único lote de cambios.
type UpdatePermissionsRequest struct {
	Updates []RolePermissionUpdate `json:"updates" validate:"required,min=1,dive"`
}

// UpdatePermissionsResponse respuesta del PUT.
type UpdatePermissionsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PermissionCheckResponse respuesta de has_permission.
type PermissionCheckResponse struct {
	PermCode string `json:"perm_code"`
	Allowed  bool   `json:"allowed"`
}
