package repository

import (
	"context"

	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
)

// PermissionRepository puerto del catálogo de permisos y la matriz rol × permiso.
type PermissionRepository interface {
	ListPermissions(ctx context.Context) ([]entity.Permission, error)
	ListRolePermissions(ctx context.Context) ([]entity.RolePermission, error)
	// AllowedFor devuelve el valor actual de cada par pedido; los pares sin fila valen false.
	AllowedFor(ctx context.Context, pairs []entity.RolePermission) (map[string]bool, error)
	// Upsert inserta o actualiza por la llave (role, perm_code).
	Upsert(ctx context.Context, items []entity.RolePermission) error
	// HasPermission consulta la función has_permission de la base de datos.
	HasPermission(ctx context.Context, role entity.Role, permCode string) (bool, error)
}

// PermissionAuditRepository puerto de escritura de eventos de auditoría de permisos.
type PermissionAuditRepository interface {
	Record(ctx context.Context, event *entity.PermissionAudit) error
}

// PairKey llave "rol:permiso" usada por mapas de la matriz.
func PairKey(role entity.Role, permCode string) string {
	return string(role) + ":" + permCode
}
