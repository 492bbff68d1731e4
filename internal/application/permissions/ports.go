package permissions

import (
	"context"
	"time"

	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
)

// Matrix instantánea autoritativa del catálogo y de la matriz rol × permiso.
type Matrix struct {
	Permissions     []entity.Permission
	RolePermissions []entity.RolePermission
}

// MatrixStore origen de verdad de la matriz: una lectura completa y una actualización por lote.
// Lo implementan el cliente HTTP del endpoint de administración y el adaptador en proceso.
type MatrixStore interface {
	FetchMatrix(ctx context.Context) (*Matrix, error)
	SaveMatrix(ctx context.Context, updates []entity.RolePermission) error
}

// PermissionTxRunner ejecuta fn dentro de una transacción con el repositorio de permisos atado a ella.
type PermissionTxRunner interface {
	RunPermissions(ctx context.Context, fn func(repo repository.PermissionRepository) error) error
}

// PermissionCache caché de resultados de has_permission.
// Key fija la versión vigente; la lectura y la escritura de una misma consulta usan esa llave,
// así un valor leído antes de una invalidación nunca queda bajo la versión nueva.
type PermissionCache interface {
	Key(ctx context.Context, role entity.Role, permCode string) (string, error)
	Get(ctx context.Context, key string) (allowed bool, found bool, err error)
	Set(ctx context.Context, key string, allowed bool, ttl time.Duration) error
	// Invalidate descarta todas las entradas (tras cambiar la matriz).
	Invalidate(ctx context.Context) error
}

// Actor usuario autenticado que invoca una operación administrativa.
type Actor struct {
	ID       string
	Username string
	Role     entity.Role
}
