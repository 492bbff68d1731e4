package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
)

var _ repository.PermissionRepository = (*PermissionRepo)(nil)

// PermissionRepo catálogo de permisos y matriz rol × permiso (usable con pool o tx).
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

// ListPermissions catálogo completo ordenado por categoría y código.
func (r *PermissionRepo) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	query := `
		SELECT perm_code, COALESCE(category, ''), COALESCE(description, ''), created_at
		FROM permissions ORDER BY category, perm_code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	var list []entity.Permission
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.Code, &p.Category, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListRolePermissions todas las tuplas de la matriz.
func (r *PermissionRepo) ListRolePermissions(ctx context.Context) ([]entity.RolePermission, error) {
	query := `SELECT role, perm_code, allowed, updated_at FROM role_permissions ORDER BY role, perm_code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list role_permissions: %w", err)
	}
	defer rows.Close()

	var list []entity.RolePermission
	for rows.Next() {
		var rp entity.RolePermission
		if err := rows.Scan(&rp.Role, &rp.PermCode, &rp.Allowed, &rp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role_permission: %w", err)
		}
		list = append(list, rp)
	}
	return list, rows.Err()
}

// AllowedFor valores actuales de los pares pedidos (bloqueados FOR UPDATE dentro de una tx).
// Los pares sin fila quedan en false.
func (r *PermissionRepo) AllowedFor(ctx context.Context, pairs []entity.RolePermission) (map[string]bool, error) {
	out := make(map[string]bool, len(pairs))
	if len(pairs) == 0 {
		return out, nil
	}
	roles := make([]string, len(pairs))
	codes := make([]string, len(pairs))
	for i, p := range pairs {
		roles[i] = string(p.Role)
		codes[i] = p.PermCode
		out[repository.PairKey(p.Role, p.PermCode)] = false
	}
	query := `
		SELECT rp.role, rp.perm_code, rp.allowed
		FROM role_permissions rp
		JOIN unnest($1::text[], $2::text[]) AS k(role, perm_code)
		  ON rp.role = k.role AND rp.perm_code = k.perm_code
		FOR UPDATE OF rp`
	rows, err := r.q.Query(ctx, query, roles, codes)
	if err != nil {
		return nil, fmt.Errorf("read role_permissions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			role    entity.Role
			code    string
			allowed bool
		)
		if err := rows.Scan(&role, &code, &allowed); err != nil {
			return nil, fmt.Errorf("scan role_permission: %w", err)
		}
		out[repository.PairKey(role, code)] = allowed
	}
	return out, rows.Err()
}

// Upsert inserta o actualiza cada tupla con llave (role, perm_code).
func (r *PermissionRepo) Upsert(ctx context.Context, items []entity.RolePermission) error {
	query := `
		INSERT INTO role_permissions (role, perm_code, allowed, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (role, perm_code) DO UPDATE SET allowed = EXCLUDED.allowed, updated_at = EXCLUDED.updated_at`
	for _, it := range items {
		if _, err := r.q.Exec(ctx, query, it.Role, it.PermCode, it.Allowed, it.UpdatedAt); err != nil {
			return fmt.Errorf("upsert role_permission %s/%s: %w", it.Role, it.PermCode, err)
		}
	}
	return nil
}

// HasPermission delega en la función SQL has_permission(role, perm_code).
func (r *PermissionRepo) HasPermission(ctx context.Context, role entity.Role, permCode string) (bool, error) {
	var allowed bool
	if err := r.q.QueryRow(ctx, `SELECT has_permission($1, $2)`, role, permCode).Scan(&allowed); err != nil {
		return false, fmt.Errorf("has_permission: %w", err)
	}
	return allowed, nil
}
