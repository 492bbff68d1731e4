package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
)

var _ repository.PermissionAuditRepository = (*PermissionAuditRepo)(nil)

// PermissionAuditRepo bitácora de cambios de la matriz de permisos.
type PermissionAuditRepo struct {
	q Querier
}

// NewPermissionAuditRepository construye el adaptador.
func NewPermissionAuditRepository(q Querier) *PermissionAuditRepo {
	return &PermissionAuditRepo{q: q}
}

// Record inserta un evento.
func (r *PermissionAuditRepo) Record(ctx context.Context, e *entity.PermissionAudit) error {
	query := `
		INSERT INTO permission_audit (id, actor_id, actor_name, role, perm_code, allowed_before, allowed_after, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	var actorID *string
	if e.ActorID != "" {
		actorID = &e.ActorID
	}
	_, err := r.q.Exec(ctx, query, e.ID, actorID, e.ActorName, e.Role, e.PermCode, e.AllowedBefore, e.AllowedAfter, e.At)
	if err != nil {
		return fmt.Errorf("insert permission_audit: %w", err)
	}
	return nil
}
