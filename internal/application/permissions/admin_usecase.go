package permissions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
	"github.com/jhoicas/Ordenes-api/pkg/logger"
)

// AdminUseCase casos de uso del endpoint de administración de permisos (sólo admin).
type AdminUseCase struct {
	repo  repository.PermissionRepository
	tx    PermissionTxRunner
	audit repository.PermissionAuditRepository
	cache PermissionCache // opcional
	log   *logger.Logger
	now   func() time.Time
}

// NewAdminUseCase construye el caso de uso. cache puede ser nil.
func NewAdminUseCase(
	repo repository.PermissionRepository,
	tx PermissionTxRunner,
	audit repository.PermissionAuditRepository,
	cache PermissionCache,
	log *logger.Logger,
) *AdminUseCase {
	return &AdminUseCase{repo: repo, tx: tx, audit: audit, cache: cache, log: log.Component("permissions.admin"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *AdminUseCase) WithClock(now func() time.Time) *AdminUseCase {
	uc.now = now
	return uc
}

// Matrix devuelve el catálogo completo y las tuplas rol-permiso (sin filas de admin).
func (uc *AdminUseCase) Matrix(ctx context.Context, actor Actor) (*dto.PermissionMatrixResponse, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	perms, err := uc.repo.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: catálogo: %v", domain.ErrFetch, err)
	}
	rolePerms, err := uc.repo.ListRolePermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: matriz: %v", domain.ErrFetch, err)
	}
	return MatrixToDTO(&Matrix{Permissions: perms, RolePermissions: rolePerms}), nil
}

// Update aplica un lote de cambios con upsert (llave role+perm_code) en una transacción y
// registra un evento de auditoría por cambio. La auditoría es de mejor esfuerzo: si falla se
// registra en el log y la petición sigue siendo exitosa.
func (uc *AdminUseCase) Update(ctx context.Context, actor Actor, updates []dto.RolePermissionUpdate) (*dto.UpdatePermissionsResponse, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	items, err := uc.validate(ctx, updates)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	for i := range items {
		items[i].UpdatedAt = now
	}

	var before map[string]bool
	err = uc.tx.RunPermissions(ctx, func(repo repository.PermissionRepository) error {
		var err error
		before, err = repo.AllowedFor(ctx, items)
		if err != nil {
			return fmt.Errorf("leer valores previos: %w", err)
		}
		return repo.Upsert(ctx, items)
	})
	if err != nil {
		uc.log.Error().Err(err).Int("updates", len(items)).Msg("upsert de permisos")
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	for _, it := range items {
		event := &entity.PermissionAudit{
			ID:            uuid.New().String(),
			ActorID:       actor.ID,
			ActorName:     actor.Username,
			Role:          it.Role,
			PermCode:      it.PermCode,
			AllowedBefore: before[repository.PairKey(it.Role, it.PermCode)],
			AllowedAfter:  it.Allowed,
			At:            now,
		}
		if err := uc.audit.Record(ctx, event); err != nil {
			uc.log.Warn().Err(err).
				Str("actor", actor.Username).
				Str("role", string(it.Role)).
				Str("perm_code", it.PermCode).
				Msg("no se pudo registrar auditoría de permiso")
		}
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("invalidar caché de permisos")
		}
	}

	uc.log.Info().Str("actor", actor.Username).Int("updates", len(items)).Msg("matriz de permisos actualizada")
	return &dto.UpdatePermissionsResponse{
		Success: true,
		Message: fmt.Sprintf("Se actualizaron %d permisos", len(items)),
	}, nil
}

// validate colapsa duplicados (gana el último), descarta admin y exige permisos del catálogo.
func (uc *AdminUseCase) validate(ctx context.Context, updates []dto.RolePermissionUpdate) ([]entity.RolePermission, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no hay cambios", domain.ErrInvalidInput)
	}
	perms, err := uc.repo.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: catálogo: %v", domain.ErrPersistence, err)
	}
	known := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		known[p.Code] = struct{}{}
	}

	index := make(map[string]int, len(updates))
	items := make([]entity.RolePermission, 0, len(updates))
	for _, u := range updates {
		role := entity.Role(u.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: rol %q desconocido", domain.ErrInvalidInput, u.Role)
		}
		if role.IsAdmin() {
			return nil, fmt.Errorf("%w: los permisos de admin no son editables", domain.ErrInvalidInput)
		}
		if _, ok := known[u.PermCode]; !ok {
			return nil, fmt.Errorf("%w: permiso %q no existe", domain.ErrInvalidInput, u.PermCode)
		}
		key := repository.PairKey(role, u.PermCode)
		if i, dup := index[key]; dup {
			items[i].Allowed = u.Allowed
			continue
		}
		index[key] = len(items)
		items = append(items, entity.RolePermission{Role: role, PermCode: u.PermCode, Allowed: u.Allowed})
	}
	return items, nil
}

// LocalStore adapta AdminUseCase al puerto MatrixStore para un editor en el mismo proceso.
type LocalStore struct {
	uc    *AdminUseCase
	actor Actor
}

// NewLocalStore construye el adaptador con el actor que firma los cambios.
func NewLocalStore(uc *AdminUseCase, actor Actor) *LocalStore {
	return &LocalStore{uc: uc, actor: actor}
}

// FetchMatrix implementa MatrixStore.
func (s *LocalStore) FetchMatrix(ctx context.Context) (*Matrix, error) {
	out, err := s.uc.Matrix(ctx, s.actor)
	if err != nil {
		return nil, err
	}
	return MatrixFromDTO(out), nil
}

// SaveMatrix implementa MatrixStore.
func (s *LocalStore) SaveMatrix(ctx context.Context, updates []entity.RolePermission) error {
	_, err := s.uc.Update(ctx, s.actor, UpdatesToDTO(updates))
	return err
}

// MatrixToDTO mapea la matriz al formato del endpoint, omitiendo filas de admin.
func MatrixToDTO(m *Matrix) *dto.PermissionMatrixResponse {
	out := &dto.PermissionMatrixResponse{
		Permissions:     make([]dto.PermissionDTO, 0, len(m.Permissions)),
		RolePermissions: make([]dto.RolePermissionDTO, 0, len(m.RolePermissions)),
	}
	for _, p := range m.Permissions {
		out.Permissions = append(out.Permissions, dto.PermissionDTO{
			PermCode: p.Code, Category: p.Category, Description: p.Description, CreatedAt: p.CreatedAt,
		})
	}
	for _, rp := range m.RolePermissions {
		if rp.Role.IsAdmin() {
			continue
		}
		out.RolePermissions = append(out.RolePermissions, dto.RolePermissionDTO{
			Role: string(rp.Role), PermCode: rp.PermCode, Allowed: rp.Allowed, UpdatedAt: rp.UpdatedAt,
		})
	}
	return out
}

// MatrixFromDTO mapea la respuesta del endpoint a la matriz de dominio.
func MatrixFromDTO(in *dto.PermissionMatrixResponse) *Matrix {
	m := &Matrix{
		Permissions:     make([]entity.Permission, 0, len(in.Permissions)),
		RolePermissions: make([]entity.RolePermission, 0, len(in.RolePermissions)),
	}
	for _, p := range in.Permissions {
		m.Permissions = append(m.Permissions, entity.Permission{
			Code: p.PermCode, Category: p.Category, Description: p.Description, CreatedAt: p.CreatedAt,
		})
	}
	for _, rp := range in.RolePermissions {
		m.RolePermissions = append(m.RolePermissions, entity.RolePermission{
			Role: entity.Role(rp.Role), PermCode: rp.PermCode, Allowed: rp.Allowed, UpdatedAt: rp.UpdatedAt,
		})
	}
	return m
}

// UpdatesToDTO mapea un lote de tuplas al cuerpo del PUT.
func UpdatesToDTO(items []entity.RolePermission) []dto.RolePermissionUpdate {
	out := make([]dto.RolePermissionUpdate, 0, len(items))
	for _, it := range items {
		out = append(out, dto.RolePermissionUpdate{Role: string(it.Role), PermCode: it.PermCode, Allowed: it.Allowed})
	}
	return out
}
