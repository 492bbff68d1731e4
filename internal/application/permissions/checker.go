package permissions

import (
	"context"
	"time"

	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
	"github.com/jhoicas/Ordenes-api/pkg/logger"
)

// Checker resuelve has_permission(perm_code) para el rol del actor.
type Checker struct {
	repo  repository.PermissionRepository
	cache PermissionCache // opcional
	ttl   time.Duration
	log   *logger.Logger
}

// NewChecker construye el verificador. cache nil desactiva la caché.
func NewChecker(repo repository.PermissionRepository, cache PermissionCache, ttl time.Duration, log *logger.Logger) *Checker {
	return &Checker{repo: repo, cache: cache, ttl: ttl, log: log.Component("permissions.check")}
}

// HasPermission admin siempre tiene permiso sin consultar el almacenamiento.
// Los errores de caché se registran y se consulta directamente la base de datos.
func (c *Checker) HasPermission(ctx context.Context, role entity.Role, permCode string) (bool, error) {
	if role.IsAdmin() {
		return true, nil
	}
	if !role.IsValid() || permCode == "" {
		return false, nil
	}
	key := c.cacheKey(ctx, role, permCode)
	if key != "" {
		allowed, found, err := c.cache.Get(ctx, key)
		if err != nil {
			c.log.Warn().Err(err).Str("role", string(role)).Str("perm_code", permCode).Msg("leer caché de permisos")
		} else if found {
			return allowed, nil
		}
	}
	allowed, err := c.repo.HasPermission(ctx, role, permCode)
	if err != nil {
		return false, err
	}
	if key != "" {
		if err := c.cache.Set(ctx, key, allowed, c.ttl); err != nil {
			c.log.Warn().Err(err).Msg("escribir caché de permisos")
		}
	}
	return allowed, nil
}

// cacheKey se resuelve antes de consultar la base. Vacío cuando no hay caché o falla Redis.
func (c *Checker) cacheKey(ctx context.Context, role entity.Role, permCode string) string {
	if c.cache == nil {
		return ""
	}
	key, err := c.cache.Key(ctx, role, permCode)
	if err != nil {
		c.log.Warn().Err(err).Str("role", string(role)).Str("perm_code", permCode).Msg("versión de caché de permisos")
		return ""
	}
	return key
}
