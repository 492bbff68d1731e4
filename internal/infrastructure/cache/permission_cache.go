package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/pkg/config"
)

const permVersionKey = "perm:version"

var _ permissions.PermissionCache = (*PermissionCache)(nil)

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// PermissionCache resultados de has_permission en Redis con llaves versionadas:
// invalidar incrementa la versión y las llaves anteriores expiran solas por TTL.
type PermissionCache struct {
	client *redis.Client
}

// NewPermissionCache construye la caché. Un cliente nil deja la caché siempre vacía.
func NewPermissionCache(client *redis.Client) *PermissionCache {
	return &PermissionCache{client: client}
}

func (c *PermissionCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, permVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, permVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, permVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Key llave perm:v{versión}:{rol}:{permiso} con la versión vigente en este momento.
func (c *PermissionCache) Key(ctx context.Context, role entity.Role, permCode string) (string, error) {
	if c == nil || c.client == nil {
		return "", nil
	}
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{"perm", fmt.Sprintf("v%d", ver), string(role), permCode}, ":"), nil
}

// Get found=false si no hay entrada para la llave.
func (c *PermissionCache) Get(ctx context.Context, key string) (bool, bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, false, nil
	}
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return val == "1", true, nil
}

// Set guarda el resultado con TTL bajo una llave obtenida con Key.
func (c *PermissionCache) Set(ctx context.Context, key string, allowed bool, ttl time.Duration) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	val := "0"
	if allowed {
		val = "1"
	}
	return c.client.Set(ctx, key, val, ttl).Err()
}

// Invalidate descarta todas las entradas incrementando la versión.
func (c *PermissionCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, permVersionKey).Err()
}
