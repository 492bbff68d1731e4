package permissions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
	"github.com/jhoicas/Ordenes-api/pkg/logger"
)

func TestChecker_AdminSinConsultar(t *testing.T) {
	repo := newMemPermRepo()
	c := permissions.NewChecker(repo, nil, time.Minute, logger.Nop())

	ok, err := c.HasPermission(context.Background(), entity.RoleAdmin, "cualquier.cosa")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, repo.hasCalls)
}

func TestChecker_EntradaInvalida(t *testing.T) {
	repo := newMemPermRepo()
	c := permissions.NewChecker(repo, nil, time.Minute, logger.Nop())

	ok, _ := c.HasPermission(context.Background(), entity.Role("bodega"), permCliente)
	assert.False(t, ok)
	ok, _ = c.HasPermission(context.Background(), entity.RoleComercial, "")
	assert.False(t, ok)
	assert.Zero(t, repo.hasCalls)
}

func TestChecker_CacheEvitaSegundaConsulta(t *testing.T) {
	repo := newMemPermRepo(allow(entity.RoleComercial, permCliente, true))
	cache := newMemCache()
	c := permissions.NewChecker(repo, cache, time.Minute, logger.Nop())

	for i := 0; i < 3; i++ {
		ok, err := c.HasPermission(context.Background(), entity.RoleComercial, permCliente)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, repo.hasCalls)
}

func TestChecker_FalloDeCacheConsultaLaBase(t *testing.T) {
	repo := newMemPermRepo(allow(entity.RoleLogistica, permCliente, true))
	cache := newMemCache()
	cache.getErr = errBackend
	c := permissions.NewChecker(repo, cache, time.Minute, logger.Nop())

	ok, err := c.HasPermission(context.Background(), entity.RoleLogistica, permCliente)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, repo.hasCalls)
}

func TestChecker_InvalidacionDuranteLaConsultaNoDejaValorViejo(t *testing.T) {
	repo := newMemPermRepo(allow(entity.RoleComercial, permCliente, true))
	cache := newMemCache()
	c := permissions.NewChecker(repo, cache, time.Minute, logger.Nop())
	ctx := context.Background()

	// La revocación se confirma entre la lectura de la base y la escritura en caché.
	repo.onHas = func() {
		repo.onHas = nil
		repo.rows[repository.PairKey(entity.RoleComercial, permCliente)] = allow(entity.RoleComercial, permCliente, false)
		require.NoError(t, cache.Invalidate(ctx))
	}

	ok, err := c.HasPermission(ctx, entity.RoleComercial, permCliente)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.HasPermission(ctx, entity.RoleComercial, permCliente)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, repo.hasCalls)
}

func TestChecker_FalloDeVersionConsultaLaBase(t *testing.T) {
	repo := newMemPermRepo(allow(entity.RoleProduccion, permCliente, true))
	cache := newMemCache()
	cache.keyErr = errBackend
	c := permissions.NewChecker(repo, cache, time.Minute, logger.Nop())

	ok, err := c.HasPermission(context.Background(), entity.RoleProduccion, permCliente)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, cache.data)
}
