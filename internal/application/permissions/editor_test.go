package permissions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
)

const permCliente = "catalogo.cliente.manage"

var saveAt = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func loadedEditor(t *testing.T, store *fakeStore) *permissions.Editor {
	t.Helper()
	e := permissions.NewEditor(store).WithClock(func() time.Time { return saveAt })
	require.NoError(t, e.Load(context.Background()))
	return e
}

func TestEditor_CurrentValue_AusenciaEsFalse(t *testing.T) {
	e := loadedEditor(t, newFakeStore(allow(entity.RoleComercial, permCliente, true)))
	assert.True(t, e.CurrentValue(entity.RoleComercial, permCliente))
	assert.False(t, e.CurrentValue(entity.RoleLogistica, permCliente))
}

// Alternar dos veces regresa al valor autoritativo y deja el conjunto pendiente vacío.
func TestEditor_Toggle_DiferenciaMinima(t *testing.T) {
	e := loadedEditor(t, newFakeStore(allow(entity.RoleComercial, permCliente, true)))

	e.Toggle(entity.RoleComercial, permCliente)
	assert.False(t, e.CurrentValue(entity.RoleComercial, permCliente))
	assert.Len(t, e.Pending(), 1)

	e.Toggle(entity.RoleComercial, permCliente)
	assert.True(t, e.CurrentValue(entity.RoleComercial, permCliente))
	assert.Empty(t, e.Pending())
	assert.False(t, e.HasPending())
}

func TestEditor_AdminInmune(t *testing.T) {
	store := newFakeStore()
	e := loadedEditor(t, store)

	e.Toggle(entity.RoleAdmin, permCliente)
	e.BulkSetForRole(entity.RoleAdmin, false)
	e.BulkSetForPermission(permCliente, false)

	for _, p := range catalog() {
		assert.True(t, e.CurrentValue(entity.RoleAdmin, p.Code))
	}
	assert.Empty(t, e.Pending())
}

func TestEditor_BulkSetForPermission_ExcluyeAdmin(t *testing.T) {
	e := loadedEditor(t, newFakeStore(allow(entity.RoleComercial, permCliente, true)))

	e.BulkSetForPermission(permCliente, true)

	pending := e.Pending()
	assert.Len(t, pending, 5, "seis roles editables menos el que ya lo tenía")
	for _, pc := range pending {
		assert.NotEqual(t, entity.RoleAdmin, pc.Role)
		assert.True(t, pc.Allowed)
	}
}

// Escenario E: 5 permisos visibles, 2 ya en false → sólo 3 pendientes.
func TestEditor_BulkSetForRole_SoloCambiosReales(t *testing.T) {
	store := newFakeStore(
		allow(entity.RoleLogistica, "catalogo.cliente.manage", true),
		allow(entity.RoleLogistica, "catalogo.proyecto.manage", true),
		allow(entity.RoleLogistica, "catalogo.despacho.manage", true),
		allow(entity.RoleLogistica, "catalogo.pago.manage", false),
		allow(entity.RoleLogistica, "orden.pdf.descargar", true),
	)
	e := loadedEditor(t, store)
	e.SetFilter("catalogo")
	require.Len(t, e.VisiblePermissions(), 5)

	e.BulkSetForRole(entity.RoleLogistica, false)

	assert.Len(t, e.Pending(), 3)
	assert.True(t, e.CurrentValue(entity.RoleLogistica, "orden.pdf.descargar"), "fuera del filtro no cambia")
}

func TestEditor_Filtro_SinDistinguirMayusculasNiAfectarPendientes(t *testing.T) {
	e := loadedEditor(t, newFakeStore())
	e.Toggle(entity.RoleFinanciera, "reporte.ventas.ver")

	e.SetFilter("ÓRDENES")
	visible := e.VisiblePermissions()
	require.Len(t, visible, 1)
	assert.Equal(t, "orden.pdf.descargar", visible[0].Code)

	e.SetFilter("DESPACHO")
	require.Len(t, e.VisiblePermissions(), 1, "coincide por código y descripción")

	assert.True(t, e.CurrentValue(entity.RoleFinanciera, "reporte.ventas.ver"), "el pendiente oculto se conserva")
	assert.Len(t, e.Pending(), 1)

	e.SetFilter("")
	assert.Len(t, e.VisiblePermissions(), len(catalog()))
}

func TestEditor_Categories(t *testing.T) {
	e := loadedEditor(t, newFakeStore())
	groups := e.Categories()
	require.Len(t, groups, 3)
	assert.Equal(t, "Catálogos", groups[0].Category)
	assert.Len(t, groups[0].Permissions, 5)
	assert.Equal(t, "Reportes", groups[1].Category)
	assert.Equal(t, "Órdenes", groups[2].Category)
}

// N pendientes → un único lote con exactamente esas N tuplas; luego pendientes vacíos.
func TestEditor_Save_UnLoteYRecarga(t *testing.T) {
	store := newFakeStore()
	e := loadedEditor(t, store)
	e.Toggle(entity.RoleComercial, permCliente)
	e.Toggle(entity.RoleInventarios, permCliente)
	e.Toggle(entity.RoleFacturacion, "reporte.ventas.ver")

	res, err := e.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Saved)

	require.Len(t, store.batches, 1)
	batch := store.batches[0]
	require.Len(t, batch, 3)
	for _, rp := range batch {
		assert.True(t, rp.Allowed)
		assert.Equal(t, saveAt, rp.UpdatedAt)
	}
	assert.Empty(t, e.Pending())
	assert.Equal(t, 2, store.fetches, "carga inicial + recarga tras guardar")
	assert.True(t, e.CurrentValue(entity.RoleComercial, permCliente))
}

// Tras guardar manda la instantánea del almacenamiento, no los pendientes locales.
func TestEditor_Save_FuenteDeVerdadEsElAlmacenamiento(t *testing.T) {
	store := newFakeStore()
	store.drop = repository.PairKey(entity.RoleInventarios, permCliente)
	e := loadedEditor(t, store)
	e.Toggle(entity.RoleComercial, permCliente)
	e.Toggle(entity.RoleInventarios, permCliente)

	_, err := e.Save(context.Background())
	require.NoError(t, err)

	assert.True(t, e.CurrentValue(entity.RoleComercial, permCliente))
	assert.False(t, e.CurrentValue(entity.RoleInventarios, permCliente))
}

func TestEditor_Save_SinPendientesEsNoop(t *testing.T) {
	store := newFakeStore()
	e := loadedEditor(t, store)

	res, err := e.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, permissions.NoticeNothingToSave, res.Notice)
	assert.Empty(t, store.batches)
}

func TestEditor_Save_FalloConservaPendientes(t *testing.T) {
	store := newFakeStore()
	e := loadedEditor(t, store)
	e.Toggle(entity.RoleProduccion, permCliente)
	store.saveErr = errBackend

	_, err := e.Save(context.Background())
	assert.ErrorIs(t, err, domain.ErrSave)
	assert.True(t, domain.IsRetryable(err))
	assert.Len(t, e.Pending(), 1)
	assert.True(t, e.CurrentValue(entity.RoleProduccion, permCliente))

	store.saveErr = nil
	_, err = e.Save(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.batches, 2, "el reintento reenvía el mismo lote")
	assert.Equal(t, store.batches[0], store.batches[1])
}

// Escenario D: un cambio externo ya aplicado hace obsoleto el pendiente; Refresh lo descarta.
func TestEditor_Refresh_DescartaPendientesQueYaCoinciden(t *testing.T) {
	store := newFakeStore()
	e := loadedEditor(t, store)
	e.Toggle(entity.RoleFacturacion, permCliente)
	e.Toggle(entity.RoleLogistica, permCliente)
	require.Len(t, e.Pending(), 2)

	require.NoError(t, store.repo.Upsert(context.Background(), []entity.RolePermission{
		allow(entity.RoleFacturacion, permCliente, true),
	}))
	require.NoError(t, e.Refresh(context.Background()))

	pending := e.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, entity.RoleLogistica, pending[0].Role)
	assert.True(t, e.CurrentValue(entity.RoleFacturacion, permCliente))
}

func TestEditor_Refresh_DescartaPendientesDePermisosRetirados(t *testing.T) {
	store := newFakeStore()
	e := loadedEditor(t, store)
	e.Toggle(entity.RoleComercial, permCliente)
	e.Toggle(entity.RoleComercial, "reporte.ventas.ver")
	require.Len(t, e.Pending(), 2)

	store.repo.perms = store.repo.perms[:len(store.repo.perms)-1]
	require.NoError(t, e.Refresh(context.Background()))

	pending := e.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, permCliente, pending[0].PermCode)

	res, err := e.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Saved)
	require.Len(t, store.batches, 1)
	assert.Equal(t, permCliente, store.batches[0][0].PermCode)
}

func TestEditor_Load_FalloSinMatriz(t *testing.T) {
	store := newFakeStore()
	store.fetchErr = errBackend
	e := permissions.NewEditor(store)

	err := e.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.False(t, e.Loaded())
	assert.Empty(t, e.VisiblePermissions())
}

func TestEditor_Discard(t *testing.T) {
	store := newFakeStore()
	e := loadedEditor(t, store)
	e.BulkSetForRole(entity.RoleComercial, true)
	require.True(t, e.HasPending())

	e.Discard()
	assert.Empty(t, e.Pending())
	assert.Empty(t, store.batches)
}

func TestEditor_PermisoDesconocidoIgnorado(t *testing.T) {
	e := loadedEditor(t, newFakeStore())
	e.Toggle(entity.RoleComercial, "no.existe")
	assert.Empty(t, e.Pending())
}
