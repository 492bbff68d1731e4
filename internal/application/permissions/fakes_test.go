package permissions_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
)

var errBackend = errors.New("backend no disponible")

func catalog() []entity.Permission {
	return []entity.Permission{
		{Code: "catalogo.cliente.manage", Category: "Catálogos", Description: "Administrar clientes"},
		{Code: "catalogo.proyecto.manage", Category: "Catálogos", Description: "Administrar proyectos"},
		{Code: "catalogo.despacho.manage", Category: "Catálogos", Description: "Métodos de despacho"},
		{Code: "catalogo.pago.manage", Category: "Catálogos", Description: "Tipos de pago"},
		{Code: "catalogo.clase.manage", Category: "Catálogos", Description: "Clases de orden"},
		{Code: "orden.pdf.descargar", Category: "Órdenes", Description: "Descargar hoja de la orden"},
		{Code: "reporte.ventas.ver", Category: "Reportes", Description: "Ver reporte de ventas"},
	}
}

// memPermRepo implementación en memoria de repository.PermissionRepository.
type memPermRepo struct {
	perms      []entity.Permission
	rows       map[string]entity.RolePermission
	listErr    error
	upsertErr  error
	hasCalls   int
	upsertHits int
	// onHas corre después de leer el valor, antes de devolverlo.
	onHas func()
}

func newMemPermRepo(rows ...entity.RolePermission) *memPermRepo {
	r := &memPermRepo{perms: catalog(), rows: map[string]entity.RolePermission{}}
	for _, rp := range rows {
		r.rows[repository.PairKey(rp.Role, rp.PermCode)] = rp
	}
	return r
}

func (r *memPermRepo) ListPermissions(context.Context) ([]entity.Permission, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]entity.Permission(nil), r.perms...), nil
}

func (r *memPermRepo) ListRolePermissions(context.Context) ([]entity.RolePermission, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]entity.RolePermission, 0, len(r.rows))
	for _, rp := range r.rows {
		out = append(out, rp)
	}
	return out, nil
}

func (r *memPermRepo) AllowedFor(_ context.Context, pairs []entity.RolePermission) (map[string]bool, error) {
	out := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		key := repository.PairKey(p.Role, p.PermCode)
		out[key] = r.rows[key].Allowed
	}
	return out, nil
}

func (r *memPermRepo) Upsert(_ context.Context, items []entity.RolePermission) error {
	r.upsertHits++
	if r.upsertErr != nil {
		return r.upsertErr
	}
	for _, it := range items {
		r.rows[repository.PairKey(it.Role, it.PermCode)] = it
	}
	return nil
}

func (r *memPermRepo) HasPermission(_ context.Context, role entity.Role, permCode string) (bool, error) {
	r.hasCalls++
	allowed := r.rows[repository.PairKey(role, permCode)].Allowed
	if r.onHas != nil {
		r.onHas()
	}
	return allowed, nil
}

// memTx ejecuta fn directamente sobre el repositorio en memoria.
type memTx struct{ repo *memPermRepo }

func (t memTx) RunPermissions(ctx context.Context, fn func(repo repository.PermissionRepository) error) error {
	return fn(t.repo)
}

type memAudit struct {
	events []*entity.PermissionAudit
	err    error
}

func (a *memAudit) Record(_ context.Context, e *entity.PermissionAudit) error {
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, e)
	return nil
}

type memCache struct {
	data        map[string]bool
	version     int
	keyErr      error
	getErr      error
	invalidated int
}

func newMemCache() *memCache { return &memCache{data: map[string]bool{}} }

func (c *memCache) Key(_ context.Context, role entity.Role, code string) (string, error) {
	if c.keyErr != nil {
		return "", c.keyErr
	}
	return fmt.Sprintf("v%d:%s", c.version, repository.PairKey(role, code)), nil
}

func (c *memCache) Get(_ context.Context, key string) (bool, bool, error) {
	if c.getErr != nil {
		return false, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, allowed bool, _ time.Duration) error {
	c.data[key] = allowed
	return nil
}

// Invalidate sube la versión; las entradas viejas quedan pero ya no se consultan.
func (c *memCache) Invalidate(context.Context) error {
	c.invalidated++
	c.version++
	return nil
}

// fakeStore MatrixStore en memoria que registra cada lote.
type fakeStore struct {
	repo     *memPermRepo
	batches  [][]entity.RolePermission
	fetches  int
	fetchErr error
	saveErr  error
	// drop descarta silenciosamente el par indicado al guardar (divergencia del almacenamiento).
	drop string
}

func newFakeStore(rows ...entity.RolePermission) *fakeStore {
	return &fakeStore{repo: newMemPermRepo(rows...)}
}

func (s *fakeStore) FetchMatrix(ctx context.Context) (*permissions.Matrix, error) {
	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	perms, _ := s.repo.ListPermissions(ctx)
	rows, _ := s.repo.ListRolePermissions(ctx)
	return &permissions.Matrix{Permissions: perms, RolePermissions: rows}, nil
}

func (s *fakeStore) SaveMatrix(ctx context.Context, updates []entity.RolePermission) error {
	s.batches = append(s.batches, updates)
	if s.saveErr != nil {
		return s.saveErr
	}
	kept := make([]entity.RolePermission, 0, len(updates))
	for _, u := range updates {
		if repository.PairKey(u.Role, u.PermCode) == s.drop {
			continue
		}
		kept = append(kept, u)
	}
	return s.repo.Upsert(ctx, kept)
}

func allow(role entity.Role, code string, v bool) entity.RolePermission {
	return entity.RolePermission{Role: role, PermCode: code, Allowed: v}
}
