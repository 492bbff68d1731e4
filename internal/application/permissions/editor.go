package permissions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
)

// NoticeNothingToSave aviso informativo cuando se guarda sin cambios pendientes.
const NoticeNothingToSave = "No hay cambios pendientes por guardar"

// PendingChange edición no confirmada sobre un par (rol, permiso).
type PendingChange struct {
	Role     entity.Role
	PermCode string
	Allowed  bool
}

// CategoryGroup permisos visibles de una categoría.
type CategoryGroup struct {
	Category    string
	Permissions []entity.Permission
}

// SaveResult resultado de Save.
type SaveResult struct {
	Saved  int
	Notice string
}

// Editor mantiene la matriz de permisos, acumula ediciones pendientes como diferencia mínima
// contra la instantánea autoritativa y las envía en un único lote.
//
// Un Editor es propiedad de una única sesión de edición y no es seguro para uso concurrente.
type Editor struct {
	store   MatrixStore
	now     func() time.Time
	folder  cases.Caser
	loaded  bool
	perms   []entity.Permission
	known   map[string]struct{}
	allowed map[string]bool // autoritativo
	pending map[string]PendingChange
	filter  string
}

// NewEditor construye un editor sin datos; llamar Load antes de usarlo.
func NewEditor(store MatrixStore) *Editor {
	return &Editor{
		store:   store,
		now:     time.Now,
		folder:  cases.Fold(),
		known:   map[string]struct{}{},
		allowed: map[string]bool{},
		pending: map[string]PendingChange{},
	}
}

// WithClock reemplaza el reloj usado para updated_at (tests).
func (e *Editor) WithClock(now func() time.Time) *Editor {
	e.now = now
	return e
}

// Load obtiene catálogo y matriz. Ante fallo no queda matriz parcial: el editor sigue sin cargar.
func (e *Editor) Load(ctx context.Context) error {
	m, err := e.store.FetchMatrix(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	e.apply(m)
	return nil
}

// Refresh vuelve a leer la instantánea y descarta los pendientes que ya coinciden con ella
// o cuyo permiso salió del catálogo.
func (e *Editor) Refresh(ctx context.Context) error {
	if err := e.Load(ctx); err != nil {
		return err
	}
	for key, pc := range e.pending {
		_, known := e.known[pc.PermCode]
		if !known || e.authoritative(pc.Role, pc.PermCode) == pc.Allowed {
			delete(e.pending, key)
		}
	}
	return nil
}

func (e *Editor) apply(m *Matrix) {
	perms := make([]entity.Permission, len(m.Permissions))
	copy(perms, m.Permissions)
	sort.SliceStable(perms, func(i, j int) bool {
		if perms[i].Category != perms[j].Category {
			return perms[i].Category < perms[j].Category
		}
		return perms[i].Code < perms[j].Code
	})
	known := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		known[p.Code] = struct{}{}
	}
	allowed := make(map[string]bool, len(m.RolePermissions))
	for _, rp := range m.RolePermissions {
		allowed[repository.PairKey(rp.Role, rp.PermCode)] = rp.Allowed
	}
	e.perms, e.known, e.allowed, e.loaded = perms, known, allowed, true
}

// Loaded indica si hay una instantánea disponible.
func (e *Editor) Loaded() bool { return e.loaded }

func (e *Editor) authoritative(role entity.Role, permCode string) bool {
	return e.allowed[repository.PairKey(role, permCode)]
}

// CurrentValue valor efectivo: pendiente si existe, si no el autoritativo, si no false.
// admin siempre lee true.
func (e *Editor) CurrentValue(role entity.Role, permCode string) bool {
	if role.IsAdmin() {
		return true
	}
	if pc, ok := e.pending[repository.PairKey(role, permCode)]; ok {
		return pc.Allowed
	}
	return e.authoritative(role, permCode)
}

// Toggle invierte el valor efectivo del par. Es no-op para admin.
func (e *Editor) Toggle(role entity.Role, permCode string) {
	e.set(role, permCode, !e.CurrentValue(role, permCode))
}

// set registra el valor deseado manteniendo la diferencia mínima.
func (e *Editor) set(role entity.Role, permCode string, value bool) {
	if role.IsAdmin() || !role.IsValid() {
		return
	}
	if _, ok := e.known[permCode]; !ok {
		return
	}
	key := repository.PairKey(role, permCode)
	if value == e.authoritative(role, permCode) {
		delete(e.pending, key)
		return
	}
	e.pending[key] = PendingChange{Role: role, PermCode: permCode, Allowed: value}
}

// BulkSetForRole aplica enabled a todos los permisos visibles (según el filtro) de un rol.
func (e *Editor) BulkSetForRole(role entity.Role, enabled bool) {
	if role.IsAdmin() {
		return
	}
	for _, p := range e.VisiblePermissions() {
		e.set(role, p.Code, enabled)
	}
}

// BulkSetForPermission aplica enabled al permiso para todos los roles editables.
func (e *Editor) BulkSetForPermission(permCode string, enabled bool) {
	for _, role := range entity.EditableRoles() {
		e.set(role, permCode, enabled)
	}
}

// SetFilter define la búsqueda: subcadena sin distinción de mayúsculas sobre código, descripción o categoría.
func (e *Editor) SetFilter(query string) {
	e.filter = e.folder.String(strings.TrimSpace(query))
}

// VisiblePermissions permisos que pasan el filtro, ordenados por categoría y código.
func (e *Editor) VisiblePermissions() []entity.Permission {
	if e.filter == "" {
		out := make([]entity.Permission, len(e.perms))
		copy(out, e.perms)
		return out
	}
	out := make([]entity.Permission, 0, len(e.perms))
	for _, p := range e.perms {
		if e.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (e *Editor) matches(p entity.Permission) bool {
	for _, field := range []string{p.Code, p.Description, p.Category} {
		if strings.Contains(e.folder.String(field), e.filter) {
			return true
		}
	}
	return false
}

// Categories agrupa los permisos visibles por categoría.
func (e *Editor) Categories() []CategoryGroup {
	var groups []CategoryGroup
	for _, p := range e.VisiblePermissions() {
		if n := len(groups); n > 0 && groups[n-1].Category == p.Category {
			groups[n-1].Permissions = append(groups[n-1].Permissions, p)
			continue
		}
		groups = append(groups, CategoryGroup{Category: p.Category, Permissions: []entity.Permission{p}})
	}
	return groups
}

// Pending devuelve los cambios pendientes ordenados por rol y permiso.
func (e *Editor) Pending() []PendingChange {
	out := make([]PendingChange, 0, len(e.pending))
	for _, pc := range e.pending {
		out = append(out, pc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].PermCode < out[j].PermCode
	})
	return out
}

// HasPending indica si hay cambios sin guardar.
func (e *Editor) HasPending() bool { return len(e.pending) > 0 }

// Discard descarta los cambios pendientes sin contactar al almacenamiento.
func (e *Editor) Discard() {
	e.pending = map[string]PendingChange{}
}

// Save envía los pendientes en un único lote. Sin pendientes es un no-op con aviso.
// Si el lote falla los pendientes se conservan intactos. Si el lote se confirma se vacían
// y se recarga la instantánea; un fallo de esa recarga se devuelve como domain.ErrFetch.
func (e *Editor) Save(ctx context.Context) (SaveResult, error) {
	if len(e.pending) == 0 {
		return SaveResult{Notice: NoticeNothingToSave}, nil
	}
	now := e.now()
	pending := e.Pending()
	batch := make([]entity.RolePermission, 0, len(pending))
	for _, pc := range pending {
		batch = append(batch, entity.RolePermission{Role: pc.Role, PermCode: pc.PermCode, Allowed: pc.Allowed, UpdatedAt: now})
	}
	if err := e.store.SaveMatrix(ctx, batch); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %v", domain.ErrSave, err)
	}
	e.Discard()
	result := SaveResult{Saved: len(batch), Notice: fmt.Sprintf("%d cambios de permisos guardados", len(batch))}
	if err := e.Refresh(ctx); err != nil {
		return result, err
	}
	return result, nil
}
