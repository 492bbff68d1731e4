package http_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ordenes-api/internal/application/auth"
	"github.com/jhoicas/Ordenes-api/internal/application/orders"
	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
	"github.com/jhoicas/Ordenes-api/internal/application/users"
	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
	apphttp "github.com/jhoicas/Ordenes-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Ordenes-api/pkg/jwt"
	"github.com/jhoicas/Ordenes-api/pkg/logger"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "ordenes-api-test"
	testExpMin    = 60
)

var errBackend = errors.New("conexión rechazada")

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID, Username: "tester", Role: role}, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// memOrderRepo repositorio de órdenes en memoria con la semántica compare-and-set del real.
type memOrderRepo struct {
	mu        sync.Mutex
	orders    map[int64]*entity.Order
	seq       int64
	updateErr error
}

func newMemOrderRepo() *memOrderRepo { return &memOrderRepo{orders: map[int64]*entity.Order{}} }

func (r *memOrderRepo) seed(phase entity.Phase) *entity.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	o := &entity.Order{
		ID: r.seq, Code: fmt.Sprintf("OP-%06d", r.seq), Phase: phase, Status: entity.StatusAbierta,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	r.orders[o.ID] = o
	cp := *o
	return &cp
}

func (r *memOrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	o.ID = r.seq
	o.Code = fmt.Sprintf("OP-%06d", r.seq)
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) UpdatePhase(_ context.Context, c repository.PhaseChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	o, ok := r.orders[c.OrderID]
	if !ok || o.Phase != c.FromPhase {
		return domain.ErrConflict
	}
	o.Phase, o.Status, o.UpdatedAt = c.ToPhase, c.Status, c.UpdatedAt
	return nil
}

func (r *memOrderRepo) ListByFilter(_ context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Order
	for id := int64(1); id <= r.seq; id++ {
		o, ok := r.orders[id]
		if !ok || (f.Phase != "" && o.Phase != f.Phase) || (f.Status != "" && o.Status != f.Status) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

type fakePDF struct{}

func (fakePDF) GenerateOrderPDF(_ context.Context, o *entity.Order) ([]byte, error) {
	return []byte("%PDF-1.4 " + o.Code), nil
}

// memPermRepo matriz en memoria.
type memPermRepo struct {
	mu    sync.Mutex
	perms []entity.Permission
	rows  map[string]entity.RolePermission
}

func newMemPermRepo(rows ...entity.RolePermission) *memPermRepo {
	r := &memPermRepo{
		perms: []entity.Permission{
			{Code: entity.PermOrderPDF, Category: "Órdenes", Description: "Descargar hoja de la orden"},
			{Code: "catalogo.cliente.manage", Category: "Catálogos", Description: "Administrar clientes"},
		},
		rows: map[string]entity.RolePermission{},
	}
	for _, rp := range rows {
		r.rows[repository.PairKey(rp.Role, rp.PermCode)] = rp
	}
	return r
}

func (r *memPermRepo) ListPermissions(context.Context) ([]entity.Permission, error) {
	return append([]entity.Permission(nil), r.perms...), nil
}

func (r *memPermRepo) ListRolePermissions(context.Context) ([]entity.RolePermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.RolePermission, 0, len(r.rows))
	for _, rp := range r.rows {
		out = append(out, rp)
	}
	return out, nil
}

func (r *memPermRepo) AllowedFor(_ context.Context, pairs []entity.RolePermission) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]bool{}
	for _, p := range pairs {
		k := repository.PairKey(p.Role, p.PermCode)
		out[k] = r.rows[k].Allowed
	}
	return out, nil
}

func (r *memPermRepo) Upsert(_ context.Context, items []entity.RolePermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		r.rows[repository.PairKey(it.Role, it.PermCode)] = it
	}
	return nil
}

func (r *memPermRepo) HasPermission(_ context.Context, role entity.Role, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[repository.PairKey(role, code)].Allowed, nil
}

type memTx struct{ repo *memPermRepo }

func (t memTx) RunPermissions(_ context.Context, fn func(repository.PermissionRepository) error) error {
	return fn(t.repo)
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, *entity.PermissionAudit) error { return nil }

// memUserRepo sólo lo necesario para login y administración.
type memUserRepo struct {
	repository.UserRepository
	users map[string]*entity.User
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) List(context.Context, int, int) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

type testEnv struct {
	app    *fiber.App
	orders *memOrderRepo
	perms  *memPermRepo
	users  *memUserRepo
}

// newTestEnv arma el router completo sobre repositorios en memoria.
func newTestEnv(t *testing.T, loginRate int) *testEnv {
	t.Helper()
	log := logger.Nop()
	env := &testEnv{
		orders: newMemOrderRepo(),
		perms:  newMemPermRepo(),
		users: &memUserRepo{users: map[string]*entity.User{
			testUserID: {ID: testUserID, Username: "tester", Role: entity.RoleAdmin, Active: true},
		}},
	}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:             auth.NewAuthUseCase(env.users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		OrderUC:            orders.NewOrderUseCase(env.orders, fakePDF{}),
		Transitions:        orders.NewTransitionService(env.orders, log),
		PermissionsAdminUC: permissions.NewAdminUseCase(env.perms, memTx{repo: env.perms}, nopAudit{}, nil, log),
		Checker:            permissions.NewChecker(env.perms, nil, time.Minute, log),
		UsersAdminUC:       users.NewAdminUseCase(env.users, log),
		JWTSecret:          testJWTSecret,
		LoginRatePerMinute: loginRate,
	})
	env.app = app
	return env
}
