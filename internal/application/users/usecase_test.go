package users_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/application/users"
	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/pkg/logger"
)

type memUserRepo struct {
	byID map[string]*entity.User
}

func newMemUserRepo(list ...*entity.User) *memUserRepo {
	r := &memUserRepo{byID: map[string]*entity.User{}}
	for _, u := range list {
		r.byID[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.byID[id].PasswordHash = hash
	return nil
}

func (r *memUserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func fixture() (*memUserRepo, *users.AdminUseCase) {
	repo := newMemUserRepo(
		&entity.User{ID: "admin-1", Username: "gerencia", Role: entity.RoleAdmin, Active: true},
		&entity.User{ID: "com-1", Username: "ventas", Role: entity.RoleComercial, Active: true},
	)
	uc := users.NewAdminUseCase(repo, logger.Nop()).WithClock(func() time.Time { return now })
	return repo, uc
}

func TestHandle_ActorDebeSerAdminEnLaBase(t *testing.T) {
	repo, uc := fixture()
	ctx := context.Background()

	_, err := uc.Handle(ctx, "com-1", dto.AdminUsersRequest{Action: dto.UserActionList})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Handle(ctx, "no-existe", dto.AdminUsersRequest{Action: dto.UserActionList})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	repo.byID["admin-1"].Active = false
	_, err = uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionList})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestHandle_List(t *testing.T) {
	_, uc := fixture()
	out, err := uc.Handle(context.Background(), "admin-1", dto.AdminUsersRequest{Action: dto.UserActionList})
	require.NoError(t, err)
	require.Len(t, out.Users, 2)
	assert.Equal(t, "gerencia", out.Users[0].Username)
}

func TestHandle_Create(t *testing.T) {
	repo, uc := fixture()
	out, err := uc.Handle(context.Background(), "admin-1", dto.AdminUsersRequest{
		Action: dto.UserActionCreate, Username: "  Bodega1 ", Role: "inventarios", Password: "segura123",
	})
	require.NoError(t, err)
	require.NotNil(t, out.User)
	assert.Equal(t, "bodega1", out.User.Username)
	assert.Equal(t, "bodega1", out.User.FullName)
	assert.True(t, out.User.Active)
	assert.Equal(t, now, out.User.CreatedAt)

	stored := repo.byID[out.User.ID]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("segura123")))
}

func TestHandle_Create_Validaciones(t *testing.T) {
	_, uc := fixture()
	ctx := context.Background()

	_, err := uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionCreate, Username: "ventas", Role: "comercial", Password: "segura123"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionCreate, Username: "nuevo", Role: "comercial", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	_, err = uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionCreate, Username: "nuevo", Role: "bodega", Password: "segura123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionCreate, Role: "comercial", Password: "segura123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandle_Update(t *testing.T) {
	repo, uc := fixture()
	inactive := false
	out, err := uc.Handle(context.Background(), "admin-1", dto.AdminUsersRequest{
		Action: dto.UserActionUpdate, UserID: "com-1", FullName: "Ventas Norte", Role: "logistica", Active: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "logistica", out.User.Role)
	assert.False(t, repo.byID["com-1"].Active)
	assert.Equal(t, "Ventas Norte", repo.byID["com-1"].FullName)
}

func TestHandle_Update_UsernameOcupado(t *testing.T) {
	_, uc := fixture()
	_, err := uc.Handle(context.Background(), "admin-1", dto.AdminUsersRequest{
		Action: dto.UserActionUpdate, UserID: "com-1", Username: "GERENCIA",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestHandle_Update_NoSeDegradaASiMismo(t *testing.T) {
	_, uc := fixture()
	_, err := uc.Handle(context.Background(), "admin-1", dto.AdminUsersRequest{
		Action: dto.UserActionUpdate, UserID: "admin-1", Role: "comercial",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandle_Password(t *testing.T) {
	repo, uc := fixture()
	ctx := context.Background()

	_, err := uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionPassword, UserID: "com-1", Password: "1234567"})
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	_, err = uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionPassword, UserID: "com-1", Password: strings.Repeat("ñ", 37)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionPassword, UserID: "com-1", Password: "12345678"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.byID["com-1"].PasswordHash), []byte("12345678")))

	_, err = uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionPassword, UserID: "x", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestHandle_Delete(t *testing.T) {
	repo, uc := fixture()
	ctx := context.Background()

	_, err := uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionDelete, UserID: "admin-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Handle(ctx, "admin-1", dto.AdminUsersRequest{Action: dto.UserActionDelete, UserID: "com-1"})
	require.NoError(t, err)
	assert.NotContains(t, repo.byID, "com-1")
}

func TestHandle_AccionDesconocida(t *testing.T) {
	_, uc := fixture()
	_, err := uc.Handle(context.Background(), "admin-1", dto.AdminUsersRequest{Action: "purge"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
