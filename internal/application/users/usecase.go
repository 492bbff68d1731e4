package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
	"github.com/jhoicas/Ordenes-api/internal/domain/repository"
	"github.com/jhoicas/Ordenes-api/pkg/logger"
)

// MinPasswordLength longitud mínima de contraseña.
const MinPasswordLength = 8

// MaxPasswordBytes límite de bcrypt; más allá GenerateFromPassword falla.
const MaxPasswordBytes = 72

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// AdminUseCase administración de usuarios: un único punto de entrada despachado por acción.
type AdminUseCase struct {
	repo repository.UserRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewAdminUseCase construye el caso de uso.
func NewAdminUseCase(repo repository.UserRepository, log *logger.Logger) *AdminUseCase {
	return &AdminUseCase{repo: repo, log: log.Component("users.admin"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *AdminUseCase) WithClock(now func() time.Time) *AdminUseCase {
	uc.now = now
	return uc
}

// Handle valida que actorID sea un admin activo en la tabla de usuarios (no basta el claim del token)
// y ejecuta la acción pedida.
func (uc *AdminUseCase) Handle(ctx context.Context, actorID string, in dto.AdminUsersRequest) (*dto.AdminUsersResponse, error) {
	actor, err := uc.Authorize(ctx, actorID)
	if err != nil {
		return nil, err
	}

	switch in.Action {
	case dto.UserActionList:
		return uc.list(ctx, in.Limit, in.Offset)
	case dto.UserActionCreate:
		return uc.create(ctx, dto.CreateUserRequest{
			Username: in.Username, FullName: in.FullName, Email: in.Email, Role: in.Role, Password: in.Password,
		})
	case dto.UserActionUpdate:
		return uc.update(ctx, actor, in)
	case dto.UserActionPassword:
		return uc.setPassword(ctx, in.UserID, in.Password)
	case dto.UserActionDelete:
		return uc.delete(ctx, actor, in.UserID)
	default:
		return nil, fmt.Errorf("%w: acción %q no soportada", domain.ErrInvalidInput, in.Action)
	}
}

// Authorize devuelve el perfil de actorID si sigue siendo un admin activo; si no, domain.ErrForbidden.
// Un token emitido antes de degradar o desactivar al usuario deja de servir aquí.
func (uc *AdminUseCase) Authorize(ctx context.Context, actorID string) (*entity.User, error) {
	actor, err := uc.repo.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if actor == nil || !actor.Active || !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return actor, nil
}

func (uc *AdminUseCase) list(ctx context.Context, limit, offset int) (*dto.AdminUsersResponse, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *ToUserResponse(u))
	}
	return &dto.AdminUsersResponse{Success: true, Users: out}, nil
}

func (uc *AdminUseCase) create(ctx context.Context, in dto.CreateUserRequest) (*dto.AdminUsersResponse, error) {
	username := normalizeUsername(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username requerido", domain.ErrInvalidInput)
	}
	role := entity.Role(in.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: rol %q desconocido", domain.ErrInvalidInput, in.Role)
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureUsernameFree(ctx, username, ""); err != nil {
		return nil, err
	}

	now := uc.now()
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = username
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		FullName:     fullName,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	uc.log.Info().Str("user_id", user.ID).Str("username", username).Str("role", string(role)).Msg("usuario creado")
	return &dto.AdminUsersResponse{Success: true, Message: "Usuario creado", User: ToUserResponse(user)}, nil
}

func (uc *AdminUseCase) update(ctx context.Context, actor *entity.User, in dto.AdminUsersRequest) (*dto.AdminUsersResponse, error) {
	user, err := uc.load(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		username := normalizeUsername(in.Username)
		if username != user.Username {
			if err := uc.ensureUsernameFree(ctx, username, user.ID); err != nil {
				return nil, err
			}
			user.Username = username
		}
	}
	if in.FullName != "" {
		user.FullName = strings.TrimSpace(in.FullName)
	}
	if in.Email != "" {
		user.Email = strings.TrimSpace(in.Email)
	}
	if in.Role != "" {
		role := entity.Role(in.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: rol %q desconocido", domain.ErrInvalidInput, in.Role)
		}
		if user.ID == actor.ID && !role.IsAdmin() {
			return nil, fmt.Errorf("%w: no puede quitarse el rol admin a sí mismo", domain.ErrInvalidInput)
		}
		user.Role = role
	}
	if in.Active != nil {
		if user.ID == actor.ID && !*in.Active {
			return nil, fmt.Errorf("%w: no puede desactivar su propio usuario", domain.ErrInvalidInput)
		}
		user.Active = *in.Active
	}
	user.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return &dto.AdminUsersResponse{Success: true, Message: "Usuario actualizado", User: ToUserResponse(user)}, nil
}

func (uc *AdminUseCase) setPassword(ctx context.Context, id, password string) (*dto.AdminUsersResponse, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	uc.log.Info().Str("user_id", user.ID).Msg("contraseña actualizada")
	return &dto.AdminUsersResponse{Success: true, Message: "Contraseña actualizada"}, nil
}

func (uc *AdminUseCase) delete(ctx context.Context, actor *entity.User, id string) (*dto.AdminUsersResponse, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ID == actor.ID {
		return nil, fmt.Errorf("%w: no puede eliminar su propio usuario", domain.ErrInvalidInput)
	}
	if err := uc.repo.Delete(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	uc.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("usuario eliminado")
	return &dto.AdminUsersResponse{Success: true, Message: "Usuario eliminado"}, nil
}

func (uc *AdminUseCase) load(ctx context.Context, id string) (*entity.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user_id requerido", domain.ErrInvalidInput)
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// ensureUsernameFree devuelve ErrDuplicate si otro usuario (distinto de exceptID) ya usa username.
func (uc *AdminUseCase) ensureUsernameFree(ctx context.Context, username, exceptID string) error {
	existing, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if existing != nil && existing.ID != exceptID {
		return fmt.Errorf("%w: el usuario %q ya existe", domain.ErrDuplicate, username)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len([]rune(password)) < MinPasswordLength {
		return "", domain.ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: la contraseña no puede superar %d bytes", domain.ErrInvalidInput, MaxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash de contraseña: %w", err)
	}
	return string(hash), nil
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ToUserResponse mapea el perfil sin exponer el hash.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
