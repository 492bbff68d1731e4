package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrUserNotFound     = errors.New("usuario no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrPasswordTooShort = errors.New("la contraseña debe tener al menos 8 caracteres")

	// Flujo de fases de la orden de pedido.
	ErrNoNextPhase  = errors.New("la orden ya está en la última fase")
	ErrInvalidPhase = errors.New("fase de orden desconocida")

	// Fallos de infraestructura que el usuario puede reintentar.
	ErrPersistence = errors.New("no se pudo guardar el cambio, intente de nuevo")
	ErrFetch       = errors.New("no se pudieron cargar los permisos")
	ErrSave        = errors.New("no se pudieron guardar los permisos")
)

// IsRetryable indica si el error proviene de un fallo transitorio del backend.
// Los errores de negocio (fase terminal, acceso denegado) nunca son reintentables.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence) || errors.Is(err, ErrFetch) || errors.Is(err, ErrSave)
}
