package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Nombres de campo según el tag json en los mensajes de error.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requestError error de entrada detectado en el handler (cuerpo o parámetros).
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(code, message string) error {
	return &requestError{code: code, message: message}
}

// bindJSON parsea el cuerpo y lo valida con los tags validate.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return badRequest("INVALID_BODY", "cuerpo inválido")
	}
	return validateStruct(out)
}

func validateStruct(in any) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, validationMessage(fe))
			}
			return badRequest("VALIDATION", strings.Join(msgs, "; "))
		}
		return badRequest("VALIDATION", err.Error())
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " es requerido"
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s requiere al menos %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s admite como máximo %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s debe ser mayor que %s", field, fe.Param())
	case "email":
		return field + " no es un email válido"
	case "uuid":
		return field + " no es un UUID válido"
	}
	return field + " inválido"
}

// mapError traduce errores de dominio a status y cuerpo HTTP.
func mapError(err error) (int, dto.ErrorResponse) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: reqErr.code, Message: reqErr.message}
	case errors.Is(err, domain.ErrNoNextPhase):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "NO_NEXT_PHASE", Message: domain.ErrNoNextPhase.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: "la orden cambió mientras se procesaba, recargue e intente de nuevo"}
	case errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "USER_NOT_FOUND", Message: domain.ErrUserNotFound.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: domain.ErrNotFound.Error()}
	case errors.Is(err, domain.ErrPasswordTooShort):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "PASSWORD_TOO_SHORT", Message: domain.ErrPasswordTooShort.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrInvalidPhase):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "DATA_ERROR", Message: "la orden tiene una fase desconocida"}
	case errors.Is(err, domain.ErrPersistence):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "PERSISTENCE_ERROR", Message: domain.ErrPersistence.Error(), Retryable: true}
	case errors.Is(err, domain.ErrFetch):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "FETCH_ERROR", Message: domain.ErrFetch.Error(), Retryable: true}
	case errors.Is(err, domain.ErrSave):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "SAVE_ERROR", Message: domain.ErrSave.Error(), Retryable: true}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

func writeError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	return c.Status(status).JSON(body)
}
