// Package workflow contiene la política de fases de la orden de pedido:
// el orden lineal de avance, el rol dueño de cada fase y quién puede editarla.
//
// Son funciones puras y totales sobre la enumeración cerrada de fases.
// Una fase fuera de las seis es un error de programación o de datos y provoca panic;
// quien lee fases desde almacenamiento debe validar con entity.Phase.IsValid antes.
package workflow

import (
	"fmt"

	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
)

// NextPhase devuelve la fase siguiente y true, o ("", false) si p es la fase terminal (financiera).
func NextPhase(p entity.Phase) (entity.Phase, bool) {
	switch p {
	case entity.PhaseComercial:
		return entity.PhaseInventarios, true
	case entity.PhaseInventarios:
		return entity.PhaseProduccion, true
	case entity.PhaseProduccion:
		return entity.PhaseLogistica, true
	case entity.PhaseLogistica:
		return entity.PhaseFacturacion, true
	case entity.PhaseFacturacion:
		return entity.PhaseFinanciera, true
	case entity.PhaseFinanciera:
		return "", false
	}
	panic(unknownPhase(p))
}

// RequiredRole devuelve el rol (nunca admin) dueño de las ediciones en la fase p.
func RequiredRole(p entity.Phase) entity.Role {
	switch p {
	case entity.PhaseComercial:
		return entity.RoleComercial
	case entity.PhaseInventarios:
		return entity.RoleInventarios
	case entity.PhaseProduccion:
		return entity.RoleProduccion
	case entity.PhaseLogistica:
		return entity.RoleLogistica
	case entity.PhaseFacturacion:
		return entity.RoleFacturacion
	case entity.PhaseFinanciera:
		return entity.RoleFinanciera
	}
	panic(unknownPhase(p))
}

// CanEdit es true sólo si el actor es admin o es el dueño de la fase.
// No hay permisos transitivos entre departamentos.
func CanEdit(actor entity.Role, p entity.Phase) bool {
	required := RequiredRole(p)
	return actor == entity.RoleAdmin || actor == required
}

// IsTerminal indica si la fase no tiene siguiente.
func IsTerminal(p entity.Phase) bool {
	_, ok := NextPhase(p)
	return !ok
}

func unknownPhase(p entity.Phase) string {
	return fmt.Sprintf("workflow: fase desconocida %q", string(p))
}
