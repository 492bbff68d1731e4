package entity

// Role rol departamental del usuario. admin es privilegiado.
type Role string

// Roles válidos.
const (
	RoleAdmin       Role = "admin"
	RoleComercial   Role = "comercial"
	RoleInventarios Role = "inventarios"
	RoleProduccion  Role = "produccion"
	RoleLogistica   Role = "logistica"
	RoleFacturacion Role = "facturacion"
	RoleFinanciera  Role = "financiera"
)

// IsValid indica si el rol pertenece a la enumeración fija.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleComercial, RoleInventarios, RoleProduccion,
		RoleLogistica, RoleFacturacion, RoleFinanciera:
		return true
	}
	return false
}

// IsAdmin indica si el rol es el administrador.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// String devuelve el valor almacenado.
func (r Role) String() string { return string(r) }

// Roles devuelve todos los roles en orden de presentación.
func Roles() []Role {
	return []Role{RoleAdmin, RoleComercial, RoleInventarios, RoleProduccion, RoleLogistica, RoleFacturacion, RoleFinanciera}
}

// EditableRoles devuelve los roles cuyos permisos se pueden modificar (todos menos admin).
func EditableRoles() []Role {
	return []Role{RoleComercial, RoleInventarios, RoleProduccion, RoleLogistica, RoleFacturacion, RoleFinanciera}
}
