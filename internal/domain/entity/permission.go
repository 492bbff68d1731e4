package entity

import "time"

// Permission código de capacidad granular (ej. catalogo.cliente.manage). Catálogo de solo lectura.
type Permission struct {
	Code        string
	Category    string
	Description string
	CreatedAt   time.Time
}

// RolePermission tupla (rol, permiso) → permitido. Única por par; la ausencia equivale a false.
type RolePermission struct {
	Role      Role
	PermCode  string
	Allowed   bool
	UpdatedAt time.Time
}

// PermissionAudit evento de auditoría por cada cambio aplicado a la matriz.
type PermissionAudit struct {
	ID            string
	ActorID       string
	ActorName     string
	Role          Role
	PermCode      string
	AllowedBefore bool
	AllowedAfter  bool
	At            time.Time
}

// PermOrderPDF permiso para descargar la hoja PDF de una orden.
const PermOrderPDF = "orden.pdf.descargar"
