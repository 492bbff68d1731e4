package entity

import "time"

// User perfil de un usuario del sistema con su rol departamental.
type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
