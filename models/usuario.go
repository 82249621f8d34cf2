package models

import "time"

// Usuario is an application user. EmpresaID may be zero for accounts that
// predate tenant onboarding; such users authenticate but cannot reach any
// tenant-scoped route.
type Usuario struct {
	ID           int64     `json:"id"`
	EmpresaID    int64     `json:"empresa_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Nombre       string    `json:"nombre"`
	RolID        int64     `json:"rol_id"`
	Activo       bool      `json:"activo"`
	CreatedAt    time.Time `json:"created_at"`
}
