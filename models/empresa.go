package models

import "time"

// Empresa is a tenant. All business data is partitioned by empresa id.
type Empresa struct {
	ID             int64     `json:"id"`
	Nombre         string    `json:"nombre"`
	Identificacion string    `json:"identificacion"`
	CreatedAt      time.Time `json:"created_at"`
}
