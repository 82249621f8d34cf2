package models

import "time"

// TicketEstado represents the lifecycle state of a support ticket
type TicketEstado string

const (
	TicketEstadoAbierto  TicketEstado = "abierto"
	TicketEstadoAsignado TicketEstado = "asignado"
	TicketEstadoCerrado  TicketEstado = "cerrado"
)

// Ticket represents a support ticket. Every ticket belongs to exactly one
// empresa; EmpresaID is set from the request's tenant scope, never from the
// request body.
type Ticket struct {
	ID          int64        `json:"id"`
	EmpresaID   int64        `json:"empresa_id"`
	ClienteID   int64        `json:"cliente_id"`
	Titulo      string       `json:"titulo"`
	Descripcion string       `json:"descripcion"`
	Categoria   string       `json:"categoria"`
	Prioridad   string       `json:"prioridad"`
	Estado      TicketEstado `json:"estado"`
	AsignadoA   *int64       `json:"asignado_a,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTicket creates a ticket in the open state for the given tenant
func NewTicket(empresaID, clienteID int64, titulo, descripcion, categoria, prioridad string) *Ticket {
	now := time.Now().UTC()
	return &Ticket{
		EmpresaID:   empresaID,
		ClienteID:   clienteID,
		Titulo:      titulo,
		Descripcion: descripcion,
		Categoria:   categoria,
		Prioridad:   prioridad,
		Estado:      TicketEstadoAbierto,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CanAssign reports whether the ticket accepts an assignment.
// Reassignment of an already assigned ticket is permitted.
func (t *Ticket) CanAssign() bool {
	return t.Estado == TicketEstadoAbierto || t.Estado == TicketEstadoAsignado
}

// CanClose reports whether the ticket accepts closure. Closed is terminal.
func (t *Ticket) CanClose() bool {
	return t.Estado == TicketEstadoAbierto || t.Estado == TicketEstadoAsignado
}

// TicketMensaje represents one message on a ticket's conversation thread
type TicketMensaje struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	EmpresaID int64     `json:"empresa_id"`
	AutorID   int64     `json:"autor_id"`
	Cuerpo    string    `json:"cuerpo"`
	CreatedAt time.Time `json:"created_at"`
}
