package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAccion identifies the audited action on a ticket
type AuditAccion string

const (
	AuditAccionAssign AuditAccion = "ASSIGN"
	AuditAccionClose  AuditAccion = "CLOSE"
)

// TicketAudit is one append-only audit entry for a ticket state change.
// Entries are written in the same transaction as the change they describe
// and are never updated or deleted.
type TicketAudit struct {
	ID        uuid.UUID   `json:"id"`
	TicketID  int64       `json:"ticket_id"`
	EmpresaID int64       `json:"empresa_id"`
	ActorID   int64       `json:"actor_id"`
	Accion    AuditAccion `json:"accion"`
	Detalle   string      `json:"detalle,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewTicketAudit creates an audit entry for the given ticket and actor
func NewTicketAudit(ticketID, empresaID, actorID int64, accion AuditAccion, detalle string) *TicketAudit {
	return &TicketAudit{
		ID:        uuid.New(),
		TicketID:  ticketID,
		EmpresaID: empresaID,
		ActorID:   actorID,
		Accion:    accion,
		Detalle:   detalle,
		CreatedAt: time.Now().UTC(),
	}
}
