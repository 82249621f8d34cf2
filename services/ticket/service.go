package ticket

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/plenario/gestion-api/models"
	"github.com/plenario/gestion-api/repositories"
	"github.com/plenario/gestion-api/services"
	"go.uber.org/zap"
)

// Service implements the ticket lifecycle: abierto -> asignado -> cerrado.
// Assignment is allowed from abierto or asignado (reassignment permitted);
// closure is allowed from abierto or asignado and is terminal.
//
// Assign and Close write their audit entry in the same transaction as the
// state change: if the audit insert fails, the whole operation fails.
type Service struct {
	tickets  repositories.TicketRepository
	audits   repositories.AuditRepository
	usuarios repositories.UsuarioRepository
	txMgr    repositories.TransactionManager
	logger   *zap.Logger
}

// NewService creates a new ticket service
func NewService(
	tickets repositories.TicketRepository,
	audits repositories.AuditRepository,
	usuarios repositories.UsuarioRepository,
	txMgr repositories.TransactionManager,
	logger *zap.Logger,
) *Service {
	return &Service{
		tickets:  tickets,
		audits:   audits,
		usuarios: usuarios,
		txMgr:    txMgr,
		logger:   logger,
	}
}

// CreateInput carries the validated fields for a new ticket.
// The tenant's empresa id is passed separately; it never comes from the body.
type CreateInput struct {
	ClienteID   int64
	Titulo      string
	Descripcion string
	Categoria   string
	Prioridad   string
}

// Create opens a new ticket for the tenant
func (s *Service) Create(ctx context.Context, empresaID int64, in CreateInput) (*models.Ticket, error) {
	t := models.NewTicket(empresaID, in.ClienteID, in.Titulo, in.Descripcion, in.Categoria, in.Prioridad)

	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, services.WrapDataAccess("failed to create ticket", err)
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", t.ID),
		zap.Int64("empresa_id", empresaID))
	return t, nil
}

// Get retrieves one of the tenant's tickets
func (s *Service) Get(ctx context.Context, empresaID, id int64) (*models.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, empresaID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.ErrTicketNotFound
		}
		return nil, services.WrapDataAccess("failed to get ticket", err)
	}
	return t, nil
}

// List retrieves the tenant's tickets
func (s *Service) List(ctx context.Context, empresaID int64, limit, offset int) ([]*models.Ticket, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	tickets, err := s.tickets.ListByEmpresa(ctx, empresaID, limit, offset)
	if err != nil {
		return nil, services.WrapDataAccess("failed to list tickets", err)
	}
	return tickets, nil
}

// Assign assigns the ticket to a user of the same tenant. Allowed from
// abierto or asignado; rejected once the ticket is cerrado.
func (s *Service) Assign(ctx context.Context, empresaID, actorID, ticketID, asignadoA int64) (*models.Ticket, error) {
	if _, err := s.usuarios.GetByID(ctx, empresaID, asignadoA); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.ErrUsuarioNotFound
		}
		return nil, services.WrapDataAccess("failed to look up assignee", err)
	}

	var updated *models.Ticket
	err := s.txMgr.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
		tickets := s.tickets.WithTx(tx)
		audits := s.audits.WithTx(tx)

		t, err := tickets.GetByID(txCtx, empresaID, ticketID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return services.ErrTicketNotFound
			}
			return services.WrapDataAccess("failed to get ticket", err)
		}

		if !t.CanAssign() {
			return services.ErrTicketCerrado
		}

		if err := tickets.UpdateEstado(txCtx, empresaID, ticketID, models.TicketEstadoAsignado, &asignadoA); err != nil {
			return services.WrapDataAccess("failed to update ticket estado", err)
		}

		entry := models.NewTicketAudit(ticketID, empresaID, actorID, models.AuditAccionAssign, "")
		if err := audits.Insert(txCtx, entry); err != nil {
			return services.WrapAuditWrite("failed to write assign audit entry", err)
		}

		t.Estado = models.TicketEstadoAsignado
		t.AsignadoA = &asignadoA
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket assigned",
		zap.Int64("ticket_id", ticketID),
		zap.Int64("empresa_id", empresaID),
		zap.Int64("asignado_a", asignadoA))
	return updated, nil
}

// Close closes the ticket. Allowed from abierto or asignado; cerrado is
// terminal and no further transition is accepted.
func (s *Service) Close(ctx context.Context, empresaID, actorID, ticketID int64) (*models.Ticket, error) {
	var updated *models.Ticket
	err := s.txMgr.InTransaction(ctx, func(txCtx context.Context, tx repositories.Transaction) error {
		tickets := s.tickets.WithTx(tx)
		audits := s.audits.WithTx(tx)

		t, err := tickets.GetByID(txCtx, empresaID, ticketID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return services.ErrTicketNotFound
			}
			return services.WrapDataAccess("failed to get ticket", err)
		}

		if !t.CanClose() {
			return services.ErrTicketCerrado
		}

		if err := tickets.UpdateEstado(txCtx, empresaID, ticketID, models.TicketEstadoCerrado, t.AsignadoA); err != nil {
			return services.WrapDataAccess("failed to update ticket estado", err)
		}

		entry := models.NewTicketAudit(ticketID, empresaID, actorID, models.AuditAccionClose, "")
		if err := audits.Insert(txCtx, entry); err != nil {
			return services.WrapAuditWrite("failed to write close audit entry", err)
		}

		t.Estado = models.TicketEstadoCerrado
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket closed",
		zap.Int64("ticket_id", ticketID),
		zap.Int64("empresa_id", empresaID))
	return updated, nil
}

// AddMensaje appends a message to one of the tenant's tickets
func (s *Service) AddMensaje(ctx context.Context, empresaID, autorID, ticketID int64, cuerpo string) (*models.TicketMensaje, error) {
	t, err := s.Get(ctx, empresaID, ticketID)
	if err != nil {
		return nil, err
	}

	m := &models.TicketMensaje{
		TicketID:  t.ID,
		EmpresaID: empresaID,
		AutorID:   autorID,
		Cuerpo:    cuerpo,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tickets.CreateMensaje(ctx, m); err != nil {
		return nil, services.WrapDataAccess("failed to create ticket mensaje", err)
	}

	return m, nil
}

// ListMensajes retrieves a ticket's messages in insertion order
func (s *Service) ListMensajes(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketMensaje, error) {
	if _, err := s.Get(ctx, empresaID, ticketID); err != nil {
		return nil, err
	}

	mensajes, err := s.tickets.ListMensajes(ctx, empresaID, ticketID)
	if err != nil {
		return nil, services.WrapDataAccess("failed to list ticket mensajes", err)
	}
	return mensajes, nil
}

// ListAuditoria retrieves a ticket's audit trail in insertion order
func (s *Service) ListAuditoria(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketAudit, error) {
	if _, err := s.Get(ctx, empresaID, ticketID); err != nil {
		return nil, err
	}

	entries, err := s.audits.ListByTicket(ctx, empresaID, ticketID)
	if err != nil {
		return nil, services.WrapDataAccess("failed to list audit entries", err)
	}
	return entries, nil
}
