package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/plenario/gestion-api/models"
	"github.com/plenario/gestion-api/repositories"
	"go.uber.org/zap"
)

// TicketRepository implements the repositories.TicketRepository interface.
// All statements carry empresa_id from the caller's tenant scope.
type TicketRepository struct {
	db     *DB
	tx     repositories.Transaction
	logger *zap.Logger
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *DB, logger *zap.Logger) repositories.TicketRepository {
	return &TicketRepository{
		db:     db,
		logger: logger,
	}
}

// WithTx returns a new repository instance bound to the transaction
func (r *TicketRepository) WithTx(tx repositories.Transaction) repositories.TicketRepository {
	return &TicketRepository{
		db:     r.db,
		tx:     tx,
		logger: r.logger,
	}
}

// Create inserts a ticket and fills in its generated id
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (
			empresa_id, cliente_id, titulo, descripcion, categoria, prioridad,
			estado, asignado_a, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	executor := executorFor(ctx, r.db, r.tx)
	err := executor.QueryRowContext(ctx, query,
		ticket.EmpresaID,
		ticket.ClienteID,
		ticket.Titulo,
		ticket.Descripcion,
		ticket.Categoria,
		ticket.Prioridad,
		ticket.Estado,
		ticket.AsignadoA,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID)

	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}

	r.logger.Debug("ticket inserted",
		zap.Int64("id", ticket.ID),
		zap.Int64("empresa_id", ticket.EmpresaID))
	return nil
}

// GetByID retrieves one ticket belonging to the tenant
func (r *TicketRepository) GetByID(ctx context.Context, empresaID, id int64) (*models.Ticket, error) {
	query := `
		SELECT id, empresa_id, cliente_id, titulo, descripcion, categoria,
		       prioridad, estado, asignado_a, created_at, updated_at
		FROM tickets
		WHERE empresa_id = $1 AND id = $2
	`

	executor := executorFor(ctx, r.db, r.tx)
	ticket := &models.Ticket{}

	err := executor.QueryRowContext(ctx, query, empresaID, id).Scan(
		&ticket.ID,
		&ticket.EmpresaID,
		&ticket.ClienteID,
		&ticket.Titulo,
		&ticket.Descripcion,
		&ticket.Categoria,
		&ticket.Prioridad,
		&ticket.Estado,
		&ticket.AsignadoA,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// ListByEmpresa retrieves the tenant's tickets, newest first
func (r *TicketRepository) ListByEmpresa(ctx context.Context, empresaID int64, limit, offset int) ([]*models.Ticket, error) {
	query := `
		SELECT id, empresa_id, cliente_id, titulo, descripcion, categoria,
		       prioridad, estado, asignado_a, created_at, updated_at
		FROM tickets
		WHERE empresa_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	executor := executorFor(ctx, r.db, r.tx)
	rows, err := executor.QueryContext(ctx, query, empresaID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket := &models.Ticket{}
		if err := rows.Scan(
			&ticket.ID,
			&ticket.EmpresaID,
			&ticket.ClienteID,
			&ticket.Titulo,
			&ticket.Descripcion,
			&ticket.Categoria,
			&ticket.Prioridad,
			&ticket.Estado,
			&ticket.AsignadoA,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}

// UpdateEstado updates a ticket's state and assignee within the tenant
func (r *TicketRepository) UpdateEstado(ctx context.Context, empresaID, id int64, estado models.TicketEstado, asignadoA *int64) error {
	query := `
		UPDATE tickets
		SET estado = $1, asignado_a = $2, updated_at = $3
		WHERE empresa_id = $4 AND id = $5
	`

	executor := executorFor(ctx, r.db, r.tx)
	result, err := executor.ExecContext(ctx, query, estado, asignadoA, time.Now().UTC(), empresaID, id)
	if err != nil {
		return fmt.Errorf("failed to update ticket estado: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// CreateMensaje appends a message to a ticket's thread
func (r *TicketRepository) CreateMensaje(ctx context.Context, mensaje *models.TicketMensaje) error {
	query := `
		INSERT INTO ticket_mensajes (ticket_id, empresa_id, autor_id, cuerpo, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	executor := executorFor(ctx, r.db, r.tx)
	err := executor.QueryRowContext(ctx, query,
		mensaje.TicketID,
		mensaje.EmpresaID,
		mensaje.AutorID,
		mensaje.Cuerpo,
		mensaje.CreatedAt,
	).Scan(&mensaje.ID)

	if err != nil {
		return fmt.Errorf("failed to insert ticket mensaje: %w", err)
	}

	return nil
}

// ListMensajes retrieves a ticket's messages in insertion order
func (r *TicketRepository) ListMensajes(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketMensaje, error) {
	query := `
		SELECT id, ticket_id, empresa_id, autor_id, cuerpo, created_at
		FROM ticket_mensajes
		WHERE empresa_id = $1 AND ticket_id = $2
		ORDER BY id ASC
	`

	executor := executorFor(ctx, r.db, r.tx)
	rows, err := executor.QueryContext(ctx, query, empresaID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket mensajes: %w", err)
	}
	defer rows.Close()

	var mensajes []*models.TicketMensaje
	for rows.Next() {
		m := &models.TicketMensaje{}
		if err := rows.Scan(&m.ID, &m.TicketID, &m.EmpresaID, &m.AutorID, &m.Cuerpo, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket mensaje: %w", err)
		}
		mensajes = append(mensajes, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket mensajes: %w", err)
	}

	return mensajes, nil
}
