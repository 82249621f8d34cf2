package postgres

import (
	"context"
	"fmt"

	"github.com/plenario/gestion-api/models"
	"github.com/plenario/gestion-api/repositories"
	"go.uber.org/zap"
)

// AuditRepository implements the repositories.AuditRepository interface.
// The ticket_auditoria table is append-only; there is no update or delete path.
type AuditRepository struct {
	db     *DB
	tx     repositories.Transaction
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// WithTx returns a new repository instance bound to the transaction
func (r *AuditRepository) WithTx(tx repositories.Transaction) repositories.AuditRepository {
	return &AuditRepository{
		db:     r.db,
		tx:     tx,
		logger: r.logger,
	}
}

// Insert appends a new audit entry
func (r *AuditRepository) Insert(ctx context.Context, entry *models.TicketAudit) error {
	query := `
		INSERT INTO ticket_auditoria (id, ticket_id, empresa_id, actor_id, accion, detalle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := executorFor(ctx, r.db, r.tx)
	_, err := executor.ExecContext(ctx, query,
		entry.ID,
		entry.TicketID,
		entry.EmpresaID,
		entry.ActorID,
		entry.Accion,
		entry.Detalle,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	r.logger.Debug("audit entry inserted",
		zap.String("id", entry.ID.String()),
		zap.String("accion", string(entry.Accion)),
		zap.Int64("ticket_id", entry.TicketID))
	return nil
}

// ListByTicket retrieves a ticket's audit entries in insertion order
func (r *AuditRepository) ListByTicket(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketAudit, error) {
	query := `
		SELECT id, ticket_id, empresa_id, actor_id, accion, detalle, created_at
		FROM ticket_auditoria
		WHERE empresa_id = $1 AND ticket_id = $2
		ORDER BY created_at ASC, id ASC
	`

	executor := executorFor(ctx, r.db, r.tx)
	rows, err := executor.QueryContext(ctx, query, empresaID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.TicketAudit
	for rows.Next() {
		entry := &models.TicketAudit{}
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.EmpresaID,
			&entry.ActorID,
			&entry.Accion,
			&entry.Detalle,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}
