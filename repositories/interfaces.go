package repositories

import (
	"context"

	"github.com/plenario/gestion-api/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Automatically commits if the function succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// TicketRepository handles ticket data operations. Every method takes the
// tenant's empresa id and scopes its statement to it; there is no unscoped
// query path.
type TicketRepository interface {
	// Create inserts a ticket and fills in its generated id
	Create(ctx context.Context, ticket *models.Ticket) error

	// GetByID retrieves one ticket belonging to the tenant
	GetByID(ctx context.Context, empresaID, id int64) (*models.Ticket, error)

	// ListByEmpresa retrieves the tenant's tickets, newest first
	ListByEmpresa(ctx context.Context, empresaID int64, limit, offset int) ([]*models.Ticket, error)

	// UpdateEstado updates a ticket's state and assignee within the tenant
	UpdateEstado(ctx context.Context, empresaID, id int64, estado models.TicketEstado, asignadoA *int64) error

	// CreateMensaje appends a message to a ticket's thread
	CreateMensaje(ctx context.Context, mensaje *models.TicketMensaje) error

	// ListMensajes retrieves a ticket's messages in insertion order
	ListMensajes(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketMensaje, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) TicketRepository
}

// AuditRepository handles append-only ticket audit entries
type AuditRepository interface {
	// Insert appends a new audit entry
	Insert(ctx context.Context, entry *models.TicketAudit) error

	// ListByTicket retrieves a ticket's audit entries in insertion order
	ListByTicket(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketAudit, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) AuditRepository
}

// EmpresaRepository handles empresa (tenant) data operations
type EmpresaRepository interface {
	// GetByID retrieves an empresa by id
	GetByID(ctx context.Context, id int64) (*models.Empresa, error)
}

// UsuarioRepository handles user data operations
type UsuarioRepository interface {
	// GetByEmail retrieves an active user by email, across tenants.
	// Used only by login, before any tenant scope exists.
	GetByEmail(ctx context.Context, email string) (*models.Usuario, error)

	// GetByID retrieves one user belonging to the tenant
	GetByID(ctx context.Context, empresaID, id int64) (*models.Usuario, error)

	// ListByEmpresa retrieves the tenant's users
	ListByEmpresa(ctx context.Context, empresaID int64) ([]*models.Usuario, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Tickets  TicketRepository
	Audits   AuditRepository
	Empresas EmpresaRepository
	Usuarios UsuarioRepository
}
