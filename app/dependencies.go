package app

import (
	"context"
	"fmt"

	"github.com/plenario/gestion-api/auth"
	"github.com/plenario/gestion-api/config"
	"github.com/plenario/gestion-api/middleware"
	"github.com/plenario/gestion-api/repositories"
	"github.com/plenario/gestion-api/repositories/postgres"
	"github.com/plenario/gestion-api/services/account"
	"github.com/plenario/gestion-api/services/ticket"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection: the token secret
// and the connection pool are constructed here once at startup and passed to
// the components that need them, never read from ambient globals.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Tickets  repositories.TicketRepository
	Audits   repositories.AuditRepository
	Empresas repositories.EmpresaRepository
	Usuarios repositories.UsuarioRepository
	TxMgr    repositories.TransactionManager

	// Services
	TicketService  *ticket.Service
	AccountService *account.Service

	// Auth
	TokenService   *auth.TokenService
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.DB = db

	if err := db.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	deps.Tickets = postgres.NewTicketRepository(db, logger)
	deps.Audits = postgres.NewAuditRepository(db, logger)
	deps.Empresas = postgres.NewEmpresaRepository(db, logger)
	deps.Usuarios = postgres.NewUsuarioRepository(db, logger)
	deps.TxMgr = postgres.NewTransactionManager(db, logger)

	tokenService, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	deps.TokenService = tokenService
	deps.AuthMiddleware = middleware.NewAuthMiddleware(tokenService, logger)

	deps.TicketService = ticket.NewService(deps.Tickets, deps.Audits, deps.Usuarios, deps.TxMgr, logger)
	deps.AccountService = account.NewService(deps.Usuarios, deps.Empresas, tokenService, logger)

	logger.Info("all dependencies initialized")
	return deps, nil
}

// Close releases held resources
func (d *Dependencies) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
