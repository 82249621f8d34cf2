package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/plenario/gestion-api/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool. Connections are checked out per query
// (or per transaction) and returned on completion; the pool's concurrency
// bound is the only backpressure mechanism.
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS empresas (
			id BIGSERIAL PRIMARY KEY,
			nombre VARCHAR(255) NOT NULL,
			identificacion VARCHAR(100) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS usuarios (
			id BIGSERIAL PRIMARY KEY,
			empresa_id BIGINT REFERENCES empresas(id) ON DELETE CASCADE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			nombre VARCHAR(255) NOT NULL,
			rol_id BIGINT NOT NULL DEFAULT 0,
			activo BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS tickets (
			id BIGSERIAL PRIMARY KEY,
			empresa_id BIGINT NOT NULL REFERENCES empresas(id) ON DELETE CASCADE,
			cliente_id BIGINT NOT NULL,
			titulo VARCHAR(200) NOT NULL,
			descripcion TEXT NOT NULL DEFAULT '',
			categoria VARCHAR(50) NOT NULL,
			prioridad VARCHAR(20) NOT NULL,
			estado VARCHAR(20) NOT NULL DEFAULT 'abierto',
			asignado_a BIGINT REFERENCES usuarios(id) ON DELETE SET NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS ticket_mensajes (
			id BIGSERIAL PRIMARY KEY,
			ticket_id BIGINT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
			empresa_id BIGINT NOT NULL REFERENCES empresas(id) ON DELETE CASCADE,
			autor_id BIGINT NOT NULL,
			cuerpo TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS ticket_auditoria (
			id UUID PRIMARY KEY,
			ticket_id BIGINT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
			empresa_id BIGINT NOT NULL REFERENCES empresas(id) ON DELETE CASCADE,
			actor_id BIGINT NOT NULL,
			accion VARCHAR(20) NOT NULL,
			detalle TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_usuarios_empresa_id ON usuarios(empresa_id);
		CREATE INDEX IF NOT EXISTS idx_usuarios_email ON usuarios(email);
		CREATE INDEX IF NOT EXISTS idx_tickets_empresa_id ON tickets(empresa_id);
		CREATE INDEX IF NOT EXISTS idx_tickets_estado ON tickets(estado);
		CREATE INDEX IF NOT EXISTS idx_ticket_mensajes_ticket_id ON ticket_mensajes(ticket_id);
		CREATE INDEX IF NOT EXISTS idx_ticket_auditoria_ticket_id ON ticket_auditoria(ticket_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized")
	return nil
}
