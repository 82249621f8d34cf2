package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/plenario/gestion-api/models"
	"github.com/plenario/gestion-api/repositories"
	"go.uber.org/zap"
)

// EmpresaRepository implements the repositories.EmpresaRepository interface
type EmpresaRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEmpresaRepository creates a new empresa repository
func NewEmpresaRepository(db *DB, logger *zap.Logger) repositories.EmpresaRepository {
	return &EmpresaRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an empresa by id
func (r *EmpresaRepository) GetByID(ctx context.Context, id int64) (*models.Empresa, error) {
	query := `
		SELECT id, nombre, identificacion, created_at
		FROM empresas
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	empresa := &models.Empresa{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&empresa.ID,
		&empresa.Nombre,
		&empresa.Identificacion,
		&empresa.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get empresa: %w", err)
	}

	return empresa, nil
}
