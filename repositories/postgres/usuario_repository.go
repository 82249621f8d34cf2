package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/plenario/gestion-api/models"
	"github.com/plenario/gestion-api/repositories"
	"go.uber.org/zap"
)

// UsuarioRepository implements the repositories.UsuarioRepository interface
type UsuarioRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUsuarioRepository creates a new usuario repository
func NewUsuarioRepository(db *DB, logger *zap.Logger) repositories.UsuarioRepository {
	return &UsuarioRepository{
		db:     db,
		logger: logger,
	}
}

// GetByEmail retrieves an active user by email. Login-only: runs before any
// tenant scope exists for the request.
func (r *UsuarioRepository) GetByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	query := `
		SELECT id, COALESCE(empresa_id, 0), email, password_hash, nombre, rol_id, activo, created_at
		FROM usuarios
		WHERE email = $1 AND activo = true
	`

	return r.scanUsuario(r.queryRow(ctx, query, email))
}

// GetByID retrieves one user belonging to the tenant
func (r *UsuarioRepository) GetByID(ctx context.Context, empresaID, id int64) (*models.Usuario, error) {
	query := `
		SELECT id, COALESCE(empresa_id, 0), email, password_hash, nombre, rol_id, activo, created_at
		FROM usuarios
		WHERE empresa_id = $1 AND id = $2
	`

	return r.scanUsuario(r.queryRow(ctx, query, empresaID, id))
}

// ListByEmpresa retrieves the tenant's users
func (r *UsuarioRepository) ListByEmpresa(ctx context.Context, empresaID int64) ([]*models.Usuario, error) {
	query := `
		SELECT id, COALESCE(empresa_id, 0), email, password_hash, nombre, rol_id, activo, created_at
		FROM usuarios
		WHERE empresa_id = $1
		ORDER BY id ASC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list usuarios: %w", err)
	}
	defer rows.Close()

	var usuarios []*models.Usuario
	for rows.Next() {
		u := &models.Usuario{}
		if err := rows.Scan(&u.ID, &u.EmpresaID, &u.Email, &u.PasswordHash, &u.Nombre, &u.RolID, &u.Activo, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usuario: %w", err)
		}
		usuarios = append(usuarios, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usuarios: %w", err)
	}

	return usuarios, nil
}

func (r *UsuarioRepository) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return GetExecutor(ctx, r.db).QueryRowContext(ctx, query, args...)
}

func (r *UsuarioRepository) scanUsuario(row *sql.Row) (*models.Usuario, error) {
	u := &models.Usuario{}
	err := row.Scan(&u.ID, &u.EmpresaID, &u.Email, &u.PasswordHash, &u.Nombre, &u.RolID, &u.Activo, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get usuario: %w", err)
	}
	return u, nil
}
