package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/plenario/gestion-api/models"
	"github.com/plenario/gestion-api/repositories"
	"github.com/plenario/gestion-api/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer defines the interface for issuing signed access tokens
type TokenIssuer interface {
	Generate(userID, companyID, roleID int64) (string, error)
}

// Service handles login and tenant-scoped account lookups
type Service struct {
	usuarios repositories.UsuarioRepository
	empresas repositories.EmpresaRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewService creates a new account service
func NewService(
	usuarios repositories.UsuarioRepository,
	empresas repositories.EmpresaRepository,
	tokens TokenIssuer,
	logger *zap.Logger,
) *Service {
	return &Service{
		usuarios: usuarios,
		empresas: empresas,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login exchanges email+password for a signed access token. The same error is
// returned for unknown email and wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.Usuario, error) {
	u, err := s.usuarios.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, services.ErrInvalidCredentials
		}
		return "", nil, services.WrapDataAccess("failed to look up user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, services.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, u.EmpresaID, u.RolID)
	if err != nil {
		return "", nil, services.WrapInternal("failed to issue token", err)
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", u.ID),
		zap.Int64("empresa_id", u.EmpresaID))
	return token, u, nil
}

// GetEmpresa retrieves the tenant's own empresa record. A tenant can never
// read another tenant's empresa: the id comes from the request scope.
func (s *Service) GetEmpresa(ctx context.Context, empresaID int64) (*models.Empresa, error) {
	e, err := s.empresas.GetByID(ctx, empresaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, services.ErrEmpresaNotFound
		}
		return nil, services.WrapDataAccess("failed to get empresa", err)
	}
	return e, nil
}

// ListUsuarios retrieves the tenant's users
func (s *Service) ListUsuarios(ctx context.Context, empresaID int64) ([]*models.Usuario, error) {
	usuarios, err := s.usuarios.ListByEmpresa(ctx, empresaID)
	if err != nil {
		return nil, services.WrapDataAccess("failed to list usuarios", err)
	}
	return usuarios, nil
}
