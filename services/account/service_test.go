package account

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/plenario/gestion-api/models"
	"github.com/plenario/gestion-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type MockUsuarioRepo struct {
	mock.Mock
}

func (m *MockUsuarioRepo) GetByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Usuario), args.Error(1)
}

func (m *MockUsuarioRepo) GetByID(ctx context.Context, empresaID, id int64) (*models.Usuario, error) {
	args := m.Called(ctx, empresaID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Usuario), args.Error(1)
}

func (m *MockUsuarioRepo) ListByEmpresa(ctx context.Context, empresaID int64) ([]*models.Usuario, error) {
	args := m.Called(ctx, empresaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Usuario), args.Error(1)
}

type MockEmpresaRepo struct {
	mock.Mock
}

func (m *MockEmpresaRepo) GetByID(ctx context.Context, id int64) (*models.Empresa, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Empresa), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Generate(userID, companyID, roleID int64) (string, error) {
	args := m.Called(userID, companyID, roleID)
	return args.String(0), args.Error(1)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues token with the user's empresa", func(t *testing.T) {
		usuarios := new(MockUsuarioRepo)
		tokens := new(MockTokenIssuer)
		svc := NewService(usuarios, new(MockEmpresaRepo), tokens, zap.NewNop())

		u := &models.Usuario{
			ID:           42,
			EmpresaID:    7,
			Email:        "ana@acme.test",
			PasswordHash: hashPassword(t, "secreta123"),
			RolID:        3,
			Activo:       true,
		}
		usuarios.On("GetByEmail", ctx, "ana@acme.test").Return(u, nil)
		tokens.On("Generate", int64(42), int64(7), int64(3)).Return("signed-token", nil)

		token, logged, err := svc.Login(ctx, "ana@acme.test", "secreta123")
		require.NoError(t, err)
		assert.Equal(t, "signed-token", token)
		assert.Equal(t, int64(42), logged.ID)
		tokens.AssertExpectations(t)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		usuarios := new(MockUsuarioRepo)
		tokens := new(MockTokenIssuer)
		svc := NewService(usuarios, new(MockEmpresaRepo), tokens, zap.NewNop())

		usuarios.On("GetByEmail", ctx, "nadie@acme.test").Return(nil, sql.ErrNoRows)
		_, _, errUnknown := svc.Login(ctx, "nadie@acme.test", "whatever")

		u := &models.Usuario{ID: 42, EmpresaID: 7, PasswordHash: hashPassword(t, "correcta")}
		usuarios.On("GetByEmail", ctx, "ana@acme.test").Return(u, nil)
		_, _, errWrong := svc.Login(ctx, "ana@acme.test", "incorrecta")

		assert.ErrorIs(t, errUnknown, services.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, services.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
		tokens.AssertNotCalled(t, "Generate")
	})

	t.Run("user without empresa still authenticates", func(t *testing.T) {
		// Tenant scoping happens per request, not at login.
		usuarios := new(MockUsuarioRepo)
		tokens := new(MockTokenIssuer)
		svc := NewService(usuarios, new(MockEmpresaRepo), tokens, zap.NewNop())

		u := &models.Usuario{ID: 42, EmpresaID: 0, PasswordHash: hashPassword(t, "secreta123")}
		usuarios.On("GetByEmail", ctx, "huerfano@acme.test").Return(u, nil)
		tokens.On("Generate", int64(42), int64(0), int64(0)).Return("signed-token", nil)

		token, _, err := svc.Login(ctx, "huerfano@acme.test", "secreta123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("repository failure is wrapped, not leaked as credentials error", func(t *testing.T) {
		usuarios := new(MockUsuarioRepo)
		svc := NewService(usuarios, new(MockEmpresaRepo), new(MockTokenIssuer), zap.NewNop())

		usuarios.On("GetByEmail", ctx, "ana@acme.test").Return(nil, errors.New("connection refused"))

		_, _, err := svc.Login(ctx, "ana@acme.test", "secreta123")
		require.Error(t, err)
		assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
		assert.Equal(t, services.ErrorTypeDataAccess, services.GetErrorType(err))
	})
}

func TestGetEmpresa(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the scoped empresa", func(t *testing.T) {
		empresas := new(MockEmpresaRepo)
		svc := NewService(new(MockUsuarioRepo), empresas, new(MockTokenIssuer), zap.NewNop())

		empresas.On("GetByID", ctx, int64(7)).Return(&models.Empresa{ID: 7, Nombre: "Acme SA"}, nil)

		e, err := svc.GetEmpresa(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Acme SA", e.Nombre)
	})

	t.Run("missing empresa maps to not found", func(t *testing.T) {
		empresas := new(MockEmpresaRepo)
		svc := NewService(new(MockUsuarioRepo), empresas, new(MockTokenIssuer), zap.NewNop())

		empresas.On("GetByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)

		_, err := svc.GetEmpresa(ctx, 99)
		assert.ErrorIs(t, err, services.ErrEmpresaNotFound)
	})
}

func TestListUsuarios(t *testing.T) {
	ctx := context.Background()
	usuarios := new(MockUsuarioRepo)
	svc := NewService(usuarios, new(MockEmpresaRepo), new(MockTokenIssuer), zap.NewNop())

	usuarios.On("ListByEmpresa", ctx, int64(7)).Return([]*models.Usuario{
		{ID: 1, EmpresaID: 7},
		{ID: 2, EmpresaID: 7},
	}, nil)

	list, err := svc.ListUsuarios(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
