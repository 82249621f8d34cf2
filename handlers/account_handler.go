package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/plenario/gestion-api/middleware"
	"github.com/plenario/gestion-api/models"
	"github.com/plenario/gestion-api/utils"
	"go.uber.org/zap"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token   string          `json:"token"`
	Usuario *models.Usuario `json:"usuario"`
}

// AccountService defines the interface for login and account lookups
type AccountService interface {
	Login(ctx context.Context, email, password string) (string, *models.Usuario, error)
	GetEmpresa(ctx context.Context, empresaID int64) (*models.Empresa, error)
	ListUsuarios(ctx context.Context, empresaID int64) ([]*models.Usuario, error)
}

// AccountHandler handles login and core-module account requests
type AccountHandler struct {
	svc    AccountService
	logger *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(svc AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// HandleLogin handles POST /api/core/login. Unauthenticated by design: it is
// the route that issues credentials.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, "validation failed", utils.GetValidationFields(err))
		return
	}

	token, usuario, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	_ = utils.WriteOK(w, LoginResponse{Token: token, Usuario: usuario})
}

// HandleGetEmpresa handles GET /api/core/empresa.
// Returns the authenticated tenant's own empresa record.
func (h *AccountHandler) HandleGetEmpresa(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empresaID := middleware.GetTenantFromContext(ctx)

	empresa, err := h.svc.GetEmpresa(ctx, empresaID)
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	_ = utils.WriteOK(w, empresa)
}

// HandleListUsuarios handles GET /api/core/usuarios
func (h *AccountHandler) HandleListUsuarios(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empresaID := middleware.GetTenantFromContext(ctx)

	usuarios, err := h.svc.ListUsuarios(ctx, empresaID)
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	if usuarios == nil {
		usuarios = []*models.Usuario{}
	}
	_ = utils.WriteOK(w, usuarios)
}
