package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/plenario/gestion-api/middleware"
	"github.com/plenario/gestion-api/models"
	"github.com/plenario/gestion-api/services/ticket"
	"github.com/plenario/gestion-api/utils"
	"go.uber.org/zap"
)

// CreateTicketRequest represents a request to create a ticket
type CreateTicketRequest struct {
	Titulo      string `json:"titulo" validate:"required,min=5,max=200"`
	Descripcion string `json:"descripcion" validate:"max=5000"`
	Categoria   string `json:"categoria" validate:"required,oneof=hardware software red acceso facturacion otro"`
	Prioridad   string `json:"prioridad" validate:"required,oneof=low medium high urgent"`
	ClienteID   int64  `json:"cliente_id" validate:"required,gt=0"`
}

// AssignTicketRequest represents a request to assign a ticket
type AssignTicketRequest struct {
	AsignadoA int64 `json:"asignado_a" validate:"required,gt=0"`
}

// CreateMensajeRequest represents a request to append a ticket message
type CreateMensajeRequest struct {
	Cuerpo string `json:"cuerpo" validate:"required,min=1,max=5000"`
}

// TicketService defines the interface for ticket operations
type TicketService interface {
	Create(ctx context.Context, empresaID int64, in ticket.CreateInput) (*models.Ticket, error)
	Get(ctx context.Context, empresaID, id int64) (*models.Ticket, error)
	List(ctx context.Context, empresaID int64, limit, offset int) ([]*models.Ticket, error)
	Assign(ctx context.Context, empresaID, actorID, ticketID, asignadoA int64) (*models.Ticket, error)
	Close(ctx context.Context, empresaID, actorID, ticketID int64) (*models.Ticket, error)
	AddMensaje(ctx context.Context, empresaID, autorID, ticketID int64, cuerpo string) (*models.TicketMensaje, error)
	ListMensajes(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketMensaje, error)
	ListAuditoria(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketAudit, error)
}

// TicketHandler handles ticket-related HTTP requests for the soporte module
type TicketHandler struct {
	svc    TicketService
	logger *zap.Logger
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(svc TicketService, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		svc:    svc,
		logger: logger,
	}
}

// HandleCreate handles POST /api/v1/soporte/tickets
func (h *TicketHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empresaID := middleware.GetTenantFromContext(ctx)

	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, "validation failed", utils.GetValidationFields(err))
		return
	}

	created, err := h.svc.Create(ctx, empresaID, ticket.CreateInput{
		ClienteID:   req.ClienteID,
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		Categoria:   req.Categoria,
		Prioridad:   req.Prioridad,
	})
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	_ = utils.WriteCreated(w, created)
}

// HandleList handles GET /api/v1/soporte/tickets
func (h *TicketHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empresaID := middleware.GetTenantFromContext(ctx)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	tickets, err := h.svc.List(ctx, empresaID, limit, offset)
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	_ = utils.WriteOK(w, tickets)
}

// HandleGet handles GET /api/v1/soporte/tickets/{ticketID}
func (h *TicketHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empresaID := middleware.GetTenantFromContext(ctx)

	ticketID, ok := h.ticketIDParam(w, r)
	if !ok {
		return
	}

	t, err := h.svc.Get(ctx, empresaID, ticketID)
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	_ = utils.WriteOK(w, t)
}

// HandleAssign handles POST /api/v1/soporte/tickets/{ticketID}/asignar
func (h *TicketHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empresaID := middleware.GetTenantFromContext(ctx)
	principal, _ := middleware.GetPrincipalFromContext(ctx)

	ticketID, ok := h.ticketIDParam(w, r)
	if !ok {
		return
	}

	var req AssignTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, "validation failed", utils.GetValidationFields(err))
		return
	}

	t, err := h.svc.Assign(ctx, empresaID, principal.UserID, ticketID, req.AsignadoA)
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	_ = utils.WriteOK(w, t)
}

// HandleClose handles POST /api/v1/soporte/tickets/{ticketID}/cerrar
func (h *TicketHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empresaID := middleware.GetTenantFromContext(ctx)
	principal, _ := middleware.GetPrincipalFromContext(ctx)

	ticketID, ok := h.ticketIDParam(w, r)
	if !ok {
		return
	}

	t, err := h.svc.Close(ctx, empresaID, principal.UserID, ticketID)
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	_ = utils.WriteOK(w, t)
}

// HandleCreateMensaje handles POST /api/v1/soporte/tickets/{ticketID}/mensajes
func (h *TicketHandler) HandleCreateMensaje(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empresaID := middleware.GetTenantFromContext(ctx)
	principal, _ := middleware.GetPrincipalFromContext(ctx)

	ticketID, ok := h.ticketIDParam(w, r)
	if !ok {
		return
	}

	var req CreateMensajeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, "validation failed", utils.GetValidationFields(err))
		return
	}

	mensaje, err := h.svc.AddMensaje(ctx, empresaID, principal.UserID, ticketID, req.Cuerpo)
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	_ = utils.WriteCreated(w, mensaje)
}

// HandleListMensajes handles GET /api/v1/soporte/tickets/{ticketID}/mensajes
func (h *TicketHandler) HandleListMensajes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empresaID := middleware.GetTenantFromContext(ctx)

	ticketID, ok := h.ticketIDParam(w, r)
	if !ok {
		return
	}

	mensajes, err := h.svc.ListMensajes(ctx, empresaID, ticketID)
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	if mensajes == nil {
		mensajes = []*models.TicketMensaje{}
	}
	_ = utils.WriteOK(w, mensajes)
}

// HandleListAuditoria handles GET /api/v1/soporte/tickets/{ticketID}/auditoria
func (h *TicketHandler) HandleListAuditoria(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	empresaID := middleware.GetTenantFromContext(ctx)

	ticketID, ok := h.ticketIDParam(w, r)
	if !ok {
		return
	}

	entries, err := h.svc.ListAuditoria(ctx, empresaID, ticketID)
	if err != nil {
		respondServiceError(w, h.logger, middleware.GetRequestIDFromContext(ctx), err)
		return
	}

	if entries == nil {
		entries = []*models.TicketAudit{}
	}
	_ = utils.WriteOK(w, entries)
}

// ticketIDParam parses the {ticketID} path parameter, writing a 400 on failure
func (h *TicketHandler) ticketIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "ticketID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = utils.WriteBadRequest(w, "invalid ticket id", nil)
		return 0, false
	}
	return id, true
}
