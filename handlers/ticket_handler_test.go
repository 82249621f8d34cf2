package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/plenario/gestion-api/middleware"
	"github.com/plenario/gestion-api/models"
	"github.com/plenario/gestion-api/services"
	"github.com/plenario/gestion-api/services/ticket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubTicketService lets each test plug in just the operations it exercises.
type stubTicketService struct {
	create        func(ctx context.Context, empresaID int64, in ticket.CreateInput) (*models.Ticket, error)
	get           func(ctx context.Context, empresaID, id int64) (*models.Ticket, error)
	list          func(ctx context.Context, empresaID int64, limit, offset int) ([]*models.Ticket, error)
	assign        func(ctx context.Context, empresaID, actorID, ticketID, asignadoA int64) (*models.Ticket, error)
	close         func(ctx context.Context, empresaID, actorID, ticketID int64) (*models.Ticket, error)
	addMensaje    func(ctx context.Context, empresaID, autorID, ticketID int64, cuerpo string) (*models.TicketMensaje, error)
	listMensajes  func(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketMensaje, error)
	listAuditoria func(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketAudit, error)
}

func (s *stubTicketService) Create(ctx context.Context, empresaID int64, in ticket.CreateInput) (*models.Ticket, error) {
	return s.create(ctx, empresaID, in)
}

func (s *stubTicketService) Get(ctx context.Context, empresaID, id int64) (*models.Ticket, error) {
	return s.get(ctx, empresaID, id)
}

func (s *stubTicketService) List(ctx context.Context, empresaID int64, limit, offset int) ([]*models.Ticket, error) {
	return s.list(ctx, empresaID, limit, offset)
}

func (s *stubTicketService) Assign(ctx context.Context, empresaID, actorID, ticketID, asignadoA int64) (*models.Ticket, error) {
	return s.assign(ctx, empresaID, actorID, ticketID, asignadoA)
}

func (s *stubTicketService) Close(ctx context.Context, empresaID, actorID, ticketID int64) (*models.Ticket, error) {
	return s.close(ctx, empresaID, actorID, ticketID)
}

func (s *stubTicketService) AddMensaje(ctx context.Context, empresaID, autorID, ticketID int64, cuerpo string) (*models.TicketMensaje, error) {
	return s.addMensaje(ctx, empresaID, autorID, ticketID, cuerpo)
}

func (s *stubTicketService) ListMensajes(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketMensaje, error) {
	return s.listMensajes(ctx, empresaID, ticketID)
}

func (s *stubTicketService) ListAuditoria(ctx context.Context, empresaID, ticketID int64) ([]*models.TicketAudit, error) {
	return s.listAuditoria(ctx, empresaID, ticketID)
}

// newTicketRouter mounts the handler on the soporte routes with the tenant and
// principal already attached, standing in for the auth middleware chain.
func newTicketRouter(svc TicketService) http.Handler {
	h := NewTicketHandler(svc, zap.NewNop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithPrincipal(req.Context(), middleware.Principal{UserID: 5, CompanyID: 7})
			ctx = middleware.WithTenant(ctx, 7)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Route("/api/v1/soporte/tickets", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{ticketID}", h.HandleGet)
		r.Post("/{ticketID}/asignar", h.HandleAssign)
		r.Post("/{ticketID}/cerrar", h.HandleClose)
		r.Post("/{ticketID}/mensajes", h.HandleCreateMensaje)
		r.Get("/{ticketID}/mensajes", h.HandleListMensajes)
		r.Get("/{ticketID}/auditoria", h.HandleListAuditoria)
	})
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleCreate(t *testing.T) {
	validBody := map[string]interface{}{
		"titulo":      "Impresora no responde",
		"descripcion": "La impresora de recepcion dejo de imprimir",
		"categoria":   "hardware",
		"prioridad":   "medium",
		"cliente_id":  42,
	}

	t.Run("creates ticket under the tenant scope", func(t *testing.T) {
		svc := &stubTicketService{
			create: func(_ context.Context, empresaID int64, in ticket.CreateInput) (*models.Ticket, error) {
				assert.Equal(t, int64(7), empresaID)
				assert.Equal(t, int64(42), in.ClienteID)
				created := models.NewTicket(empresaID, in.ClienteID, in.Titulo, in.Descripcion, in.Categoria, in.Prioridad)
				created.ID = 101
				return created, nil
			},
		}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets", validBody)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Success bool          `json:"success"`
			Data    models.Ticket `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, int64(101), resp.Data.ID)
		assert.Equal(t, int64(7), resp.Data.EmpresaID)
		assert.Equal(t, models.TicketEstadoAbierto, resp.Data.Estado)
	})

	t.Run("titulo below minimum length rejected", func(t *testing.T) {
		body := map[string]interface{}{}
		for k, v := range validBody {
			body[k] = v
		}
		body["titulo"] = "abcd"

		svc := &stubTicketService{create: func(context.Context, int64, ticket.CreateInput) (*models.Ticket, error) {
			t.Fatal("service should not be called")
			return nil, nil
		}}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
		assert.Contains(t, w.Body.String(), "Titulo")
	})

	t.Run("titulo at minimum length accepted", func(t *testing.T) {
		body := map[string]interface{}{}
		for k, v := range validBody {
			body[k] = v
		}
		body["titulo"] = "abcde"

		svc := &stubTicketService{
			create: func(_ context.Context, empresaID int64, in ticket.CreateInput) (*models.Ticket, error) {
				return models.NewTicket(empresaID, in.ClienteID, in.Titulo, in.Descripcion, in.Categoria, in.Prioridad), nil
			},
		}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets", body)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("descripcion over maximum length rejected", func(t *testing.T) {
		body := map[string]interface{}{}
		for k, v := range validBody {
			body[k] = v
		}
		body["descripcion"] = strings.Repeat("x", 5001)

		svc := &stubTicketService{create: func(context.Context, int64, ticket.CreateInput) (*models.Ticket, error) {
			t.Fatal("service should not be called")
			return nil, nil
		}}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown categoria rejected", func(t *testing.T) {
		body := map[string]interface{}{}
		for k, v := range validBody {
			body[k] = v
		}
		body["categoria"] = "cocina"

		svc := &stubTicketService{create: func(context.Context, int64, ticket.CreateInput) (*models.Ticket, error) {
			t.Fatal("service should not be called")
			return nil, nil
		}}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		svc := &stubTicketService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/soporte/tickets", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		newTicketRouter(svc).ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleGet(t *testing.T) {
	t.Run("unknown ticket maps to 404", func(t *testing.T) {
		svc := &stubTicketService{
			get: func(context.Context, int64, int64) (*models.Ticket, error) {
				return nil, services.ErrTicketNotFound
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/soporte/tickets/999", nil)
		w := httptest.NewRecorder()
		newTicketRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("non-numeric id rejected before the service", func(t *testing.T) {
		svc := &stubTicketService{get: func(context.Context, int64, int64) (*models.Ticket, error) {
			t.Fatal("service should not be called")
			return nil, nil
		}}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/soporte/tickets/abc", nil)
		w := httptest.NewRecorder()
		newTicketRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleList(t *testing.T) {
	t.Run("empty result is an empty array, not null", func(t *testing.T) {
		svc := &stubTicketService{
			list: func(context.Context, int64, int, int) ([]*models.Ticket, error) {
				return nil, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/soporte/tickets", nil)
		w := httptest.NewRecorder()
		newTicketRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	t.Run("forwards pagination params", func(t *testing.T) {
		svc := &stubTicketService{
			list: func(_ context.Context, empresaID int64, limit, offset int) ([]*models.Ticket, error) {
				assert.Equal(t, int64(7), empresaID)
				assert.Equal(t, 10, limit)
				assert.Equal(t, 20, offset)
				return nil, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/soporte/tickets?limit=10&offset=20", nil)
		w := httptest.NewRecorder()
		newTicketRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHandleAssign(t *testing.T) {
	t.Run("assigns with the principal as actor", func(t *testing.T) {
		asignado := int64(10)
		svc := &stubTicketService{
			assign: func(_ context.Context, empresaID, actorID, ticketID, asignadoA int64) (*models.Ticket, error) {
				assert.Equal(t, int64(7), empresaID)
				assert.Equal(t, int64(5), actorID)
				assert.Equal(t, int64(101), ticketID)
				assert.Equal(t, int64(10), asignadoA)
				return &models.Ticket{ID: ticketID, EmpresaID: empresaID, Estado: models.TicketEstadoAsignado, AsignadoA: &asignado}, nil
			},
		}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets/101/asignar",
			map[string]interface{}{"asignado_a": 10})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"estado":"asignado"`)
	})

	t.Run("closed ticket maps to 409", func(t *testing.T) {
		svc := &stubTicketService{
			assign: func(context.Context, int64, int64, int64, int64) (*models.Ticket, error) {
				return nil, services.ErrTicketCerrado
			},
		}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets/101/asignar",
			map[string]interface{}{"asignado_a": 10})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "CONFLICT")
	})

	t.Run("missing asignado_a rejected", func(t *testing.T) {
		svc := &stubTicketService{assign: func(context.Context, int64, int64, int64, int64) (*models.Ticket, error) {
			t.Fatal("service should not be called")
			return nil, nil
		}}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets/101/asignar",
			map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleClose(t *testing.T) {
	t.Run("closes the ticket", func(t *testing.T) {
		svc := &stubTicketService{
			close: func(_ context.Context, empresaID, actorID, ticketID int64) (*models.Ticket, error) {
				assert.Equal(t, int64(5), actorID)
				return &models.Ticket{ID: ticketID, EmpresaID: empresaID, Estado: models.TicketEstadoCerrado}, nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/soporte/tickets/101/cerrar", nil)
		w := httptest.NewRecorder()
		newTicketRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"estado":"cerrado"`)
	})

	t.Run("already closed maps to 409", func(t *testing.T) {
		svc := &stubTicketService{
			close: func(context.Context, int64, int64, int64) (*models.Ticket, error) {
				return nil, services.ErrTicketCerrado
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/soporte/tickets/101/cerrar", nil)
		w := httptest.NewRecorder()
		newTicketRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandleCreateMensaje(t *testing.T) {
	t.Run("cuerpo at maximum length accepted", func(t *testing.T) {
		cuerpo := strings.Repeat("x", 5000)
		svc := &stubTicketService{
			addMensaje: func(_ context.Context, empresaID, autorID, ticketID int64, got string) (*models.TicketMensaje, error) {
				assert.Len(t, got, 5000)
				return &models.TicketMensaje{ID: 1, TicketID: ticketID, EmpresaID: empresaID, AutorID: autorID, Cuerpo: got}, nil
			},
		}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets/101/mensajes",
			map[string]interface{}{"cuerpo": cuerpo})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("cuerpo over maximum length rejected", func(t *testing.T) {
		svc := &stubTicketService{addMensaje: func(context.Context, int64, int64, int64, string) (*models.TicketMensaje, error) {
			t.Fatal("service should not be called")
			return nil, nil
		}}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets/101/mensajes",
			map[string]interface{}{"cuerpo": strings.Repeat("x", 5001)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty cuerpo rejected", func(t *testing.T) {
		svc := &stubTicketService{addMensaje: func(context.Context, int64, int64, int64, string) (*models.TicketMensaje, error) {
			t.Fatal("service should not be called")
			return nil, nil
		}}

		w := postJSON(t, newTicketRouter(svc), "/api/v1/soporte/tickets/101/mensajes",
			map[string]interface{}{"cuerpo": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleListAuditoria(t *testing.T) {
	svc := &stubTicketService{
		listAuditoria: func(_ context.Context, empresaID, ticketID int64) ([]*models.TicketAudit, error) {
			return []*models.TicketAudit{
				models.NewTicketAudit(ticketID, empresaID, 5, models.AuditAccionAssign, ""),
				models.NewTicketAudit(ticketID, empresaID, 5, models.AuditAccionClose, ""),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/soporte/tickets/101/auditoria", nil)
	w := httptest.NewRecorder()
	newTicketRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.TicketAudit `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, models.AuditAccionAssign, resp.Data[0].Accion)
	assert.Equal(t, models.AuditAccionClose, resp.Data[1].Accion)
}

func TestRespondServiceError_UnknownErrorIsGeneric(t *testing.T) {
	w := httptest.NewRecorder()
	respondServiceError(w, zap.NewNop(), "req-1", fmt.Errorf("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "connection refused")
}
