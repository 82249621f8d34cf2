package app

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/plenario/gestion-api/handlers"
	"github.com/plenario/gestion-api/middleware"
)

// Modules are the business domains exposed by the API. Each gets an
// unauthenticated health probe; protected routes live under its prefix.
var Modules = []string{"alm", "core", "rrhh", "crm", "bpm", "erp", "soporte", "bi"}

// NewRouter builds the chi router with the full middleware chain.
// Order for protected routes: RequestID -> Logging -> Recovery -> CORS ->
// RequireAuth -> RequireTenant -> handler. Auth and tenant scoping always run
// before any handler that touches data.
func NewRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var sqlDB *sql.DB
	if deps.DB != nil {
		sqlDB = deps.DB.DB
	}
	healthHandler := handlers.NewHealthHandler(sqlDB, deps.Logger)
	accountHandler := handlers.NewAccountHandler(deps.AccountService, deps.Logger)
	ticketHandler := handlers.NewTicketHandler(deps.TicketService, deps.Logger)

	// Unauthenticated probes
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/ready", healthHandler.HandleReadiness)
	for _, module := range Modules {
		r.Get("/api/v1/"+module+"/health", healthHandler.HandleModuleHealth(module))
	}

	// Core module (legacy /api/core prefix)
	r.Route("/api/core", func(r chi.Router) {
		r.Post("/login", accountHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireTenant)

			r.Get("/empresa", accountHandler.HandleGetEmpresa)
			r.Get("/usuarios", accountHandler.HandleListUsuarios)
		})
	})

	// Soporte module
	r.Route("/api/v1/soporte/tickets", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)
		r.Use(deps.AuthMiddleware.RequireTenant)

		r.Post("/", ticketHandler.HandleCreate)
		r.Get("/", ticketHandler.HandleList)
		r.Get("/{ticketID}", ticketHandler.HandleGet)
		r.Post("/{ticketID}/asignar", ticketHandler.HandleAssign)
		r.Post("/{ticketID}/cerrar", ticketHandler.HandleClose)
		r.Post("/{ticketID}/mensajes", ticketHandler.HandleCreateMensaje)
		r.Get("/{ticketID}/mensajes", ticketHandler.HandleListMensajes)
		r.Get("/{ticketID}/auditoria", ticketHandler.HandleListAuditoria)
	})

	return r
}
