package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/plenario/gestion-api/utils"
	"go.uber.org/zap"
)

// HealthHandler handles liveness and readiness probes. Probes are
// unauthenticated and never touch the tenant scope.
type HealthHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *sql.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// HandleHealth handles GET /health.
// Basic liveness check - always returns 200 if the process is running.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]string{"status": "ok"})
}

// HandleModuleHealth returns the handler for GET /api/v1/{module}/health
func (h *HealthHandler) HandleModuleHealth(module string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, map[string]string{
			"module": module,
			"status": "ok",
		})
	}
}

// HandleReadiness handles GET /health/ready.
// Validates that the database is reachable.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := http.StatusOK

	if err := h.checkDatabase(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "healthy"
	}

	_ = utils.WriteJSON(w, status, utils.SuccessResponse{
		Success: status == http.StatusOK,
		Data: map[string]interface{}{
			"status": checks["database"],
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil
	}

	if err := h.db.PingContext(ctx); err != nil {
		return err
	}

	var result int
	return h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
}
