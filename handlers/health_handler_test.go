package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleHealth(t *testing.T) {
	h := NewHealthHandler(nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.HandleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Data["status"])
}

func TestHandleModuleHealth(t *testing.T) {
	h := NewHealthHandler(nil, zap.NewNop())

	for _, module := range []string{"soporte", "crm", "erp"} {
		t.Run(module, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/"+module+"/health", nil)
			w := httptest.NewRecorder()
			h.HandleModuleHealth(module)(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Data map[string]string `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, module, resp.Data["module"])
			assert.Equal(t, "ok", resp.Data["status"])
		})
	}
}

func TestHandleReadiness_NoDatabaseConfigured(t *testing.T) {
	// A nil pool means the probe only asserts the process is up.
	h := NewHealthHandler(nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()
	h.HandleReadiness(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"healthy"`)
}
