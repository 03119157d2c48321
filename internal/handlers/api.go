package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/common"
	"github.com/ternarybob/verdict/internal/interfaces"
)

// APIHandler serves version and health endpoints.
type APIHandler struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(llm interfaces.LLMService, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		llm:    llm,
		logger: logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetFullVersion(),
	})
}

// HealthHandler returns health check status. With ?deep=true the configured
// LLM provider is probed as well.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := map[string]string{"status": "ok"}

	if r.URL.Query().Get("deep") == "true" && h.llm != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		if err := h.llm.HealthCheck(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("LLM health check failed")
			status["status"] = "degraded"
			status["llm"] = err.Error()
			WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["llm"] = "ok"
	}

	WriteJSON(w, http.StatusOK, status)
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
