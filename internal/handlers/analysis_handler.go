package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/models"
)

// AnalysisHandler serves analysis submission and retrieval endpoints.
type AnalysisHandler struct {
	analysis interfaces.AnalysisService
	storage  interfaces.AnalysisStorage
	logger   arbor.ILogger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(analysis interfaces.AnalysisService, storage interfaces.AnalysisStorage, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		storage:  storage,
		logger:   logger,
	}
}

// AnalyzeHandler handles POST /api/analyze
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.analysis.Analyze(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrSessionNotFound):
			WriteError(w, http.StatusNotFound, "Session not found")
		case strings.Contains(err.Error(), "invalid analysis request"):
			WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("Analysis failed")
			WriteError(w, http.StatusInternalServerError, "Analysis failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// ListAnalysesHandler handles GET /api/analyses?limit=N
func (h *AnalysisHandler) ListAnalysesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			WriteError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	analyses, err := h.storage.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list analyses")
		WriteError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": analyses,
		"count":    len(analyses),
	})
}

// GetAnalysisHandler handles GET /api/analyses/{id}
func (h *AnalysisHandler) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "Analysis id is required")
		return
	}

	analysis, err := h.storage.GetAnalysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrAnalysisNotFound) {
			WriteError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("Failed to load analysis")
		WriteError(w, http.StatusInternalServerError, "Failed to load analysis")
		return
	}

	WriteJSON(w, http.StatusOK, analysis)
}
