package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Analysis
	mux.HandleFunc("/api/analyze", s.app.AnalysisHandler.AnalyzeHandler)        // POST
	mux.HandleFunc("/api/analyses", s.app.AnalysisHandler.ListAnalysesHandler)  // GET
	mux.HandleFunc("/api/analyses/", s.app.AnalysisHandler.GetAnalysisHandler)  // GET /{id}

	// API routes - Conversation sessions
	mux.HandleFunc("/api/sessions", s.app.SessionHandler.CreateSessionHandler)  // POST
	mux.HandleFunc("/api/sessions/", s.app.SessionHandler.SessionRoutesHandler) // GET/DELETE /{id} and subpaths

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// Catch-all for unknown API paths
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/" {
			s.app.APIHandler.NotFoundHandler(w, r)
			return
		}
		http.NotFound(w, r)
	})

	return mux
}
