package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
)

// APIHandler serves system endpoints: health, version, API 404s
type APIHandler struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(llm interfaces.LLMService, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		llm:    llm,
		logger: logger,
	}
}

// HealthHandler reports service health including the AI provider
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	aiStatus := "not configured"
	if h.llm != nil {
		if err := h.llm.HealthCheck(r.Context()); err != nil {
			aiStatus = "unavailable"
		} else {
			aiStatus = "ok"
		}
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"ai":     aiStatus,
	})
}

// VersionHandler reports build information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetFullVersion(),
	})
}

// NotFoundHandler is the catch-all for unmatched API routes
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "unknown API route: "+r.URL.Path)
}
