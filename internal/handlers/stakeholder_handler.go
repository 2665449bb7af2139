package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/services/prd"
	"github.com/ternarybob/clarity/internal/services/stakeholder"
)

// StakeholderHandler serves role-specific PRD views and summaries
type StakeholderHandler struct {
	prd         *prd.Service
	stakeholder *stakeholder.Service
	logger      arbor.ILogger
}

// NewStakeholderHandler creates a new stakeholder handler
func NewStakeholderHandler(prdService *prd.Service, stakeholderService *stakeholder.Service, logger arbor.ILogger) *StakeholderHandler {
	return &StakeholderHandler{
		prd:         prdService,
		stakeholder: stakeholderService,
		logger:      logger,
	}
}

// ProfilesHandler handles GET /api/stakeholder/profiles
func (h *StakeholderHandler) ProfilesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": h.stakeholder.Profiles(),
	})
}

// ViewHandler handles GET /api/stakeholder/view/{projectID}/{role}:
// the project PRD filtered for one stakeholder role.
func (h *StakeholderHandler) ViewHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/stakeholder/view/", 0)
	role := PathSegment(r.URL.Path, "/api/stakeholder/view/", 1)
	if projectID == "" || role == "" {
		WriteError(w, http.StatusBadRequest, "project ID and role are required")
		return
	}

	document, err := h.prd.Get(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	view, err := h.stakeholder.View(document.Content, role)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"role":    role,
		"version": document.Version,
		"content": view,
	})
}

// SummaryHandler handles POST /api/stakeholder/summary/{projectID}/{role}:
// an AI-written summary of the PRD for one role.
func (h *StakeholderHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/stakeholder/summary/", 0)
	role := PathSegment(r.URL.Path, "/api/stakeholder/summary/", 1)
	if projectID == "" || role == "" {
		WriteError(w, http.StatusBadRequest, "project ID and role are required")
		return
	}

	document, err := h.prd.Get(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	summary, err := h.stakeholder.Summarize(r.Context(), document.Content, role)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"role":    role,
		"summary": summary,
	})
}
