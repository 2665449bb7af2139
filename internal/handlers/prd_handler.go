package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/services/features"
	"github.com/ternarybob/clarity/internal/services/prd"
)

// PRDHandler serves PRD endpoints: generation, editing, section
// regeneration, version history, changelog, preview, and export.
type PRDHandler struct {
	storage  interfaces.StorageManager
	prd      *prd.Service
	features *features.Service
	pdf      interfaces.PDFService
	logger   arbor.ILogger
}

// NewPRDHandler creates a new PRD handler
func NewPRDHandler(storage interfaces.StorageManager, prdService *prd.Service, featureService *features.Service, pdfService interfaces.PDFService, logger arbor.ILogger) *PRDHandler {
	return &PRDHandler{
		storage:  storage,
		prd:      prdService,
		features: featureService,
		pdf:      pdfService,
		logger:   logger,
	}
}

// GenerateHandler handles POST /api/prd/generate/{projectID}
func (h *PRDHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/generate/", 0)
	project, err := h.storage.ProjectStorage().GetProject(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	selected, err := h.features.Selected(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	document, err := h.prd.Generate(r.Context(), project, selected)
	if err != nil {
		if errors.Is(err, common.ErrNoOutput) {
			WriteErrorHint(w, http.StatusUnprocessableEntity, err.Error(),
				"confirm at least one questionnaire answer before generating the PRD")
			return
		}
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, document)
}

// GetHandler handles GET /api/prd/{projectID}
func (h *PRDHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/", 0)
	document, err := h.prd.Get(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, document)
}

type editRequest struct {
	Content string `json:"content"`
}

// EditHandler handles PUT /api/prd/edit/{projectID}
func (h *PRDHandler) EditHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/edit/", 0)
	var req editRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, err)
		return
	}

	document, err := h.prd.Edit(projectID, req.Content)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, document)
}

type regenerateRequest struct {
	Section      string `json:"section"`
	Instructions string `json:"instructions"`
}

// RegenerateSectionHandler handles POST /api/prd/regenerate-section/{projectID}
func (h *PRDHandler) RegenerateSectionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/regenerate-section/", 0)
	var req regenerateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, err)
		return
	}
	if req.Section == "" {
		WriteError(w, http.StatusBadRequest, "section title is required")
		return
	}

	document, err := h.prd.RegenerateSection(r.Context(), projectID, req.Section, req.Instructions)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, document)
}

type saveVersionRequest struct {
	Label string `json:"label"`
}

// SaveVersionHandler handles POST /api/prd/save-version/{projectID}
func (h *PRDHandler) SaveVersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/save-version/", 0)
	var req saveVersionRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, err)
		return
	}

	snapshot, err := h.prd.SaveVersion(projectID, req.Label)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, snapshot)
}

// HistoryHandler handles GET /api/prd/history/{projectID}
func (h *PRDHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/history/", 0)
	snapshots, err := h.prd.History(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"snapshots": snapshots})
}

// SnapshotHandler handles GET /api/prd/snapshot/{snapshotID}
func (h *PRDHandler) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshotID := PathSegment(r.URL.Path, "/api/prd/snapshot/", 0)
	snapshot, err := h.prd.GetSnapshot(snapshotID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// RestoreHandler handles POST /api/prd/restore/{projectID}/{snapshotID}
func (h *PRDHandler) RestoreHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/restore/", 0)
	snapshotID := PathSegment(r.URL.Path, "/api/prd/restore/", 1)
	if projectID == "" || snapshotID == "" {
		WriteError(w, http.StatusBadRequest, "project ID and snapshot ID are required")
		return
	}

	document, err := h.prd.Restore(projectID, snapshotID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, document)
}

// ChangelogHandler handles GET /api/prd/changelog/{projectID}
func (h *PRDHandler) ChangelogHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/changelog/", 0)
	entries, err := h.prd.Changelog(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"changelog": entries})
}

// PreviewHandler handles GET /api/prd/preview/{projectID}, returning the
// PRD rendered as HTML.
func (h *PRDHandler) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/preview/", 0)
	document, err := h.prd.Get(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	html, err := prd.RenderHTML(document.Content)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// ExportMarkdownHandler handles GET /api/prd/export/md/{projectID}
func (h *PRDHandler) ExportMarkdownHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/export/md/", 0)
	project, err := h.storage.ProjectStorage().GetProject(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	document, err := h.prd.Get(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(project.Name, "md")))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(document.Content))
}

// ExportPDFHandler handles GET /api/prd/export/pdf/{projectID}
func (h *PRDHandler) ExportPDFHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/prd/export/pdf/", 0)
	project, err := h.storage.ProjectStorage().GetProject(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	document, err := h.prd.Get(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	data, err := h.pdf.ConvertMarkdownToPDF(document.Content, project.Name)
	if err != nil {
		h.logger.Error().Err(err).Str("project_id", projectID).Msg("PDF export failed")
		WriteError(w, http.StatusInternalServerError, "PDF generation failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(project.Name, "pdf")))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// exportFileName builds a safe download name from the project name
func exportFileName(name, ext string) string {
	if name == "" {
		name = "prd"
	}
	safe := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			safe = append(safe, r)
		case r == ' ', r == '-', r == '_':
			safe = append(safe, '-')
		}
	}
	if len(safe) == 0 {
		return "prd." + ext
	}
	return string(safe) + "." + ext
}
