package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/models"
	"github.com/ternarybob/clarity/internal/services/templates"
)

// TemplateHandler serves the PRD template library: list, detail,
// create, update, delete, clone, and the bare section list.
type TemplateHandler struct {
	templates *templates.Service
	logger    arbor.ILogger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService *templates.Service, logger arbor.ILogger) *TemplateHandler {
	return &TemplateHandler{
		templates: templateService,
		logger:    logger,
	}
}

type templateRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Sections    []models.TemplateSection `json:"sections"`
}

// CollectionHandler handles GET (list) and POST (create) on /api/templates
func (h *TemplateHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.templates.List()
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"templates": list})
	case http.MethodPost:
		var req templateRequest
		if err := DecodeJSON(r, &req); err != nil {
			WriteServiceError(w, err)
			return
		}

		template, err := h.templates.Create(req.Name, req.Description, req.Sections)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, template)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ItemHandler dispatches /api/templates/{templateID} and its clone and
// sections sub-paths.
func (h *TemplateHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	templateID := PathSegment(r.URL.Path, "/api/templates/", 0)
	if templateID == "" {
		WriteError(w, http.StatusBadRequest, "template ID is required")
		return
	}

	switch PathSegment(r.URL.Path, "/api/templates/", 1) {
	case "":
		h.item(w, r, templateID)
	case "clone":
		h.clone(w, r, templateID)
	case "sections":
		h.sections(w, r, templateID)
	default:
		WriteError(w, http.StatusNotFound, "not found")
	}
}

func (h *TemplateHandler) item(w http.ResponseWriter, r *http.Request, templateID string) {
	switch r.Method {
	case http.MethodGet:
		template, err := h.templates.Get(templateID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, template)
	case http.MethodPut:
		var req templateRequest
		if err := DecodeJSON(r, &req); err != nil {
			WriteServiceError(w, err)
			return
		}

		template, err := h.templates.Update(templateID, req.Name, req.Description, req.Sections)
		if err != nil {
			h.writeTemplateError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, template)
	case http.MethodDelete:
		if err := h.templates.Delete(templateID); err != nil {
			h.writeTemplateError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"message": "template deleted"})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type cloneRequest struct {
	Name string `json:"name"`
}

// clone handles POST /api/templates/{templateID}/clone
func (h *TemplateHandler) clone(w http.ResponseWriter, r *http.Request, templateID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req cloneRequest
	// Body is optional; an empty body clones with a derived name
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			WriteServiceError(w, err)
			return
		}
	}

	template, err := h.templates.Clone(templateID, req.Name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, template)
}

// sections handles GET /api/templates/{templateID}/sections
func (h *TemplateHandler) sections(w http.ResponseWriter, r *http.Request, templateID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sections, err := h.templates.Sections(templateID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"sections": sections})
}

// writeTemplateError maps the read-only default-template error to 403;
// everything else goes through the shared mapping.
func (h *TemplateHandler) writeTemplateError(w http.ResponseWriter, err error) {
	if errors.Is(err, templates.ErrDefaultTemplate) {
		WriteError(w, http.StatusForbidden, strings.TrimSpace(err.Error()))
		return
	}
	WriteServiceError(w, err)
}
