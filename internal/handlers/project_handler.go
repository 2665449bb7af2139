package handlers

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
)

// ProjectHandler serves project CRUD endpoints
type ProjectHandler struct {
	storage  interfaces.StorageManager
	logger   arbor.ILogger
	validate *validator.Validate
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(storage interfaces.StorageManager, logger arbor.ILogger) *ProjectHandler {
	return &ProjectHandler{
		storage:  storage,
		logger:   logger,
		validate: validator.New(),
	}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CollectionHandler handles POST (create) and GET (list) on /api/projects
func (h *ProjectHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ProjectHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, err)
		return
	}

	project := &models.Project{
		ID:          common.NewProjectID(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.validate.Struct(project); err != nil {
		WriteServiceError(w, common.ValidationError("invalid project: %s", err.Error()))
		return
	}

	if err := h.storage.ProjectStorage().SaveProject(project); err != nil {
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().Str("project_id", project.ID).Str("name", project.Name).Msg("Project created")
	WriteJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) list(w http.ResponseWriter, r *http.Request) {
	projects, err := h.storage.ProjectStorage().ListProjects()
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

// ItemHandler handles GET and DELETE on /api/projects/{id}
func (h *ProjectHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	id := PathSegment(r.URL.Path, "/api/projects/", 0)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		project, err := h.storage.ProjectStorage().GetProject(id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, project)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// delete removes the project and everything hanging off it
func (h *ProjectHandler) delete(w http.ResponseWriter, id string) {
	if _, err := h.storage.ProjectStorage().GetProject(id); err != nil {
		WriteServiceError(w, err)
		return
	}

	// Cascade in dependency order; individual failures are logged but do
	// not abort the remaining cleanup
	if err := h.storage.ContextStorage().DeleteProjectFiles(id); err != nil {
		h.logger.Warn().Err(err).Str("project_id", id).Msg("Failed to delete project context files")
	}
	if err := h.storage.ResponseStorage().DeleteProjectResponses(id); err != nil {
		h.logger.Warn().Err(err).Str("project_id", id).Msg("Failed to delete project responses")
	}
	if err := h.storage.FeatureStorage().DeleteProjectFeatures(id); err != nil {
		h.logger.Warn().Err(err).Str("project_id", id).Msg("Failed to delete project features")
	}
	if err := h.storage.PRDStorage().DeleteProjectSnapshots(id); err != nil {
		h.logger.Warn().Err(err).Str("project_id", id).Msg("Failed to delete project snapshots")
	}
	if err := h.storage.PRDStorage().DeletePRD(id); err != nil {
		h.logger.Warn().Err(err).Str("project_id", id).Msg("Failed to delete project PRD")
	}
	if err := h.storage.ProjectStorage().DeleteProject(id); err != nil {
		WriteServiceError(w, err)
		return
	}

	h.logger.Info().Str("project_id", id).Msg("Project deleted")
	WriteJSON(w, http.StatusOK, map[string]string{"message": "project deleted"})
}
