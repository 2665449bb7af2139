package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/services/extract"
	"github.com/ternarybob/clarity/internal/services/features"
)

// FeatureHandler serves feature endpoints: AI extraction, manual CRUD,
// and selection toggling.
type FeatureHandler struct {
	storage  interfaces.StorageManager
	features *features.Service
	logger   arbor.ILogger
}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler(storage interfaces.StorageManager, featureService *features.Service, logger arbor.ILogger) *FeatureHandler {
	return &FeatureHandler{
		storage:  storage,
		features: featureService,
		logger:   logger,
	}
}

// ExtractHandler handles POST /api/features/extract/{projectID}: runs AI
// feature extraction over the project's aggregated context.
func (h *FeatureHandler) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/features/extract/", 0)
	if _, err := h.storage.ProjectStorage().GetProject(projectID); err != nil {
		WriteServiceError(w, err)
		return
	}

	files, err := h.storage.ContextStorage().ListFiles(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	extracted, err := h.features.Extract(r.Context(), projectID, extract.Aggregate(files))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"features":  extracted,
		"extracted": len(extracted),
	})
}

type featureRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

// CollectionHandler handles GET (list) and POST (create) on
// /api/features/{projectID}.
func (h *FeatureHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	projectID := PathSegment(r.URL.Path, "/api/features/", 0)
	if _, err := h.storage.ProjectStorage().GetProject(projectID); err != nil {
		WriteServiceError(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := h.features.List(projectID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"features": list})
	case http.MethodPost:
		var req featureRequest
		if err := DecodeJSON(r, &req); err != nil {
			WriteServiceError(w, err)
			return
		}

		feature, err := h.features.Create(projectID, req.Name, req.Description)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, feature)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ItemHandler handles GET, PUT, and DELETE on /api/features/item/{featureID}
func (h *FeatureHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	featureID := PathSegment(r.URL.Path, "/api/features/item/", 0)
	if featureID == "" {
		WriteError(w, http.StatusBadRequest, "feature ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		feature, err := h.features.Get(featureID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, feature)
	case http.MethodPut:
		var req featureRequest
		if err := DecodeJSON(r, &req); err != nil {
			WriteServiceError(w, err)
			return
		}

		feature, err := h.features.Update(featureID, req.Name, req.Description, req.DisplayOrder)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, feature)
	case http.MethodDelete:
		if _, err := h.features.Get(featureID); err != nil {
			WriteServiceError(w, err)
			return
		}
		if err := h.features.Delete(featureID); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"message": "feature deleted"})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type selectRequest struct {
	Selected bool `json:"selected"`
}

// SelectHandler handles PUT /api/features/select/{featureID}
func (h *FeatureHandler) SelectHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	featureID := PathSegment(r.URL.Path, "/api/features/select/", 0)
	if featureID == "" {
		WriteError(w, http.StatusBadRequest, "feature ID is required")
		return
	}

	var req selectRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, err)
		return
	}

	feature, err := h.features.SetSelected(featureID, req.Selected)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, feature)
}
