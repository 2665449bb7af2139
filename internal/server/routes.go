package server

import (
	"net/http"
	"strings"

	"github.com/ternarybob/clarity/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Projects
	mux.HandleFunc("/api/projects", s.app.ProjectHandler.CollectionHandler) // GET (list), POST (create)
	mux.HandleFunc("/api/projects/", s.app.ProjectHandler.ItemHandler)      // GET/DELETE /{id}

	// API routes - Context documents
	mux.HandleFunc("/api/context/", s.handleContextRoutes)

	// API routes - Questionnaire
	mux.HandleFunc("/api/questions", s.app.QuestionHandler.CatalogHandler)
	mux.HandleFunc("/api/questions/", s.handleQuestionRoutes)

	// API routes - Features
	mux.HandleFunc("/api/features/", s.handleFeatureRoutes)

	// API routes - PRD
	mux.HandleFunc("/api/prd/", s.handlePRDRoutes)

	// API routes - PRD templates
	mux.HandleFunc("/api/templates", s.app.TemplateHandler.CollectionHandler) // GET (list), POST (create)
	mux.HandleFunc("/api/templates/", s.app.TemplateHandler.ItemHandler)      // GET/PUT/DELETE /{id}, POST /{id}/clone, GET /{id}/sections

	// API routes - Stakeholder views
	mux.HandleFunc("/api/stakeholder/profiles", s.app.StakeholderHandler.ProfilesHandler)
	mux.HandleFunc("/api/stakeholder/view/", s.app.StakeholderHandler.ViewHandler)
	mux.HandleFunc("/api/stakeholder/summary/", s.app.StakeholderHandler.SummaryHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleContextRoutes routes context document requests
func (s *Server) handleContextRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case strings.HasPrefix(path, "/api/context/upload/"):
		s.app.ContextHandler.UploadHandler(w, r)
	case strings.HasPrefix(path, "/api/context/text/"):
		s.app.ContextHandler.TextHandler(w, r)
	case strings.HasPrefix(path, "/api/context/analyze/"):
		s.app.ContextHandler.AnalyzeHandler(w, r)
	case strings.HasPrefix(path, "/api/context/file/"):
		s.app.ContextHandler.FileHandler(w, r)
	default:
		// GET /api/context/{projectID}
		s.app.ContextHandler.ListHandler(w, r)
	}
}

// handleQuestionRoutes routes questionnaire requests. Paths are either
// /api/questions/prefill/{projectID} or
// /api/questions/{projectID}/{action}[/{questionID}].
func (s *Server) handleQuestionRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if strings.HasPrefix(path, "/api/questions/prefill/") {
		s.app.QuestionHandler.PrefillHandler(w, r)
		return
	}

	projectID := handlers.PathSegment(path, "/api/questions/", 0)
	action := handlers.PathSegment(path, "/api/questions/", 1)
	if projectID == "" || action == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch action {
	case "responses":
		s.app.QuestionHandler.ResponsesHandler(w, r, projectID)
	case "response":
		questionID := handlers.PathSegment(path, "/api/questions/", 2)
		if questionID == "" {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		s.app.QuestionHandler.ResponseHandler(w, r, projectID, questionID)
	case "confirm":
		questionID := handlers.PathSegment(path, "/api/questions/", 2)
		if questionID == "" {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		s.app.QuestionHandler.ConfirmHandler(w, r, projectID, questionID)
	case "stats":
		s.app.QuestionHandler.StatsHandler(w, r, projectID)
	case "followups":
		s.app.QuestionHandler.FollowupsHandler(w, r, projectID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleFeatureRoutes routes feature requests
func (s *Server) handleFeatureRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case strings.HasPrefix(path, "/api/features/extract/"):
		s.app.FeatureHandler.ExtractHandler(w, r)
	case strings.HasPrefix(path, "/api/features/item/"):
		s.app.FeatureHandler.ItemHandler(w, r)
	case strings.HasPrefix(path, "/api/features/select/"):
		s.app.FeatureHandler.SelectHandler(w, r)
	default:
		// GET/POST /api/features/{projectID}
		s.app.FeatureHandler.CollectionHandler(w, r)
	}
}

// handlePRDRoutes routes PRD requests
func (s *Server) handlePRDRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case strings.HasPrefix(path, "/api/prd/generate/"):
		s.app.PRDHandler.GenerateHandler(w, r)
	case strings.HasPrefix(path, "/api/prd/edit/"):
		s.app.PRDHandler.EditHandler(w, r)
	case strings.HasPrefix(path, "/api/prd/regenerate-section/"):
		s.app.PRDHandler.RegenerateSectionHandler(w, r)
	case strings.HasPrefix(path, "/api/prd/save-version/"):
		s.app.PRDHandler.SaveVersionHandler(w, r)
	case strings.HasPrefix(path, "/api/prd/history/"):
		s.app.PRDHandler.HistoryHandler(w, r)
	case strings.HasPrefix(path, "/api/prd/snapshot/"):
		s.app.PRDHandler.SnapshotHandler(w, r)
	case strings.HasPrefix(path, "/api/prd/restore/"):
		s.app.PRDHandler.RestoreHandler(w, r)
	case strings.HasPrefix(path, "/api/prd/changelog/"):
		s.app.PRDHandler.ChangelogHandler(w, r)
	case strings.HasPrefix(path, "/api/prd/preview/"):
		s.app.PRDHandler.PreviewHandler(w, r)
	case strings.HasPrefix(path, "/api/prd/export/md/"):
		s.app.PRDHandler.ExportMarkdownHandler(w, r)
	case strings.HasPrefix(path, "/api/prd/export/pdf/"):
		s.app.PRDHandler.ExportPDFHandler(w, r)
	default:
		// GET /api/prd/{projectID}
		s.app.PRDHandler.GetHandler(w, r)
	}
}
