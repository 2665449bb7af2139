package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
	"github.com/ternarybob/clarity/internal/services/extract"
	"github.com/ternarybob/clarity/internal/services/features"
	"github.com/ternarybob/clarity/internal/services/followup"
	"github.com/ternarybob/clarity/internal/services/suggest"
)

// QuestionHandler serves the questionnaire endpoints: catalog retrieval,
// AI prefill, response saves, confirmation, stats, and follow-ups.
type QuestionHandler struct {
	storage  interfaces.StorageManager
	catalog  interfaces.CatalogService
	engine   *suggest.Engine
	rules    *followup.Engine
	features *features.Service
	logger   arbor.ILogger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(storage interfaces.StorageManager, catalog interfaces.CatalogService, engine *suggest.Engine, rules *followup.Engine, featureService *features.Service, logger arbor.ILogger) *QuestionHandler {
	return &QuestionHandler{
		storage:  storage,
		catalog:  catalog,
		engine:   engine,
		rules:    rules,
		features: featureService,
		logger:   logger,
	}
}

// CatalogHandler handles GET /api/questions
func (h *QuestionHandler) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"catalog":         h.catalog.Catalog(),
		"total_questions": h.catalog.TotalQuestions(),
	})
}

// prefillResponse is one saved suggestion in the prefill reply
type prefillResponse struct {
	QuestionID string `json:"question_id"`
	Response   string `json:"response"`
	Confidence string `json:"confidence"`
	SourceHint string `json:"source_hint,omitempty"`
}

// PrefillHandler handles POST /api/questions/prefill/{projectID}: runs
// the suggestion engine over the project's context and saves the
// results as unconfirmed answers.
func (h *QuestionHandler) PrefillHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/questions/prefill/", 0)
	if _, err := h.storage.ProjectStorage().GetProject(projectID); err != nil {
		WriteServiceError(w, err)
		return
	}

	files, err := h.storage.ContextStorage().ListFiles(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	selected, err := h.features.Selected(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	result, err := h.engine.Suggest(r.Context(), extract.Aggregate(files), selected, h.catalog.Questions())
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			WriteErrorHint(w, http.StatusBadRequest, err.Error(),
				"upload at least one context document before requesting suggestions")
			return
		}
		WriteServiceError(w, err)
		return
	}

	persisted := h.engine.PersistSuggestions(h.storage.ResponseStorage(), projectID, result.Suggestions)

	responses := make([]prefillResponse, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		if s.SuggestedAnswer == "" {
			continue
		}
		responses = append(responses, prefillResponse{
			QuestionID: s.QuestionID,
			Response:   s.SuggestedAnswer,
			Confidence: s.Confidence,
			SourceHint: s.SourceHint,
		})
	}

	reply := map[string]interface{}{
		"message":          "prefill complete",
		"responses":        responses,
		"total_processed":  result.TotalProcessed,
		"degraded_batches": result.DegradedBatches,
	}
	if len(persisted.SaveErrors) > 0 {
		reply["save_errors"] = persisted.SaveErrors
	}
	WriteJSON(w, http.StatusOK, reply)
}

type saveResponseRequest struct {
	Response   string `json:"response"`
	Confirmed  *bool  `json:"confirmed,omitempty"`
	Confidence string `json:"confidence,omitempty"`
}

// ResponsesHandler handles GET and PUT on /api/questions/{projectID}/responses
func (h *QuestionHandler) ResponsesHandler(w http.ResponseWriter, r *http.Request, projectID string) {
	if _, err := h.storage.ProjectStorage().GetProject(projectID); err != nil {
		WriteServiceError(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		responses, err := h.storage.ResponseStorage().ListResponses(projectID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"responses": responses})
	case http.MethodPut:
		var req map[string]saveResponseRequest
		if err := DecodeJSON(r, &req); err != nil {
			WriteServiceError(w, err)
			return
		}

		saved := 0
		var saveErrors []string
		for questionID, entry := range req {
			if _, err := h.saveResponse(projectID, questionID, entry); err != nil {
				saveErrors = append(saveErrors, questionID+": "+err.Error())
				continue
			}
			saved++
		}

		reply := map[string]interface{}{"saved": saved}
		if len(saveErrors) > 0 {
			reply["save_errors"] = saveErrors
		}
		WriteJSON(w, http.StatusOK, reply)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ResponseHandler handles PUT /api/questions/{projectID}/response/{questionID}
func (h *QuestionHandler) ResponseHandler(w http.ResponseWriter, r *http.Request, projectID, questionID string) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	if _, err := h.storage.ProjectStorage().GetProject(projectID); err != nil {
		WriteServiceError(w, err)
		return
	}

	var req saveResponseRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, err)
		return
	}

	response, err := h.saveResponse(projectID, questionID, req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, response)
}

// saveResponse validates the question ID and upserts a manual answer.
// A manual save clears the AI-suggested flag.
func (h *QuestionHandler) saveResponse(projectID, questionID string, req saveResponseRequest) (*models.QuestionResponse, error) {
	if _, ok := h.catalog.Question(questionID); !ok {
		return nil, common.ValidationError("unknown question ID: %s", questionID)
	}

	confirmed := false
	if req.Confirmed != nil {
		confirmed = *req.Confirmed
	}

	return h.storage.ResponseStorage().UpsertResponse(&models.QuestionResponse{
		ProjectID:   projectID,
		QuestionID:  questionID,
		Response:    strings.TrimSpace(req.Response),
		Confidence:  req.Confidence,
		AISuggested: false,
		Confirmed:   confirmed,
	})
}

type confirmRequest struct {
	Confirmed *bool `json:"confirmed,omitempty"`
}

// ConfirmHandler handles POST /api/questions/{projectID}/confirm/{questionID}.
// Without a body it confirms; {"confirmed": false} unconfirms.
func (h *QuestionHandler) ConfirmHandler(w http.ResponseWriter, r *http.Request, projectID, questionID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	existing, err := h.storage.ResponseStorage().GetResponse(projectID, questionID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	confirmed := true
	var req confirmRequest
	if err := DecodeJSON(r, &req); err == nil && req.Confirmed != nil {
		confirmed = *req.Confirmed
	}

	existing.Confirmed = confirmed
	updated, err := h.storage.ResponseStorage().UpsertResponse(existing)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// StatsHandler handles GET /api/questions/{projectID}/stats
func (h *QuestionHandler) StatsHandler(w http.ResponseWriter, r *http.Request, projectID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, err := h.storage.ProjectStorage().GetProject(projectID); err != nil {
		WriteServiceError(w, err)
		return
	}

	responses, err := h.storage.ResponseStorage().ListResponses(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	stats := models.ResponseStats{TotalQuestions: h.catalog.TotalQuestions()}
	for _, resp := range responses {
		if strings.TrimSpace(resp.Response) == "" {
			continue
		}
		stats.Answered++
		if resp.Confirmed {
			stats.Confirmed++
		}
		if resp.AISuggested {
			stats.AISuggested++
		}
	}
	if stats.TotalQuestions > 0 {
		stats.CompletionPercentage = float64(stats.Confirmed) / float64(stats.TotalQuestions) * 100
	}
	WriteJSON(w, http.StatusOK, stats)
}

type followupRequest struct {
	QuestionID string `json:"question_id"`
	Response   string `json:"response"`
	IncludeAI  bool   `json:"include_ai,omitempty"`
}

// FollowupsHandler handles POST /api/questions/{projectID}/followups:
// keyword follow-ups, skip suggestions, related unanswered siblings, and
// optionally AI follow-ups for one answered question.
func (h *QuestionHandler) FollowupsHandler(w http.ResponseWriter, r *http.Request, projectID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if _, err := h.storage.ProjectStorage().GetProject(projectID); err != nil {
		WriteServiceError(w, err)
		return
	}

	var req followupRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteServiceError(w, err)
		return
	}

	question, ok := h.catalog.Question(req.QuestionID)
	if !ok {
		WriteServiceError(w, common.ValidationError("unknown question ID: %s", req.QuestionID))
		return
	}

	related, err := h.rules.RelatedUnanswered(projectID, req.QuestionID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	followups := h.rules.FollowUps(req.QuestionID, req.Response)
	aiFollowups := []models.FollowUpQuestion{}
	if req.IncludeAI {
		aiFollowups = h.rules.AIFollowUps(r.Context(), question, req.Response)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"follow_ups":        followups,
		"ai_follow_ups":     aiFollowups,
		"related_questions": related,
		"skip_questions":    h.rules.SkipSuggestions(req.QuestionID, req.Response),
	})
}
