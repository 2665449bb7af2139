package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
	"github.com/ternarybob/clarity/internal/services/catalog"
	"github.com/ternarybob/clarity/internal/services/features"
	"github.com/ternarybob/clarity/internal/services/followup"
	"github.com/ternarybob/clarity/internal/services/suggest"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return f.err }
func (f *fakeLLM) GetMode() interfaces.LLMMode           { return interfaces.LLMModeCloud }
func (f *fakeLLM) Close() error                          { return nil }

func handlerTestCatalog() *models.Catalog {
	return &models.Catalog{
		Sections: []models.Section{
			{
				ID:    "1",
				Title: "Product Overview",
				Subsections: []models.Subsection{
					{
						ID:    "1.1",
						Title: "Vision",
						Questions: []models.Question{
							{ID: "1.1.1", Text: "What problem does this product solve?"},
							{ID: "1.1.2", Text: "Who are the target users?"},
						},
					},
				},
			},
		},
	}
}

func newQuestionHandler(t *testing.T, storage *fakeStorageManager, llm interfaces.LLMService) *QuestionHandler {
	t.Helper()

	logger := common.GetLogger()
	cat := catalog.NewServiceFromCatalog(handlerTestCatalog(), logger)
	engine := suggest.NewEngine(llm, common.SuggestConfig{
		BatchSize:       15,
		MaxContextChars: 30000,
		BatchInterval:   "1ms",
	}, logger)
	rules := followup.NewEngine(cat, storage.responses, llm, common.FollowupConfig{
		MaxFollowups: 3,
		MaxRelated:   3,
	}, logger)
	featureService := features.NewService(llm, storage.features, logger)

	return NewQuestionHandler(storage, cat, engine, rules, featureService, logger)
}

func TestQuestionHandler_Catalog(t *testing.T) {
	handler := newQuestionHandler(t, newFakeStorageManager(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
	rec := httptest.NewRecorder()
	handler.CatalogHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_questions":2`)
	assert.Contains(t, rec.Body.String(), "What problem does this product solve?")
}

func TestQuestionHandler_PrefillWithoutContextIs400WithHint(t *testing.T) {
	storage := newFakeStorageManager()
	storage.projects.items["proj_1"] = &models.Project{ID: "proj_1", Name: "Empty"}
	handler := newQuestionHandler(t, storage, &fakeLLM{})

	req := httptest.NewRequest(http.MethodPost, "/api/questions/prefill/proj_1", nil)
	rec := httptest.NewRecorder()
	handler.PrefillHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hint"`)
}

func TestQuestionHandler_PrefillUnknownProjectIs404(t *testing.T) {
	handler := newQuestionHandler(t, newFakeStorageManager(), &fakeLLM{})

	req := httptest.NewRequest(http.MethodPost, "/api/questions/prefill/proj_missing", nil)
	rec := httptest.NewRecorder()
	handler.PrefillHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuestionHandler_PrefillSavesSuggestions(t *testing.T) {
	storage := newFakeStorageManager()
	storage.projects.items["proj_1"] = &models.Project{ID: "proj_1", Name: "Alpha"}
	storage.contexts.files = append(storage.contexts.files, &models.ContextFile{
		ID:            "file_1",
		ProjectID:     "proj_1",
		FileName:      "notes.md",
		ExtractedText: "A meal planning app for busy families.",
	})

	reply := `{"responses": [
		{"question_id": "1.1.1", "suggested_answer": "Families struggle to plan weekly meals.", "confidence": "high", "source_hint": "notes.md"},
		{"question_id": "1.1.2", "suggested_answer": "Busy parents.", "confidence": "medium", "source_hint": "notes.md"}
	]}`
	handler := newQuestionHandler(t, storage, &fakeLLM{reply: reply})

	req := httptest.NewRequest(http.MethodPost, "/api/questions/prefill/proj_1", nil)
	rec := httptest.NewRecorder()
	handler.PrefillHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Responses       []prefillResponse `json:"responses"`
		TotalProcessed  int               `json:"total_processed"`
		DegradedBatches int               `json:"degraded_batches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Responses, 2)
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Zero(t, result.DegradedBatches)

	saved, err := storage.responses.GetResponse("proj_1", "1.1.1")
	require.NoError(t, err)
	assert.True(t, saved.AISuggested)
	assert.False(t, saved.Confirmed)
}

func TestQuestionHandler_SaveResponseValidatesQuestionID(t *testing.T) {
	storage := newFakeStorageManager()
	storage.projects.items["proj_1"] = &models.Project{ID: "proj_1", Name: "Alpha"}
	handler := newQuestionHandler(t, storage, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/questions/proj_1/response/9.9.9",
		strings.NewReader(`{"response": "whatever"}`))
	rec := httptest.NewRecorder()
	handler.ResponseHandler(rec, req, "proj_1", "9.9.9")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuestionHandler_SaveResponseClearsAISuggested(t *testing.T) {
	storage := newFakeStorageManager()
	storage.projects.items["proj_1"] = &models.Project{ID: "proj_1", Name: "Alpha"}
	storage.responses.items["proj_1/1.1.1"] = &models.QuestionResponse{
		ProjectID: "proj_1", QuestionID: "1.1.1", Response: "old", AISuggested: true,
	}
	handler := newQuestionHandler(t, storage, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/questions/proj_1/response/1.1.1",
		strings.NewReader(`{"response": "  Families need faster planning.  "}`))
	rec := httptest.NewRecorder()
	handler.ResponseHandler(rec, req, "proj_1", "1.1.1")

	require.Equal(t, http.StatusOK, rec.Code)

	saved, err := storage.responses.GetResponse("proj_1", "1.1.1")
	require.NoError(t, err)
	assert.Equal(t, "Families need faster planning.", saved.Response)
	assert.False(t, saved.AISuggested)
}

func TestQuestionHandler_ConfirmToggle(t *testing.T) {
	storage := newFakeStorageManager()
	storage.responses.items["proj_1/1.1.1"] = &models.QuestionResponse{
		ProjectID: "proj_1", QuestionID: "1.1.1", Response: "answer",
	}
	handler := newQuestionHandler(t, storage, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/questions/proj_1/confirm/1.1.1", nil)
	rec := httptest.NewRecorder()
	handler.ConfirmHandler(rec, req, "proj_1", "1.1.1")

	require.Equal(t, http.StatusOK, rec.Code)
	saved, _ := storage.responses.GetResponse("proj_1", "1.1.1")
	assert.True(t, saved.Confirmed)

	req = httptest.NewRequest(http.MethodPost, "/api/questions/proj_1/confirm/1.1.1",
		strings.NewReader(`{"confirmed": false}`))
	rec = httptest.NewRecorder()
	handler.ConfirmHandler(rec, req, "proj_1", "1.1.1")

	require.Equal(t, http.StatusOK, rec.Code)
	saved, _ = storage.responses.GetResponse("proj_1", "1.1.1")
	assert.False(t, saved.Confirmed)
}

func TestQuestionHandler_Stats(t *testing.T) {
	storage := newFakeStorageManager()
	storage.projects.items["proj_1"] = &models.Project{ID: "proj_1", Name: "Alpha"}
	storage.responses.items["proj_1/1.1.1"] = &models.QuestionResponse{
		ProjectID: "proj_1", QuestionID: "1.1.1", Response: "answer", Confirmed: true, AISuggested: true,
	}
	storage.responses.items["proj_1/1.1.2"] = &models.QuestionResponse{
		ProjectID: "proj_1", QuestionID: "1.1.2", Response: "   ",
	}
	handler := newQuestionHandler(t, storage, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/questions/proj_1/stats", nil)
	rec := httptest.NewRecorder()
	handler.StatsHandler(rec, req, "proj_1")

	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.ResponseStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalQuestions)
	assert.Equal(t, 1, stats.Answered)
	assert.Equal(t, 1, stats.Confirmed)
	assert.Equal(t, 1, stats.AISuggested)
	assert.InDelta(t, 50.0, stats.CompletionPercentage, 0.01)
}

func TestQuestionHandler_FollowupsForKeywordMatch(t *testing.T) {
	storage := newFakeStorageManager()
	storage.projects.items["proj_1"] = &models.Project{ID: "proj_1", Name: "Alpha"}
	handler := newQuestionHandler(t, storage, nil)

	body := strings.NewReader(`{"question_id": "1.1.1", "response": "We integrate with Stripe for payment processing."}`)
	req := httptest.NewRequest(http.MethodPost, "/api/questions/proj_1/followups", body)
	rec := httptest.NewRecorder()
	handler.FollowupsHandler(rec, req, "proj_1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"follow_ups"`)
	assert.Contains(t, rec.Body.String(), `"ai_follow_ups"`)
	assert.Contains(t, rec.Body.String(), `"related_questions"`)
	assert.Contains(t, rec.Body.String(), `"skip_questions"`)
	assert.Contains(t, rec.Body.String(), `"type":"follow_up"`)
	assert.Contains(t, rec.Body.String(), `"parent_question_id":"1.1.1"`)
}

func TestQuestionHandler_FollowupsUnknownQuestionIs400(t *testing.T) {
	storage := newFakeStorageManager()
	storage.projects.items["proj_1"] = &models.Project{ID: "proj_1", Name: "Alpha"}
	handler := newQuestionHandler(t, storage, nil)

	body := strings.NewReader(`{"question_id": "9.9.9", "response": "anything"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/questions/proj_1/followups", body)
	rec := httptest.NewRecorder()
	handler.FollowupsHandler(rec, req, "proj_1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
