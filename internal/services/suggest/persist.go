package suggest

import (
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
)

// PersistResult summarizes what happened while saving a prefill run
type PersistResult struct {
	Saved        int      `json:"saved"`
	SkippedEmpty int      `json:"skipped_empty"`
	SaveErrors   []string `json:"save_errors,omitempty"`
}

// PersistSuggestions writes AI suggestions as unconfirmed responses.
// Suggestions with an empty answer mean the model found nothing in the
// context; they are skipped but counted. A failed save is recorded and
// does not stop the remaining writes.
func (e *Engine) PersistSuggestions(store interfaces.ResponseStorage, projectID string, suggestions []models.AnswerSuggestion) *PersistResult {
	result := &PersistResult{}

	for _, suggestion := range suggestions {
		if suggestion.SuggestedAnswer == "" {
			result.SkippedEmpty++
			continue
		}

		response := &models.QuestionResponse{
			ProjectID:   projectID,
			QuestionID:  suggestion.QuestionID,
			Response:    suggestion.SuggestedAnswer,
			Confidence:  suggestion.Confidence,
			SourceHint:  suggestion.SourceHint,
			AISuggested: true,
			Confirmed:   false,
		}

		if _, err := store.UpsertResponse(response); err != nil {
			result.SaveErrors = append(result.SaveErrors, suggestion.QuestionID+": "+err.Error())
			e.logger.Warn().Err(err).
				Str("project_id", projectID).
				Str("question_id", suggestion.QuestionID).
				Msg("Failed to save suggestion")
			continue
		}

		result.Saved++
	}

	return result
}
