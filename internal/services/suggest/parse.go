package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/clarity/internal/models"
)

// rawSuggestion mirrors the JSON shape the model is asked for. Fields
// are pointers where absence must be distinguished from empty.
type rawSuggestion struct {
	QuestionID      string  `json:"question_id"`
	SuggestedAnswer *string `json:"suggested_answer"`
	Confidence      string  `json:"confidence"`
	SourceHint      string  `json:"source_hint"`
}

type suggestionEnvelope struct {
	Responses []rawSuggestion `json:"responses"`
}

// extractJSON pulls the outermost JSON value out of a model reply that
// may be wrapped in prose or markdown fences. Whichever opening bracket
// appears first decides the shape; a bare array must not be narrowed to
// its first object.
func extractJSON(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	objStart := strings.IndexByte(raw, '{')
	arrStart := strings.IndexByte(raw, '[')

	pair := [2]byte{'{', '}'}
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		pair = [2]byte{'[', ']'}
	}

	start := strings.IndexByte(raw, pair[0])
	end := strings.LastIndexByte(raw, pair[1])
	if start >= 0 && end > start {
		return raw[start : end+1], true
	}
	return "", false
}

// parseSuggestions decodes one batch reply into validated suggestions.
// Accepts either the requested {"responses": [...]} envelope or a bare
// array. Entries missing a question_id or the suggested_answer key are
// dropped; entries for questions outside the batch are dropped too so a
// confused model cannot write answers for questions it was not asked.
func parseSuggestions(raw string, batch []models.FlatQuestion) ([]models.AnswerSuggestion, error) {
	jsonText, ok := extractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON found in model reply")
	}

	var entries []rawSuggestion
	if strings.HasPrefix(jsonText, "{") {
		var envelope suggestionEnvelope
		if err := json.Unmarshal([]byte(jsonText), &envelope); err != nil {
			return nil, fmt.Errorf("failed to parse suggestion envelope: %w", err)
		}
		entries = envelope.Responses
	} else {
		if err := json.Unmarshal([]byte(jsonText), &entries); err != nil {
			return nil, fmt.Errorf("failed to parse suggestion array: %w", err)
		}
	}

	asked := make(map[string]bool, len(batch))
	for _, q := range batch {
		asked[q.ID] = true
	}

	suggestions := make([]models.AnswerSuggestion, 0, len(entries))
	for _, entry := range entries {
		if entry.QuestionID == "" || entry.SuggestedAnswer == nil {
			continue
		}
		if !asked[entry.QuestionID] {
			continue
		}
		suggestions = append(suggestions, models.AnswerSuggestion{
			QuestionID:      entry.QuestionID,
			SuggestedAnswer: strings.TrimSpace(*entry.SuggestedAnswer),
			Confidence:      models.NormalizeConfidence(entry.Confidence),
			SourceHint:      entry.SourceHint,
		})
	}

	return suggestions, nil
}
