package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/clarity/internal/models"
)

func askedQuestions() []models.FlatQuestion {
	return []models.FlatQuestion{
		{ID: "1.1.1", Text: "What problem does this solve?"},
		{ID: "1.1.2", Text: "Who are the users?"},
	}
}

func TestParseSuggestions_Envelope(t *testing.T) {
	raw := `{"responses": [
		{"question_id": "1.1.1", "suggested_answer": "Reduces meeting overhead.", "confidence": "high", "source_hint": "vision.md"},
		{"question_id": "1.1.2", "suggested_answer": "", "confidence": "low", "source_hint": ""}
	]}`

	got, err := parseSuggestions(raw, askedQuestions())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Reduces meeting overhead.", got[0].SuggestedAnswer)
	assert.Equal(t, models.ConfidenceHigh, got[0].Confidence)
	// Empty answers survive parsing; persistence decides what to do with them
	assert.Equal(t, "", got[1].SuggestedAnswer)
}

func TestParseSuggestions_BareArray(t *testing.T) {
	raw := `[{"question_id": "1.1.1", "suggested_answer": "Answer.", "confidence": "medium", "source_hint": "notes"}]`

	got, err := parseSuggestions(raw, askedQuestions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.ConfidenceMedium, got[0].Confidence)
}

func TestParseSuggestions_BareArrayMultipleEntries(t *testing.T) {
	raw := `[
		{"question_id": "1.1.1", "suggested_answer": "First.", "confidence": "high", "source_hint": "vision.md"},
		{"question_id": "1.1.2", "suggested_answer": "Second.", "confidence": "low", "source_hint": "notes"}
	]`

	got, err := parseSuggestions(raw, askedQuestions())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1.1.1", got[0].QuestionID)
	assert.Equal(t, "1.1.2", got[1].QuestionID)
}

func TestParseSuggestions_ProseWrappedBareArray(t *testing.T) {
	raw := "Sure! Here are the suggestions:\n```json\n" +
		`[{"question_id": "1.1.1", "suggested_answer": "Answer.", "confidence": "high", "source_hint": "doc"},` +
		`{"question_id": "1.1.2", "suggested_answer": "Other.", "confidence": "medium", "source_hint": "doc"}]` +
		"\n```\n"

	got, err := parseSuggestions(raw, askedQuestions())
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestParseSuggestions_ProseWrapped(t *testing.T) {
	raw := "Here is the JSON you asked for:\n```json\n" +
		`{"responses": [{"question_id": "1.1.1", "suggested_answer": "Answer.", "confidence": "high", "source_hint": "doc"}]}` +
		"\n```\nLet me know if you need anything else."

	got, err := parseSuggestions(raw, askedQuestions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1.1.1", got[0].QuestionID)
}

func TestParseSuggestions_DropsInvalidEntries(t *testing.T) {
	raw := `{"responses": [
		{"question_id": "", "suggested_answer": "orphan", "confidence": "high"},
		{"question_id": "1.1.1", "confidence": "high"},
		{"question_id": "9.9.9", "suggested_answer": "not asked", "confidence": "high"},
		{"question_id": "1.1.2", "suggested_answer": "valid", "confidence": "certain"}
	]}`

	got, err := parseSuggestions(raw, askedQuestions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1.1.2", got[0].QuestionID)
	// Unknown confidence vocabulary normalizes to low
	assert.Equal(t, models.ConfidenceLow, got[0].Confidence)
}

func TestParseSuggestions_Malformed(t *testing.T) {
	_, err := parseSuggestions("no json here at all", askedQuestions())
	assert.Error(t, err)

	_, err = parseSuggestions(`{"responses": [{"question_id": }`, askedQuestions())
	assert.Error(t, err)
}

func TestParseSuggestions_TrimsAnswerWhitespace(t *testing.T) {
	raw := `{"responses": [{"question_id": "1.1.1", "suggested_answer": "  padded  ", "confidence": "high", "source_hint": ""}]}`

	got, err := parseSuggestions(raw, askedQuestions())
	require.NoError(t, err)
	assert.Equal(t, "padded", got[0].SuggestedAnswer)
}
