package models

import "time"

// Confidence levels reported by the suggestion engine. Anything else
// coming back from a model is normalized to ConfidenceLow.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// NormalizeConfidence maps arbitrary model output onto the known
// confidence vocabulary, defaulting to low.
func NormalizeConfidence(c string) string {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return c
	default:
		return ConfidenceLow
	}
}

// QuestionResponse is a stored answer to a catalog question. Rows are
// keyed by (ProjectID, QuestionID); saves are upserts.
type QuestionResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id" badgerhold:"index"`
	QuestionID  string    `json:"question_id"`
	Response    string    `json:"response"`
	Confidence  string    `json:"confidence,omitempty"`
	SourceHint  string    `json:"source_hint,omitempty"`
	AISuggested bool      `json:"ai_suggested"`
	Confirmed   bool      `json:"confirmed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AnswerSuggestion is one suggestion produced by the AI prefill engine.
// An empty SuggestedAnswer means the model found no relevant information.
type AnswerSuggestion struct {
	QuestionID      string `json:"question_id"`
	SuggestedAnswer string `json:"suggested_answer"`
	Confidence      string `json:"confidence"`
	SourceHint      string `json:"source_hint"`
}

// Follow-up question origins
const (
	FollowUpTypeFollowUp    = "follow_up"
	FollowUpTypeAIGenerated = "ai_generated"
	FollowUpTypeRelated     = "related"
)

// FollowUpQuestion is a suggested follow-up for a specific response.
// Type records whether it came from the keyword tables, the AI layer,
// or the unanswered-sibling lookup.
type FollowUpQuestion struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	ParentQuestionID string `json:"parent_question_id,omitempty"`
	Question         string `json:"question"`
	Hint             string `json:"hint,omitempty"`
	Reasoning        string `json:"reasoning,omitempty"`
}

// ResponseStats summarizes questionnaire progress for a project
type ResponseStats struct {
	TotalQuestions       int     `json:"total_questions"`
	Answered             int     `json:"answered"`
	Confirmed            int     `json:"confirmed"`
	AISuggested          int     `json:"ai_suggested"`
	CompletionPercentage float64 `json:"completion_percentage"`
}
