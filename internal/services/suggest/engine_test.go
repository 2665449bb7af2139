package suggest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
)

// fakeLLM scripts Chat replies per call number
type fakeLLM struct {
	calls   int
	handler func(call int, messages []interfaces.Message) (string, error)
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	f.calls++
	return f.handler(f.calls, messages)
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) GetMode() interfaces.LLMMode           { return interfaces.LLMModeCloud }
func (f *fakeLLM) Close() error                          { return nil }

func testSuggestConfig(batchSize int) common.SuggestConfig {
	return common.SuggestConfig{
		BatchSize:         batchSize,
		MaxContextChars:   30000,
		MaxFeatures:       10,
		MaxFeatureDescLen: 200,
		MaxRetries:        0,
		BatchInterval:     "1ms",
		MaxTokensPerBatch: 4096,
	}
}

func makeQuestions(n int) []models.FlatQuestion {
	questions := make([]models.FlatQuestion, n)
	for i := range questions {
		questions[i] = models.FlatQuestion{
			ID:         fmt.Sprintf("1.1.%d", i+1),
			Text:       fmt.Sprintf("Question %d?", i+1),
			Section:    "Overview",
			Subsection: "Goals",
		}
	}
	return questions
}

// batchReply builds a well-formed envelope answering every question in
// the batch visible in the prompt.
func batchReply(batch []models.FlatQuestion) string {
	reply := `{"responses": [`
	for i, q := range batch {
		if i > 0 {
			reply += ","
		}
		reply += fmt.Sprintf(`{"question_id": %q, "suggested_answer": "answer for %s", "confidence": "high", "source_hint": "notes.txt"}`, q.ID, q.ID)
	}
	return reply + `]}`
}

func TestBatchQuestions(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		batchSize int
		batches   int
		lastLen   int
	}{
		{"exact multiple", 30, 15, 2, 15},
		{"short tail", 47, 15, 4, 2},
		{"fewer than one batch", 7, 15, 1, 7},
		{"batch size one", 3, 1, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions := makeQuestions(tt.total)
			batches := batchQuestions(questions, tt.batchSize)

			require.Len(t, batches, tt.batches)
			assert.Len(t, batches[len(batches)-1], tt.lastLen)

			// Flattening the batches reproduces the input order
			var flat []models.FlatQuestion
			for _, b := range batches {
				flat = append(flat, b...)
			}
			assert.Equal(t, questions, flat)
		})
	}

	assert.Nil(t, batchQuestions(nil, 15))
	assert.Len(t, batchQuestions(makeQuestions(5), 0), 1)
}

func TestTruncateContext(t *testing.T) {
	assert.Equal(t, "abc", TruncateContext("abc", 10))
	assert.Equal(t, "abcde", TruncateContext("abcdefgh", 5))
	assert.Equal(t, "abcdefgh", TruncateContext("abcdefgh", 0))
}

func TestEngine_ValidationErrors(t *testing.T) {
	engine := NewEngine(&fakeLLM{}, testSuggestConfig(15), common.GetLogger())

	_, err := engine.Suggest(context.Background(), "", nil, makeQuestions(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = engine.Suggest(context.Background(), "some context", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestEngine_AllQuestionsAnswered(t *testing.T) {
	questions := makeQuestions(4)
	fake := &fakeLLM{handler: func(call int, messages []interfaces.Message) (string, error) {
		start := (call - 1) * 2
		return batchReply(questions[start : start+2]), nil
	}}

	engine := NewEngine(fake, testSuggestConfig(2), common.GetLogger())
	result, err := engine.Suggest(context.Background(), "The product targets small teams.", nil, questions)
	require.NoError(t, err)

	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 2, result.TotalBatches)
	assert.Equal(t, 0, result.DegradedBatches)
	require.Len(t, result.Suggestions, 4)
	assert.Equal(t, "1.1.1", result.Suggestions[0].QuestionID)
	assert.Equal(t, "notes.txt", result.Suggestions[0].SourceHint)
}

func TestEngine_DegradedBatchIsolation(t *testing.T) {
	questions := makeQuestions(8)
	fake := &fakeLLM{handler: func(call int, messages []interfaces.Message) (string, error) {
		if call == 2 || call == 3 {
			return "", errors.New("connection reset")
		}
		start := (call - 1) * 2
		return batchReply(questions[start : start+2]), nil
	}}

	engine := NewEngine(fake, testSuggestConfig(2), common.GetLogger())
	result, err := engine.Suggest(context.Background(), "context", nil, questions)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalBatches)
	assert.Equal(t, 2, result.DegradedBatches)
	require.Len(t, result.Suggestions, 4)
	assert.Equal(t, "1.1.1", result.Suggestions[0].QuestionID)
	assert.Equal(t, "1.1.8", result.Suggestions[3].QuestionID)
}

func TestEngine_FirstCallFailsSecondSucceeds(t *testing.T) {
	questions := makeQuestions(2)
	fake := &fakeLLM{handler: func(call int, messages []interfaces.Message) (string, error) {
		if call == 1 {
			return "", errors.New("upstream timeout")
		}
		return batchReply(questions[1:2]), nil
	}}

	engine := NewEngine(fake, testSuggestConfig(1), common.GetLogger())
	result, err := engine.Suggest(context.Background(), "context", nil, questions)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalBatches)
	assert.Equal(t, 1, result.DegradedBatches)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "1.1.2", result.Suggestions[0].QuestionID)
}

func TestEngine_AllBatchesFailIsNoOutput(t *testing.T) {
	fake := &fakeLLM{handler: func(call int, messages []interfaces.Message) (string, error) {
		return "", errors.New("dial tcp: connection refused")
	}}

	engine := NewEngine(fake, testSuggestConfig(2), common.GetLogger())
	_, err := engine.Suggest(context.Background(), "context", nil, makeQuestions(4))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoOutput)
}

func TestEngine_AllBatchesEmptyIsNoOutput(t *testing.T) {
	fake := &fakeLLM{handler: func(call int, messages []interfaces.Message) (string, error) {
		return `{"responses": []}`, nil
	}}

	engine := NewEngine(fake, testSuggestConfig(2), common.GetLogger())
	_, err := engine.Suggest(context.Background(), "context", nil, makeQuestions(4))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoOutput)
}

func TestEngine_NoServiceIsUnavailable(t *testing.T) {
	engine := NewEngine(nil, testSuggestConfig(2), common.GetLogger())
	_, err := engine.Suggest(context.Background(), "context", nil, makeQuestions(4))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestEngine_MalformedReplyDegradesBatch(t *testing.T) {
	questions := makeQuestions(4)
	fake := &fakeLLM{handler: func(call int, messages []interfaces.Message) (string, error) {
		if call == 1 {
			return "Sorry, I cannot produce structured output today.", nil
		}
		return batchReply(questions[2:4]), nil
	}}

	engine := NewEngine(fake, testSuggestConfig(2), common.GetLogger())
	result, err := engine.Suggest(context.Background(), "context", nil, questions)
	require.NoError(t, err)

	assert.Equal(t, 1, result.DegradedBatches)
	require.Len(t, result.Suggestions, 2)
}

func TestEngine_ContextMentionsPaymentAPI(t *testing.T) {
	questions := []models.FlatQuestion{
		{ID: "2.1.2", Text: "What integrations are required?", Section: "Requirements", Subsection: "Functional"},
	}

	var seenPrompt string
	fake := &fakeLLM{handler: func(call int, messages []interfaces.Message) (string, error) {
		seenPrompt = messages[len(messages)-1].Content
		return `{"responses": [{"question_id": "2.1.2", "suggested_answer": "Integrate with the Stripe payment API for billing.", "confidence": "high", "source_hint": "architecture.md"}]}`, nil
	}}

	engine := NewEngine(fake, testSuggestConfig(15), common.GetLogger())
	result, err := engine.Suggest(context.Background(), "The billing flow calls the Stripe payment API.", nil, questions)
	require.NoError(t, err)

	assert.Contains(t, seenPrompt, "Stripe payment API")
	require.Len(t, result.Suggestions, 1)
	assert.Contains(t, result.Suggestions[0].SuggestedAnswer, "payment API")
	assert.Equal(t, models.ConfidenceHigh, result.Suggestions[0].Confidence)
}

func TestEngine_FeaturesIncludedInPrompt(t *testing.T) {
	var seenPrompt string
	fake := &fakeLLM{handler: func(call int, messages []interfaces.Message) (string, error) {
		seenPrompt = messages[len(messages)-1].Content
		return `{"responses": [{"question_id": "1.1.1", "suggested_answer": "Answer.", "confidence": "low", "source_hint": ""}]}`, nil
	}}

	features := []*models.Feature{
		{Name: "Team dashboards", Description: "Shared progress views for squads"},
	}

	engine := NewEngine(fake, testSuggestConfig(15), common.GetLogger())
	_, err := engine.Suggest(context.Background(), "context", features, makeQuestions(1))
	require.NoError(t, err)

	assert.Contains(t, seenPrompt, "Team dashboards")
	assert.Contains(t, seenPrompt, "Shared progress views")
}
