package followup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
	"github.com/ternarybob/clarity/internal/services/catalog"
)

type fakeResponseStore struct {
	responses []*models.QuestionResponse
}

func (f *fakeResponseStore) UpsertResponse(r *models.QuestionResponse) (*models.QuestionResponse, error) {
	f.responses = append(f.responses, r)
	return r, nil
}

func (f *fakeResponseStore) GetResponse(projectID, questionID string) (*models.QuestionResponse, error) {
	for _, r := range f.responses {
		if r.ProjectID == projectID && r.QuestionID == questionID {
			return r, nil
		}
	}
	return nil, common.NotFoundError("response not found")
}

func (f *fakeResponseStore) ListResponses(projectID string) ([]*models.QuestionResponse, error) {
	return f.responses, nil
}

func (f *fakeResponseStore) DeleteProjectResponses(projectID string) error { return nil }

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	f.calls++
	return f.reply, f.err
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) GetMode() interfaces.LLMMode           { return interfaces.LLMModeCloud }
func (f *fakeLLM) Close() error                          { return nil }

func testFollowupConfig() common.FollowupConfig {
	return common.FollowupConfig{
		MaxFollowups: 3,
		MaxRelated:   3,
		AIMinChars:   50,
		AIFollowups:  true,
		MaxAIResults: 3,
	}
}

func testEngineCatalog() interfaces.CatalogService {
	return catalog.NewServiceFromCatalog(&models.Catalog{
		Sections: []models.Section{
			{
				ID:    "2",
				Title: "Requirements",
				Subsections: []models.Subsection{
					{
						ID:    "2.1",
						Title: "Functional",
						Questions: []models.Question{
							{ID: "2.1.1", Text: "What are the core features?"},
							{ID: "2.1.2", Text: "What integrations are required?"},
							{ID: "2.1.3", Text: "Which integration failures must degrade gracefully?"},
							{ID: "2.1.4", Text: "What data flows to external systems?"},
							{ID: "2.1.5", Text: "What reporting is needed?"},
						},
					},
				},
			},
		},
	}, common.GetLogger())
}

func newTestEngine(store *fakeResponseStore, llm interfaces.LLMService) *Engine {
	return NewEngine(testEngineCatalog(), store, llm, testFollowupConfig(), common.GetLogger())
}

func TestFollowUps_KeywordMatch(t *testing.T) {
	engine := newTestEngine(&fakeResponseStore{}, nil)

	followups := engine.FollowUps("2.1.1", "Users check out through a Stripe BILLING flow.")
	require.Len(t, followups, 1)
	assert.Equal(t, "payments_1", followups[0].ID)
	assert.Equal(t, models.FollowUpTypeFollowUp, followups[0].Type)
	assert.Equal(t, "2.1.1", followups[0].ParentQuestionID)
	assert.Contains(t, followups[0].Question, "payment provider")
}

func TestFollowUps_OnePerTopicFirstKeyword(t *testing.T) {
	engine := newTestEngine(&fakeResponseStore{}, nil)

	// Response hits two payments keywords but the topic fires once
	followups := engine.FollowUps("2.1.1", "Billing and subscription management are both in scope.")
	require.Len(t, followups, 1)
	assert.Contains(t, followups[0].Reasoning, "billing")
}

func TestFollowUps_TopicContributesAllTemplates(t *testing.T) {
	engine := newTestEngine(&fakeResponseStore{}, nil)

	followups := engine.FollowUps("2.1.2", "We will integrate with a third-party payment API with rate limits.")

	var integrations []models.FollowUpQuestion
	for _, f := range followups {
		if f.ID == "integrations_1" || f.ID == "integrations_2" {
			integrations = append(integrations, f)
		}
	}
	require.Len(t, integrations, 2)
	assert.Contains(t, integrations[0].Question, "rate-limit")
	assert.Contains(t, integrations[1].Question, "down or throttling")
}

func TestFollowUps_CappedInTableOrder(t *testing.T) {
	engine := newTestEngine(&fakeResponseStore{}, nil)

	followups := engine.FollowUps("2.1.1", "Payment via API with OAuth login on mobile under GDPR at scale.")
	require.Len(t, followups, 3)
	assert.Equal(t, "payments_1", followups[0].ID)
	assert.Equal(t, "integrations_1", followups[1].ID)
	assert.Equal(t, "integrations_2", followups[2].ID)
}

func TestFollowUps_NoMatch(t *testing.T) {
	engine := newTestEngine(&fakeResponseStore{}, nil)
	assert.Empty(t, engine.FollowUps("2.1.1", "The team meets every Tuesday."))
}

func TestSkipSuggestions(t *testing.T) {
	engine := newTestEngine(&fakeResponseStore{}, nil)

	skip := engine.SkipSuggestions("2.1.2", "This is a STANDALONE system with no external dependencies.")
	require.NotNil(t, skip)
	assert.Equal(t, []string{"2.1.3", "2.1.4"}, skip.SkipQuestionIDs)
	assert.Equal(t, "No external integrations planned", skip.Reason)

	// Phrase matches only against the question it is registered for
	assert.Nil(t, engine.SkipSuggestions("2.1.1", "standalone"))
	assert.Nil(t, engine.SkipSuggestions("2.1.2", "We integrate with three systems."))
}

func TestRelatedUnanswered(t *testing.T) {
	store := &fakeResponseStore{responses: []*models.QuestionResponse{
		{ProjectID: "proj_1", QuestionID: "2.1.1", Response: "Dashboards and exports."},
		{ProjectID: "proj_1", QuestionID: "2.1.3", Response: "   "},
	}}
	engine := newTestEngine(store, nil)

	related, err := engine.RelatedUnanswered("proj_1", "2.1.2")
	require.NoError(t, err)

	// 2.1.1 is answered; 2.1.3 has only whitespace so it still counts as
	// unanswered. Cap of 3 drops 2.1.5.
	require.Len(t, related, 3)
	assert.Equal(t, "2.1.3", related[0].ID)
	assert.Equal(t, "2.1.4", related[1].ID)
	assert.Equal(t, "2.1.5", related[2].ID)
}

func TestRelatedUnanswered_UnknownQuestion(t *testing.T) {
	engine := newTestEngine(&fakeResponseStore{}, nil)

	related, err := engine.RelatedUnanswered("proj_1", "9.9.9")
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestAIFollowUps_ShortResponseSkipped(t *testing.T) {
	llm := &fakeLLM{reply: `[{"question": "Should not be called"}]`}
	engine := newTestEngine(&fakeResponseStore{}, llm)

	got := engine.AIFollowUps(context.Background(), models.FlatQuestion{ID: "2.1.1"}, "too short")
	assert.Empty(t, got)
	assert.Equal(t, 0, llm.calls)
}

func TestAIFollowUps_Disabled(t *testing.T) {
	llm := &fakeLLM{reply: `[{"question": "Should not be called"}]`}
	config := testFollowupConfig()
	config.AIFollowups = false
	engine := NewEngine(testEngineCatalog(), &fakeResponseStore{}, llm, config, common.GetLogger())

	long := "This response is certainly longer than fifty characters in total length."
	assert.Empty(t, engine.AIFollowUps(context.Background(), models.FlatQuestion{ID: "2.1.1"}, long))
	assert.Equal(t, 0, llm.calls)
}

func TestAIFollowUps_ParsesAndCaps(t *testing.T) {
	llm := &fakeLLM{reply: `Here you go:
[
  {"question": "What is the SLA?", "hint": "Think uptime", "reasoning": "Answer mentions availability"},
  {"question": "Who owns incident response?"},
  {"question": "What is the rollback plan?"},
  {"question": "One too many"}
]`}
	engine := newTestEngine(&fakeResponseStore{}, llm)

	long := "Our availability target matters a lot because customers depend on the service around the clock."
	got := engine.AIFollowUps(context.Background(), models.FlatQuestion{ID: "2.1.1"}, long)
	require.Len(t, got, 3)
	assert.Equal(t, "ai_1", got[0].ID)
	assert.Equal(t, models.FollowUpTypeAIGenerated, got[0].Type)
	assert.Equal(t, "2.1.1", got[0].ParentQuestionID)
	assert.Equal(t, "What is the SLA?", got[0].Question)
}

func TestAIFollowUps_MalformedReplyYieldsEmpty(t *testing.T) {
	llm := &fakeLLM{reply: "I'd rather chat about something else."}
	engine := newTestEngine(&fakeResponseStore{}, llm)

	long := "This response is certainly longer than fifty characters in total length."
	assert.Empty(t, engine.AIFollowUps(context.Background(), models.FlatQuestion{ID: "2.1.1"}, long))
}

func TestLoadRuleSet_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	data := `
[[triggers]]
topic = "custom"
keywords = ["widget"]

[[triggers.followups]]
question = "How many widgets?"

[[skips]]
question_id = "1.1.1"
phrases = ["none"]
skips = ["1.1.2"]
reason = "No widgets"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	config := testFollowupConfig()
	config.RulesPath = path
	engine := NewEngine(testEngineCatalog(), &fakeResponseStore{}, nil, config, common.GetLogger())

	followups := engine.FollowUps("1.1.1", "We ship one widget per box.")
	require.Len(t, followups, 1)
	assert.Equal(t, "custom_1", followups[0].ID)

	// Built-in tables are replaced, not merged
	assert.Empty(t, engine.FollowUps("1.1.1", "Billing is handled externally."))
}
