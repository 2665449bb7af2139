package followup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
)

// SkipSuggestion recommends skipping questions made irrelevant by an
// earlier answer.
type SkipSuggestion struct {
	SkipQuestionIDs []string `json:"skip_question_ids"`
	Reason          string   `json:"reason"`
}

// Engine evaluates follow-up and skip rules against saved responses.
// Keyword rules are table-driven and deterministic; AI follow-ups are an
// optional layer gated by response length.
type Engine struct {
	catalog   interfaces.CatalogService
	responses interfaces.ResponseStorage
	llm       interfaces.LLMService
	logger    arbor.ILogger
	config    common.FollowupConfig
	rules     *RuleSet
}

// NewEngine creates a rule engine. If config names a rules file it
// replaces the built-in tables; a load failure falls back to the
// defaults with a warning.
func NewEngine(catalog interfaces.CatalogService, responses interfaces.ResponseStorage, llmService interfaces.LLMService, config common.FollowupConfig, logger arbor.ILogger) *Engine {
	rules := DefaultRuleSet()
	if config.RulesPath != "" {
		loaded, err := LoadRuleSet(config.RulesPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", config.RulesPath).Msg("Failed to load follow-up rules, using built-in tables")
		} else {
			rules = loaded
			logger.Info().
				Str("path", config.RulesPath).
				Int("triggers", len(loaded.Triggers)).
				Int("skips", len(loaded.Skips)).
				Msg("Loaded follow-up rules")
		}
	}

	return &Engine{
		catalog:   catalog,
		responses: responses,
		llm:       llmService,
		logger:    logger,
		config:    config,
		rules:     rules,
	}
}

// FollowUps returns keyword-triggered follow-up questions for a
// response. Matching is case-insensitive substring; a topic fires at
// most once per response, contributing all of its templates, rules are
// evaluated in table order, and the result is capped.
func (e *Engine) FollowUps(questionID, response string) []models.FollowUpQuestion {
	lower := strings.ToLower(response)
	followups := make([]models.FollowUpQuestion, 0, e.config.MaxFollowups)

	for _, rule := range e.rules.Triggers {
		var matched string
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				matched = keyword
				break
			}
		}
		if matched == "" {
			continue
		}

		for i, template := range rule.Followups {
			if e.config.MaxFollowups > 0 && len(followups) >= e.config.MaxFollowups {
				return followups
			}
			followups = append(followups, models.FollowUpQuestion{
				ID:               fmt.Sprintf("%s_%d", rule.Topic, i+1),
				Type:             models.FollowUpTypeFollowUp,
				ParentQuestionID: questionID,
				Question:         template.Question,
				Hint:             template.Hint,
				Reasoning:        fmt.Sprintf("Response mentions %q", matched),
			})
		}
	}

	return followups
}

// SkipSuggestions checks whether a response makes other questions
// irrelevant. The first matching phrase wins; nil means no rule fired.
func (e *Engine) SkipSuggestions(questionID, response string) *SkipSuggestion {
	lower := strings.ToLower(response)

	for _, rule := range e.rules.Skips {
		if rule.QuestionID != questionID {
			continue
		}
		for _, phrase := range rule.Phrases {
			if strings.Contains(lower, strings.ToLower(phrase)) {
				return &SkipSuggestion{
					SkipQuestionIDs: rule.Skips,
					Reason:          rule.Reason,
				}
			}
		}
	}

	return nil
}

// RelatedUnanswered returns sibling questions from the same subsection
// that have no saved answer yet, capped by configuration.
func (e *Engine) RelatedUnanswered(projectID, questionID string) ([]models.Question, error) {
	siblings := e.catalog.Siblings(questionID)
	if len(siblings) == 0 {
		return nil, nil
	}

	saved, err := e.responses.ListResponses(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	answered := make(map[string]bool, len(saved))
	for _, r := range saved {
		if strings.TrimSpace(r.Response) != "" {
			answered[r.QuestionID] = true
		}
	}

	related := make([]models.Question, 0, e.config.MaxRelated)
	for _, sibling := range siblings {
		if answered[sibling.ID] {
			continue
		}
		related = append(related, sibling)
		if e.config.MaxRelated > 0 && len(related) >= e.config.MaxRelated {
			break
		}
	}

	return related, nil
}

const aiFollowupPrompt = "You are a product analyst reviewing a PRD questionnaire answer. " +
	"Suggest up to %d follow-up questions that would sharpen the answer below. " +
	"Return a JSON array with this EXACT format (no extra text): " +
	`[{"question": "...", "hint": "...", "reasoning": "..."}]` + "\n\n" +
	"Question: %s\nAnswer: %s"

// AIFollowUps asks the model for follow-up questions on a substantial
// response. Short responses and disabled configuration return nothing;
// a malformed model reply is logged and returns nothing rather than
// failing the caller.
func (e *Engine) AIFollowUps(ctx context.Context, question models.FlatQuestion, response string) []models.FollowUpQuestion {
	if !e.config.AIFollowups || e.llm == nil {
		return nil
	}
	if len(response) < e.config.AIMinChars {
		return nil
	}

	prompt := fmt.Sprintf(aiFollowupPrompt, e.config.MaxAIResults, question.Text, response)
	reply, err := e.llm.Chat(ctx, []interfaces.Message{{Role: "user", Content: prompt}})
	if err != nil {
		e.logger.Warn().Err(err).Str("question_id", question.ID).Msg("AI follow-up generation failed")
		return nil
	}

	followups := parseAIFollowUps(reply)
	if e.config.MaxAIResults > 0 && len(followups) > e.config.MaxAIResults {
		followups = followups[:e.config.MaxAIResults]
	}

	for i := range followups {
		followups[i].ID = fmt.Sprintf("ai_%d", i+1)
		followups[i].Type = models.FollowUpTypeAIGenerated
		followups[i].ParentQuestionID = question.ID
	}

	return followups
}

// parseAIFollowUps extracts a JSON array from a model reply. Anything
// unparseable yields an empty result.
func parseAIFollowUps(raw string) []models.FollowUpQuestion {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil
	}

	var entries []models.FollowUpQuestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &entries); err != nil {
		return nil
	}

	followups := entries[:0]
	for _, entry := range entries {
		if strings.TrimSpace(entry.Question) != "" {
			followups = append(followups, entry)
		}
	}
	return followups
}
