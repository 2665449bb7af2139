package suggest

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
	"github.com/ternarybob/clarity/internal/services/llm"
	"golang.org/x/time/rate"
)

// Engine prefills questionnaire answers from uploaded project context.
// Questions go to the model in fixed-size sequential batches; a failed
// batch degrades that batch only and the run continues.
type Engine struct {
	llm     interfaces.LLMService
	logger  arbor.ILogger
	config  common.SuggestConfig
	limiter *rate.Limiter
	retry   *llm.RetryConfig
}

// Result is the outcome of one prefill run
type Result struct {
	Suggestions     []models.AnswerSuggestion `json:"suggestions"`
	TotalProcessed  int                       `json:"total_processed"`
	TotalBatches    int                       `json:"total_batches"`
	DegradedBatches int                       `json:"degraded_batches"`
}

// NewEngine creates a suggestion engine
func NewEngine(llmService interfaces.LLMService, config common.SuggestConfig, logger arbor.ILogger) *Engine {
	interval, err := time.ParseDuration(config.BatchInterval)
	if err != nil || interval <= 0 {
		interval = time.Second
	}

	retryConfig := llm.NewDefaultRetryConfig()
	if config.MaxRetries >= 0 {
		retryConfig.MaxRetries = config.MaxRetries
	}

	return &Engine{
		llm:     llmService,
		logger:  logger,
		config:  config,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		retry:   retryConfig,
	}
}

// batchQuestions splits questions into sequential batches of at most
// batchSize, preserving catalog order. A non-positive batchSize yields a
// single batch.
func batchQuestions(questions []models.FlatQuestion, batchSize int) [][]models.FlatQuestion {
	if len(questions) == 0 {
		return nil
	}
	if batchSize <= 0 {
		return [][]models.FlatQuestion{questions}
	}

	batches := make([][]models.FlatQuestion, 0, (len(questions)+batchSize-1)/batchSize)
	for start := 0; start < len(questions); start += batchSize {
		end := start + batchSize
		if end > len(questions) {
			end = len(questions)
		}
		batches = append(batches, questions[start:end])
	}
	return batches
}

// Suggest runs the prefill pipeline: validate inputs, truncate context,
// batch the questions, and collect whatever suggestions the model
// produces. Batch failures are isolated; only a run where every batch
// fails is reported as the AI service being unavailable.
func (e *Engine) Suggest(ctx context.Context, contextText string, features []*models.Feature, questions []models.FlatQuestion) (*Result, error) {
	if e.llm == nil {
		return nil, common.UnavailableError("AI service is not configured")
	}
	if len(questions) == 0 {
		return nil, common.ValidationError("no questions to process")
	}
	if contextText == "" {
		return nil, common.ValidationError("no context documents uploaded; upload at least one document before requesting suggestions")
	}

	truncated := TruncateContext(contextText, e.config.MaxContextChars)
	if len(truncated) < len(contextText) {
		e.logger.Debug().
			Int("original_chars", len(contextText)).
			Int("truncated_chars", len(truncated)).
			Msg("Context truncated for prompt budget")
	}

	featureBlock := formatFeatures(features, e.config.MaxFeatures, e.config.MaxFeatureDescLen)
	batches := batchQuestions(questions, e.config.BatchSize)

	result := &Result{
		Suggestions:    make([]models.AnswerSuggestion, 0, len(questions)),
		TotalProcessed: len(questions),
		TotalBatches:   len(batches),
	}

	for i, batch := range batches {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		suggestions, err := e.runBatch(ctx, truncated, featureBlock, batch)
		if err != nil {
			result.DegradedBatches++
			e.logger.Warn().Err(err).
				Int("batch", i+1).
				Int("batches", len(batches)).
				Int("questions", len(batch)).
				Msg("Suggestion batch degraded")
			continue
		}

		result.Suggestions = append(result.Suggestions, suggestions...)
	}

	if result.DegradedBatches == result.TotalBatches || len(result.Suggestions) == 0 {
		return nil, common.NoOutputError("AI produced no usable output across %d batches", result.TotalBatches)
	}

	e.logger.Info().
		Int("questions", len(questions)).
		Int("batches", len(batches)).
		Int("degraded", result.DegradedBatches).
		Int("suggestions", len(result.Suggestions)).
		Msg("Answer prefill complete")

	return result, nil
}

// runBatch sends one batch of questions through the model with bounded
// retries on rate limiting, then parses the reply.
func (e *Engine) runBatch(ctx context.Context, contextText, featureBlock string, batch []models.FlatQuestion) ([]models.AnswerSuggestion, error) {
	prompt := buildBatchPrompt(contextText, featureBlock, batch)

	var reply string
	err := e.retry.Do(ctx, func() error {
		var chatErr error
		reply, chatErr = e.llm.Chat(ctx, []interfaces.Message{
			{Role: "system", Content: answerSystemPrompt},
			{Role: "user", Content: prompt},
		})
		return chatErr
	})
	if err != nil {
		return nil, err
	}

	return parseSuggestions(reply, batch)
}
