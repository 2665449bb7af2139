package analyze

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
)

// Analysis is the full context quality report for a project
type Analysis struct {
	QualityScore    float64            `json:"quality_score"`
	LengthScore     float64            `json:"length_score"`
	DiversityScore  float64            `json:"diversity_score"`
	CoverageScore   float64            `json:"coverage_score"`
	Coverage        []CategoryCoverage `json:"coverage"`
	Entities        Entities           `json:"entities"`
	Conflicts       []Conflict         `json:"conflicts,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	AIInsights      *AIInsights        `json:"ai_insights,omitempty"`
}

// AIInsights is the optional model-generated layer of the analysis
type AIInsights struct {
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths,omitempty"`
	Gaps      []string `json:"gaps,omitempty"`
	Risks     []string `json:"risks,omitempty"`
}

// Service scores uploaded context for PRD readiness. The deterministic
// layer always runs; the AI layer is requested explicitly and degrades
// to nothing on failure.
type Service struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewService creates a context analysis service
func NewService(llmService interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		llm:    llmService,
		logger: logger,
	}
}

// Analyze produces the quality report for aggregated context text
func (s *Service) Analyze(ctx context.Context, contextText string, deep bool) (*Analysis, error) {
	if strings.TrimSpace(contextText) == "" {
		return nil, common.ValidationError("no context documents uploaded")
	}

	coverageResults, coverageScore := coverage(contextText)
	length := lengthScore(contextText)
	diversity := diversityScore(contextText)

	analysis := &Analysis{
		// Coverage dominates: a short but on-topic brief beats a long ramble
		QualityScore:   0.5*coverageScore + 0.3*length + 0.2*diversity,
		LengthScore:    length,
		DiversityScore: diversity,
		CoverageScore:  coverageScore,
		Coverage:       coverageResults,
		Entities:       extractEntities(contextText),
		Conflicts:      detectConflicts(contextText),
	}
	analysis.Recommendations = recommendations(analysis)

	if deep {
		analysis.AIInsights = s.deepAnalysis(ctx, contextText)
	}

	return analysis, nil
}

// recommendations turns score gaps into user-facing advice
func recommendations(a *Analysis) []string {
	var recs []string
	if a.LengthScore < 0.3 {
		recs = append(recs, "Upload more context; the current material is too thin for reliable answer suggestions.")
	}
	for _, c := range a.Coverage {
		if !c.Covered {
			recs = append(recs, "No mention of "+c.Category+" found; consider adding a document that covers it.")
		}
	}
	for _, conflict := range a.Conflicts {
		recs = append(recs, conflict.Detail)
	}
	return recs
}

const deepAnalysisPrompt = "You are a product analyst reviewing raw context gathered for a PRD. " +
	"Summarize its quality. Return JSON with this EXACT format (no extra text): " +
	`{"summary": "...", "strengths": ["..."], "gaps": ["..."], "risks": ["..."]}` +
	"\n\nContext:\n"

// deepAnalysisContextCap bounds the context sent for the AI layer
const deepAnalysisContextCap = 15000

// deepAnalysis asks the model for a qualitative read. Any failure is
// logged and returns nil; the deterministic report stands on its own.
func (s *Service) deepAnalysis(ctx context.Context, contextText string) *AIInsights {
	if s.llm == nil {
		return nil
	}

	if len(contextText) > deepAnalysisContextCap {
		contextText = contextText[:deepAnalysisContextCap]
	}

	reply, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: deepAnalysisPrompt + contextText},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("AI context analysis failed")
		return nil
	}

	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end <= start {
		s.logger.Warn().Msg("AI context analysis returned no JSON")
		return nil
	}

	var insights AIInsights
	if err := json.Unmarshal([]byte(reply[start:end+1]), &insights); err != nil {
		s.logger.Warn().Err(err).Msg("AI context analysis returned malformed JSON")
		return nil
	}

	return &insights
}
