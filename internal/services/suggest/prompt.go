package suggest

import (
	"fmt"
	"strings"

	"github.com/ternarybob/clarity/internal/models"
)

const answerSystemPrompt = "You are a product analyst helping draft a Product Requirements Document. " +
	"Answer questions strictly from the supplied project context. " +
	"If the context does not contain the information needed for a question, return an empty suggested_answer for it. " +
	"Never invent facts."

// TruncateContext bounds the aggregated context sent to the model. A
// plain prefix cut keeps the operation deterministic for a given set of
// uploaded files.
func TruncateContext(context string, maxChars int) string {
	if maxChars <= 0 || len(context) <= maxChars {
		return context
	}
	return context[:maxChars]
}

// formatFeatures renders selected features as a prompt block, bounded to
// maxFeatures entries with descriptions cut to maxDescLen characters.
func formatFeatures(features []*models.Feature, maxFeatures, maxDescLen int) string {
	if len(features) == 0 {
		return ""
	}
	if maxFeatures > 0 && len(features) > maxFeatures {
		features = features[:maxFeatures]
	}

	var builder strings.Builder
	builder.WriteString("Selected features:\n")
	for _, f := range features {
		desc := f.Description
		if maxDescLen > 0 && len(desc) > maxDescLen {
			desc = desc[:maxDescLen]
		}
		if desc != "" {
			builder.WriteString(fmt.Sprintf("- %s: %s\n", f.Name, desc))
		} else {
			builder.WriteString(fmt.Sprintf("- %s\n", f.Name))
		}
	}
	return builder.String()
}

// buildBatchPrompt assembles the user prompt for one batch of questions
func buildBatchPrompt(contextText, featureBlock string, batch []models.FlatQuestion) string {
	var builder strings.Builder

	builder.WriteString("Project context:\n")
	builder.WriteString(contextText)
	builder.WriteString("\n\n")

	if featureBlock != "" {
		builder.WriteString(featureBlock)
		builder.WriteString("\n")
	}

	builder.WriteString("Answer the following PRD questions using only the context above:\n")
	for _, q := range batch {
		builder.WriteString(fmt.Sprintf("%s [%s / %s]: %s\n", q.ID, q.Section, q.Subsection, q.Text))
	}

	builder.WriteString("\nReturn JSON with this EXACT format (no extra text): ")
	builder.WriteString(`{"responses": [{"question_id": "X.X.X", "suggested_answer": "...", "confidence": "high|medium|low", "source_hint": "source"}]}`)

	return builder.String()
}
