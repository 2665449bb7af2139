package prd

import (
	"fmt"
	"strings"

	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
)

const generateSystemPrompt = "You are a senior product manager writing a Product Requirements Document. " +
	"Write clear, specific markdown. Base every statement on the confirmed answers and features provided; " +
	"mark genuinely unknown details as 'TBD' rather than inventing them."

// prdSections is the canonical document outline the model is asked to follow
var prdSections = []string{
	"Overview",
	"Goals & Objectives",
	"Target Users",
	"Features",
	"Functional Requirements",
	"Non-Functional Requirements",
	"Success Metrics",
	"Timeline & Milestones",
	"Risks & Open Questions",
}

// DefaultSections returns a copy of the canonical PRD outline
func DefaultSections() []string {
	return append([]string(nil), prdSections...)
}

// answeredSection groups confirmed answers under their catalog section
type answeredSection struct {
	Title   string
	Answers []answeredQuestion
}

type answeredQuestion struct {
	Question string
	Answer   string
}

// organizeResponses groups confirmed, non-empty responses by catalog
// section in tree order. Responses to unknown question IDs are ignored.
func organizeResponses(catalog interfaces.CatalogService, responses []*models.QuestionResponse) []answeredSection {
	byQuestion := make(map[string]*models.QuestionResponse, len(responses))
	for _, r := range responses {
		if r.Confirmed && strings.TrimSpace(r.Response) != "" {
			byQuestion[r.QuestionID] = r
		}
	}

	var sections []answeredSection
	var current *answeredSection
	for _, q := range catalog.Questions() {
		r, ok := byQuestion[q.ID]
		if !ok {
			continue
		}
		if current == nil || current.Title != q.Section {
			sections = append(sections, answeredSection{Title: q.Section})
			current = &sections[len(sections)-1]
		}
		current.Answers = append(current.Answers, answeredQuestion{
			Question: q.Text,
			Answer:   r.Response,
		})
	}

	return sections
}

// buildGeneratePrompt assembles the single-shot PRD generation prompt
func buildGeneratePrompt(projectName string, sections []answeredSection, features []*models.Feature) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a complete PRD in markdown for the project %q.\n\n", projectName)

	b.WriteString("Confirmed questionnaire answers, grouped by topic:\n\n")
	for _, section := range sections {
		fmt.Fprintf(&b, "## %s\n", section.Title)
		for _, a := range section.Answers {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", a.Question, a.Answer)
		}
	}

	if len(features) > 0 {
		b.WriteString("Selected features:\n")
		for _, f := range features {
			if f.Description != "" {
				fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
			} else {
				fmt.Fprintf(&b, "- %s\n", f.Name)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Structure the document with a top-level `# %s — Product Requirements Document` heading "+
		"followed by these `##` sections in order: %s.\n", projectName, strings.Join(prdSections, ", "))
	b.WriteString("Return only the markdown document, no commentary before or after it.")

	return b.String()
}

// buildRegeneratePrompt asks for a rewrite of one section of an existing PRD
func buildRegeneratePrompt(document, sectionTitle, instructions string) string {
	var b strings.Builder

	b.WriteString("Below is an existing PRD in markdown.\n\n")
	b.WriteString(document)
	fmt.Fprintf(&b, "\n\nRewrite ONLY the `## %s` section.", sectionTitle)
	if instructions != "" {
		fmt.Fprintf(&b, " Additional instructions: %s.", instructions)
	}
	fmt.Fprintf(&b, " Return only the replacement section, starting with the `## %s` heading, no commentary.", sectionTitle)

	return b.String()
}

// stripFence removes a wrapping markdown code fence if the model added one
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
	}
	return s
}
