package analyze

import (
	"strings"
)

// coverageCategory is one topic the context should cover for a usable
// PRD. Weight is the category's share of the coverage score.
type coverageCategory struct {
	Name     string
	Keywords []string
	Weight   float64
}

// Categories are checked by case-insensitive substring; weights sum to 1.
var coverageCategories = []coverageCategory{
	{Name: "users", Keywords: []string{"user", "customer", "audience", "persona", "stakeholder"}, Weight: 0.20},
	{Name: "problem", Keywords: []string{"problem", "pain", "challenge", "need", "frustration"}, Weight: 0.20},
	{Name: "goals", Keywords: []string{"goal", "objective", "outcome", "vision", "mission"}, Weight: 0.15},
	{Name: "features", Keywords: []string{"feature", "functionality", "capability", "requirement"}, Weight: 0.15},
	{Name: "constraints", Keywords: []string{"constraint", "limitation", "budget", "deadline", "dependency"}, Weight: 0.10},
	{Name: "timeline", Keywords: []string{"timeline", "milestone", "launch", "release", "quarter", "phase"}, Weight: 0.10},
	{Name: "metrics", Keywords: []string{"metric", "kpi", "measure", "conversion", "retention", "revenue"}, Weight: 0.10},
}

// CategoryCoverage reports whether a topic appears in the context
type CategoryCoverage struct {
	Category string   `json:"category"`
	Covered  bool     `json:"covered"`
	Matched  []string `json:"matched,omitempty"`
}

// fullLengthChars is the context length that earns a full length score
const fullLengthChars = 5000

// lengthScore rewards having enough material to work with, saturating
// at fullLengthChars.
func lengthScore(text string) float64 {
	n := len(text)
	if n >= fullLengthChars {
		return 1.0
	}
	return float64(n) / float64(fullLengthChars)
}

// diversityScore measures vocabulary spread as the ratio of distinct
// words to total words, scaled so ordinary prose lands mid-range.
func diversityScore(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	distinct := make(map[string]struct{}, len(words))
	for _, w := range words {
		distinct[strings.Trim(w, ".,!?;:()\"'")] = struct{}{}
	}

	ratio := float64(len(distinct)) / float64(len(words))
	score := ratio * 2
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// coverage checks each category's keywords against the context
func coverage(text string) ([]CategoryCoverage, float64) {
	lower := strings.ToLower(text)

	results := make([]CategoryCoverage, 0, len(coverageCategories))
	var score float64
	for _, cat := range coverageCategories {
		entry := CategoryCoverage{Category: cat.Name}
		for _, keyword := range cat.Keywords {
			if strings.Contains(lower, keyword) {
				entry.Covered = true
				entry.Matched = append(entry.Matched, keyword)
			}
		}
		if entry.Covered {
			score += cat.Weight
		}
		results = append(results, entry)
	}

	return results, score
}
