package analyze

import (
	"regexp"
	"strings"
)

// Entities are concrete facts pulled from the context with regexes.
// They surface in the UI so users can see what the analyzer noticed.
type Entities struct {
	Dates       []string `json:"dates,omitempty"`
	Percentages []string `json:"percentages,omitempty"`
	Monetary    []string `json:"monetary,omitempty"`
	Technical   []string `json:"technical,omitempty"`
}

var (
	dateRegex = regexp.MustCompile(`(?i)\b(?:\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:,?\s+\d{4})?|q[1-4]\s+\d{4})\b`)

	percentRegex = regexp.MustCompile(`\b\d+(?:\.\d+)?%`)

	moneyRegex = regexp.MustCompile(`(?i)(?:[$€£]\s?\d[\d,]*(?:\.\d+)?[kmb]?|\b\d[\d,]*(?:\.\d+)?\s?(?:usd|eur|gbp|dollars?)\b)`)

	techRegex = regexp.MustCompile(`(?i)\b(?:api|rest|graphql|webhook|oauth|sso|saml|sql|nosql|postgres|mysql|redis|kafka|kubernetes|docker|aws|gcp|azure|react|ios|android|sdk|json|grpc|websocket|cdn|saas|etl|ml|llm)\b`)
)

// maxEntitiesPerKind bounds the lists so a huge upload can't bloat the
// analysis payload.
const maxEntitiesPerKind = 20

// extractEntities scans the context for dates, percentages, monetary
// amounts, and technical terms. Results are deduplicated case-insensitively
// in order of first appearance.
func extractEntities(text string) Entities {
	return Entities{
		Dates:       dedupe(dateRegex.FindAllString(text, -1)),
		Percentages: dedupe(percentRegex.FindAllString(text, -1)),
		Monetary:    dedupe(moneyRegex.FindAllString(text, -1)),
		Technical:   dedupe(techRegex.FindAllString(text, -1)),
	}
}

func dedupe(matches []string) []string {
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		key := strings.ToLower(strings.TrimSpace(m))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(m))
		if len(out) >= maxEntitiesPerKind {
			break
		}
	}
	return out
}

// Conflict flags a pair of contradictory terms both present in the
// context. It is a prompt for the user to reconcile, not a verdict.
type Conflict struct {
	TermA  string `json:"term_a"`
	TermB  string `json:"term_b"`
	Detail string `json:"detail"`
}

// conflictPair describes two terms that rarely belong in the same PRD
type conflictPair struct {
	A, B   string
	Detail string
}

var conflictPairs = []conflictPair{
	{A: "free", B: "paid", Detail: "Context mentions both free and paid; clarify the pricing model."},
	{A: "real-time", B: "batch", Detail: "Context mentions both real-time and batch processing; clarify which applies where."},
	{A: "internal only", B: "public", Detail: "Context describes the product as both internal-only and public."},
	{A: "mobile-first", B: "desktop only", Detail: "Context conflicts on the primary platform."},
	{A: "mvp", B: "enterprise-grade", Detail: "MVP scope and enterprise-grade expectations may conflict."},
}

// detectConflicts scans for contradictory term pairs
func detectConflicts(text string) []Conflict {
	lower := strings.ToLower(text)

	var conflicts []Conflict
	for _, pair := range conflictPairs {
		if strings.Contains(lower, pair.A) && strings.Contains(lower, pair.B) {
			conflicts = append(conflicts, Conflict{TermA: pair.A, TermB: pair.B, Detail: pair.Detail})
		}
	}
	return conflicts
}
