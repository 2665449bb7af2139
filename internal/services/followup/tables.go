package followup

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// FollowupTemplate is one canned follow-up question with its hint
type FollowupTemplate struct {
	Question string `toml:"question"`
	Hint     string `toml:"hint"`
}

// TriggerRule fires its follow-up templates when a response mentions one
// of its keywords. A topic fires at most once per response, but may
// carry several templates.
type TriggerRule struct {
	Topic     string             `toml:"topic"`
	Keywords  []string           `toml:"keywords"`
	Followups []FollowupTemplate `toml:"followups"`
}

// SkipRule suggests skipping other questions when a response to the
// given question contains one of its phrases.
type SkipRule struct {
	QuestionID string   `toml:"question_id"`
	Phrases    []string `toml:"phrases"`
	Skips      []string `toml:"skips"`
	Reason     string   `toml:"reason"`
}

// RuleSet is the full rule configuration. An operator-supplied TOML file
// replaces the built-in tables wholesale.
type RuleSet struct {
	Triggers []TriggerRule `toml:"triggers"`
	Skips    []SkipRule    `toml:"skips"`
}

// DefaultRuleSet returns the built-in trigger and skip tables
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Triggers: []TriggerRule{
			{
				Topic:    "payments",
				Keywords: []string{"payment", "billing", "subscription", "checkout", "stripe"},
				Followups: []FollowupTemplate{
					{
						Question: "Which payment provider will be used, and what transaction types must be supported?",
						Hint:     "Consider one-time charges, subscriptions, refunds, and chargebacks.",
					},
				},
			},
			{
				Topic:    "integrations",
				Keywords: []string{"integration", "api", "webhook", "third-party", "third party"},
				Followups: []FollowupTemplate{
					{
						Question: "What are the availability and rate-limit constraints of the external systems involved?",
						Hint:     "External dependencies often drive the error-handling design.",
					},
					{
						Question: "How should the product behave when an external system is down or throttling?",
						Hint:     "Queueing, retries, and user-visible fallbacks are the usual options.",
					},
				},
			},
			{
				Topic:    "authentication",
				Keywords: []string{"login", "auth", "sso", "oauth", "password", "identity"},
				Followups: []FollowupTemplate{
					{
						Question: "What authentication methods are required, and is single sign-on in scope?",
						Hint:     "Enterprise customers usually expect SAML or OIDC.",
					},
				},
			},
			{
				Topic:    "mobile",
				Keywords: []string{"mobile", "ios", "android", "app store", "offline"},
				Followups: []FollowupTemplate{
					{
						Question: "Does mobile support mean responsive web, native apps, or both?",
						Hint:     "Native apps change the release and testing story significantly.",
					},
				},
			},
			{
				Topic:    "compliance",
				Keywords: []string{"gdpr", "hipaa", "compliance", "pii", "personal data", "audit"},
				Followups: []FollowupTemplate{
					{
						Question: "Which regulations apply, and what data retention or deletion rules do they impose?",
						Hint:     "Data residency requirements can affect hosting choices.",
					},
					{
						Question: "Who is accountable for compliance sign-off before launch?",
						Hint:     "Legal review often needs lead time in the schedule.",
					},
				},
			},
			{
				Topic:    "scale",
				Keywords: []string{"scale", "performance", "latency", "throughput", "concurrent"},
				Followups: []FollowupTemplate{
					{
						Question: "What load should the system handle at launch, and what is the expected growth?",
						Hint:     "Quantify peak concurrent users and data volume where possible.",
					},
				},
			},
			{
				Topic:    "localization",
				Keywords: []string{"language", "locale", "translation", "international", "i18n"},
				Followups: []FollowupTemplate{
					{
						Question: "Which languages and regions must be supported at launch?",
					},
				},
			},
			{
				Topic:    "notifications",
				Keywords: []string{"notification", "email", "sms", "push", "alert"},
				Followups: []FollowupTemplate{
					{
						Question: "Which notification channels are required, and can users control their preferences?",
					},
				},
			},
		},
		Skips: []SkipRule{
			{
				QuestionID: "2.1.2",
				Phrases:    []string{"no integrations", "no external systems", "standalone"},
				Skips:      []string{"2.1.3", "2.1.4"},
				Reason:     "No external integrations planned",
			},
			{
				QuestionID: "3.1.1",
				Phrases:    []string{"internal only", "internal tool", "not public"},
				Skips:      []string{"3.1.2", "3.1.3"},
				Reason:     "Internal tool, public-facing concerns do not apply",
			},
			{
				QuestionID: "4.1.1",
				Phrases:    []string{"no mobile", "desktop only", "web only"},
				Skips:      []string{"4.1.2"},
				Reason:     "Mobile support is out of scope",
			},
		},
	}
}

// LoadRuleSet reads a rule set from a TOML file
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules RuleSet
	if err := toml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	return &rules, nil
}
