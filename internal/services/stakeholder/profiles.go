package stakeholder

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Profile describes how one stakeholder role sees a PRD: which sections
// are hidden and how summaries are framed.
type Profile struct {
	Role          string   `toml:"role" json:"role"`
	DisplayName   string   `toml:"display_name" json:"display_name"`
	FocusAreas    []string `toml:"focus_areas" json:"focus_areas"`
	HidePhrases   []string `toml:"hide_phrases" json:"hide_phrases"`
	SummaryPrompt string   `toml:"summary_prompt" json:"-"`
}

// profileSet is the TOML shape for an operator-supplied override file
type profileSet struct {
	Profiles []Profile `toml:"profiles"`
}

// DefaultProfiles returns the built-in role profiles keyed by role name
func DefaultProfiles() map[string]Profile {
	profiles := []Profile{
		{
			Role:        "engineering",
			DisplayName: "Engineering",
			FocusAreas:  []string{"functional requirements", "non-functional requirements", "technical constraints", "integrations"},
			HidePhrases: []string{"marketing", "go-to-market", "pricing"},
			SummaryPrompt: "Summarize this PRD for an engineering team. Emphasize requirements, " +
				"constraints, integrations, and open technical questions.",
		},
		{
			Role:        "design",
			DisplayName: "Design",
			FocusAreas:  []string{"target users", "user flows", "features"},
			HidePhrases: []string{"non-functional requirements", "infrastructure", "pricing"},
			SummaryPrompt: "Summarize this PRD for a design team. Emphasize the target users, " +
				"their problems, and the experience the features must deliver.",
		},
		{
			Role:        "leadership",
			DisplayName: "Leadership",
			FocusAreas:  []string{"overview", "goals", "success metrics", "timeline", "risks"},
			HidePhrases: []string{"functional requirements", "non-functional requirements", "technical"},
			SummaryPrompt: "Summarize this PRD for company leadership. Emphasize goals, metrics, " +
				"timeline, investment, and risks. Keep it under 300 words.",
		},
		{
			Role:        "qa",
			DisplayName: "Quality Assurance",
			FocusAreas:  []string{"functional requirements", "edge cases", "success metrics"},
			HidePhrases: []string{"marketing", "pricing", "go-to-market"},
			SummaryPrompt: "Summarize this PRD for a QA team. Emphasize testable requirements, " +
				"acceptance criteria, and areas of ambiguity that need clarification.",
		},
		{
			Role:        "marketing",
			DisplayName: "Marketing",
			FocusAreas:  []string{"overview", "target users", "features", "timeline"},
			HidePhrases: []string{"functional requirements", "non-functional requirements", "technical", "infrastructure"},
			SummaryPrompt: "Summarize this PRD for a marketing team. Emphasize the audience, the " +
				"value proposition, differentiating features, and launch timing.",
		},
	}

	byRole := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		byRole[strings.ToLower(p.Role)] = p
	}
	return byRole
}

// LoadProfiles reads role profiles from a TOML file, replacing the
// built-in set.
func LoadProfiles(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var set profileSet
	if err := toml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}
	if len(set.Profiles) == 0 {
		return nil, fmt.Errorf("profiles file contains no profiles")
	}

	byRole := make(map[string]Profile, len(set.Profiles))
	for _, p := range set.Profiles {
		byRole[strings.ToLower(p.Role)] = p
	}
	return byRole, nil
}

// sortedRoles returns role names in stable order for listings
func sortedRoles(profiles map[string]Profile) []string {
	roles := make([]string, 0, len(profiles))
	for role := range profiles {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
