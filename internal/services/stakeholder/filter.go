package stakeholder

import (
	"strings"
)

// FilterSections removes every markdown section whose heading contains
// one of the hide phrases, case-insensitively. Removing a section also
// removes its nested deeper-level headings, in a single pass over the
// document.
func FilterSections(markdown string, hidePhrases []string) string {
	if len(hidePhrases) == 0 {
		return markdown
	}

	lowered := make([]string, len(hidePhrases))
	for i, p := range hidePhrases {
		lowered[i] = strings.ToLower(p)
	}

	var out []string
	hiddenLevel := 0 // heading level being hidden, 0 = not hiding

	for _, line := range strings.Split(markdown, "\n") {
		level, title := headingLevel(line)

		if level > 0 {
			if hiddenLevel > 0 && level <= hiddenLevel {
				hiddenLevel = 0
			}
			if hiddenLevel == 0 && matchesAny(strings.ToLower(title), lowered) {
				hiddenLevel = level
			}
		}

		if hiddenLevel == 0 {
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}

// headingLevel returns the markdown heading level and title text, or 0
// for non-heading lines.
func headingLevel(line string) (int, string) {
	trimmed := strings.TrimLeft(line, "#")
	level := len(line) - len(trimmed)
	if level == 0 || level > 6 || !strings.HasPrefix(trimmed, " ") {
		return 0, ""
	}
	return level, strings.TrimSpace(trimmed)
}

func matchesAny(title string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(title, phrase) {
			return true
		}
	}
	return false
}
