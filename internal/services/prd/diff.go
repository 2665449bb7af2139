package prd

import (
	"strings"
)

// docSection is one `##`-headed slice of a PRD, with any content before
// the first `##` collected under the empty title.
type docSection struct {
	Title string
	Body  string
}

// splitSections cuts a markdown document at its `## ` headings. Deeper
// headings stay inside their parent section's body.
func splitSections(markdown string) []docSection {
	lines := strings.Split(markdown, "\n")

	var sections []docSection
	current := docSection{}
	var body []string

	flush := func() {
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if current.Title != "" || current.Body != "" {
			sections = append(sections, current)
		}
		body = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "## ") && !strings.HasPrefix(line, "###") {
			flush()
			current = docSection{Title: strings.TrimSpace(strings.TrimPrefix(line, "## "))}
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}

// SectionDiff is the section-level changelog between two PRD versions
type SectionDiff struct {
	Added    []string `json:"added,omitempty"`
	Modified []string `json:"modified,omitempty"`
	Removed  []string `json:"removed,omitempty"`
}

// DiffSections compares two documents section by section. Sections are
// matched by title; a title present in both with different bodies counts
// as modified.
func DiffSections(oldDoc, newDoc string) SectionDiff {
	oldSections := splitSections(oldDoc)
	newSections := splitSections(newDoc)

	oldByTitle := make(map[string]string, len(oldSections))
	for _, s := range oldSections {
		if s.Title != "" {
			oldByTitle[s.Title] = s.Body
		}
	}

	var diff SectionDiff
	seen := make(map[string]bool, len(newSections))
	for _, s := range newSections {
		if s.Title == "" {
			continue
		}
		seen[s.Title] = true
		oldBody, existed := oldByTitle[s.Title]
		switch {
		case !existed:
			diff.Added = append(diff.Added, s.Title)
		case oldBody != s.Body:
			diff.Modified = append(diff.Modified, s.Title)
		}
	}

	for _, s := range oldSections {
		if s.Title != "" && !seen[s.Title] {
			diff.Removed = append(diff.Removed, s.Title)
		}
	}

	return diff
}

// DiffLine is one line of a unified line diff
type DiffLine struct {
	Op   string `json:"op"` // "+", "-", or " "
	Text string `json:"text"`
}

// DiffLines computes a line-level diff using the longest common
// subsequence of lines. Quadratic in document length, which is fine for
// PRD-sized inputs.
func DiffLines(oldDoc, newDoc string) []DiffLine {
	oldLines := strings.Split(oldDoc, "\n")
	newLines := strings.Split(newDoc, "\n")

	m, n := len(oldLines), len(newLines)
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var out []DiffLine
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case oldLines[i] == newLines[j]:
			out = append(out, DiffLine{Op: " ", Text: oldLines[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			out = append(out, DiffLine{Op: "-", Text: oldLines[i]})
			i++
		default:
			out = append(out, DiffLine{Op: "+", Text: newLines[j]})
			j++
		}
	}
	for ; i < m; i++ {
		out = append(out, DiffLine{Op: "-", Text: oldLines[i]})
	}
	for ; j < n; j++ {
		out = append(out, DiffLine{Op: "+", Text: newLines[j]})
	}

	return out
}
