package models

// Catalog is the static hierarchical question tree. Question IDs use
// dotted section.subsection.question numbering ("2.1.3") and are unique
// across the whole catalog.
type Catalog struct {
	Sections []Section `json:"sections"`
}

// Section is a top-level catalog grouping
type Section struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Subsections []Subsection `json:"subsections"`
}

// Subsection groups sibling questions
type Subsection struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Question is a single catalog question
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Hint string `json:"hint,omitempty"`
}

// FlatQuestion is a catalog question flattened with its ancestry titles,
// the shape the suggestion engine and prompts work with.
type FlatQuestion struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Section    string `json:"section"`
	Subsection string `json:"subsection"`
}

// TotalQuestions returns the number of questions across all sections
func (c *Catalog) TotalQuestions() int {
	total := 0
	for _, sec := range c.Sections {
		for _, sub := range sec.Subsections {
			total += len(sub.Questions)
		}
	}
	return total
}
