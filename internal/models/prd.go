package models

import "time"

// PRD is the current generated document for a project. Each project has
// at most one PRD row; edits snapshot the previous content and bump Version.
type PRD struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id" badgerhold:"index"`
	Content     string    `json:"content"`
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PRDSnapshot is a frozen prior version of a project's PRD
type PRDSnapshot struct {
	ID        string    `json:"id" badgerhold:"key"`
	ProjectID string    `json:"project_id" badgerhold:"index"`
	Content   string    `json:"content"`
	Version   int       `json:"version"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangelogEntry describes the section-level difference between two
// consecutive PRD versions.
type ChangelogEntry struct {
	FromVersion int       `json:"from_version"`
	ToVersion   int       `json:"to_version"`
	Added       []string  `json:"added_sections"`
	Modified    []string  `json:"modified_sections"`
	Removed     []string  `json:"removed_sections"`
	CreatedAt   time.Time `json:"created_at"`
}
