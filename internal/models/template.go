package models

import "time"

// TemplateSection is one section slot in a PRD template. PromptTemplate
// optionally overrides the generation prompt for that section.
type TemplateSection struct {
	Name           string `json:"name"`
	Order          int    `json:"order"`
	Required       bool   `json:"required"`
	PromptTemplate string `json:"prompt_template,omitempty"`
}

// PRDTemplate defines the section structure a generated PRD follows.
// Default templates ship with the application and cannot be edited or
// deleted; clone one to customize it.
type PRDTemplate struct {
	ID          string            `json:"id" badgerhold:"key"`
	Name        string            `json:"name" validate:"required,min=1,max=200"`
	Description string            `json:"description,omitempty" validate:"max=2000"`
	IsDefault   bool              `json:"is_default"`
	Sections    []TemplateSection `json:"sections"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TemplateSummary is the list-view shape: metadata plus a section count
// instead of the full section payload.
type TemplateSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	IsDefault    bool      `json:"is_default"`
	SectionCount int       `json:"section_count"`
	CreatedAt    time.Time `json:"created_at"`
}
