package models

import "time"

// Feature is a product feature attached to a project, either entered by
// the user or extracted from context by the AI.
type Feature struct {
	ID            string    `json:"id" badgerhold:"key"`
	ProjectID     string    `json:"project_id" badgerhold:"index"`
	Name          string    `json:"name" validate:"required,min=1,max=200"`
	Description   string    `json:"description" validate:"max=2000"`
	IsSelected    bool      `json:"is_selected"`
	IsAIGenerated bool      `json:"is_ai_generated"`
	DisplayOrder  int       `json:"display_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
