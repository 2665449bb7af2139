package models

import "time"

// Project represents a PRD project that owns context files, question
// responses, features, and the generated document.
type Project struct {
	ID          string    `json:"id" badgerhold:"key"`
	Name        string    `json:"name" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
