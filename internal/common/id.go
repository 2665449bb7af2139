package common

import (
	"github.com/google/uuid"
)

// NewProjectID generates a unique project ID with the "proj_" prefix
func NewProjectID() string {
	return "proj_" + uuid.New().String()
}

// NewFileID generates a unique context file ID with the "file_" prefix
func NewFileID() string {
	return "file_" + uuid.New().String()
}

// NewResponseID generates a unique question response ID with the "resp_" prefix
func NewResponseID() string {
	return "resp_" + uuid.New().String()
}

// NewFeatureID generates a unique feature ID with the "feat_" prefix
func NewFeatureID() string {
	return "feat_" + uuid.New().String()
}

// NewPRDID generates a unique PRD ID with the "prd_" prefix
func NewPRDID() string {
	return "prd_" + uuid.New().String()
}

// NewSnapshotID generates a unique PRD snapshot ID with the "snap_" prefix
func NewSnapshotID() string {
	return "snap_" + uuid.New().String()
}

// NewTemplateID generates a unique PRD template ID with the "tmpl_" prefix
func NewTemplateID() string {
	return "tmpl_" + uuid.New().String()
}
