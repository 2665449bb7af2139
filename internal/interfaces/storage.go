package interfaces

import (
	"github.com/ternarybob/clarity/internal/models"
)

// StorageManager provides access to all entity storages
type StorageManager interface {
	ProjectStorage() ProjectStorage
	ContextStorage() ContextStorage
	ResponseStorage() ResponseStorage
	FeatureStorage() FeatureStorage
	PRDStorage() PRDStorage
	TemplateStorage() TemplateStorage
	Close() error
}

// ProjectStorage persists projects
type ProjectStorage interface {
	SaveProject(project *models.Project) error
	GetProject(id string) (*models.Project, error)
	ListProjects() ([]*models.Project, error)
	DeleteProject(id string) error
}

// ContextStorage persists uploaded context files
type ContextStorage interface {
	SaveFile(file *models.ContextFile) error
	GetFile(id string) (*models.ContextFile, error)
	ListFiles(projectID string) ([]*models.ContextFile, error)
	DeleteFile(id string) error
	DeleteProjectFiles(projectID string) error
}

// ResponseStorage persists question responses with upsert semantics on
// the (project, question) pair.
type ResponseStorage interface {
	UpsertResponse(response *models.QuestionResponse) (*models.QuestionResponse, error)
	GetResponse(projectID, questionID string) (*models.QuestionResponse, error)
	ListResponses(projectID string) ([]*models.QuestionResponse, error)
	DeleteProjectResponses(projectID string) error
}

// FeatureStorage persists project features
type FeatureStorage interface {
	SaveFeature(feature *models.Feature) error
	GetFeature(id string) (*models.Feature, error)
	ListFeatures(projectID string) ([]*models.Feature, error)
	DeleteFeature(id string) error
	DeleteProjectFeatures(projectID string) error
}

// TemplateStorage persists PRD templates with their embedded sections
type TemplateStorage interface {
	SaveTemplate(template *models.PRDTemplate) error
	GetTemplate(id string) (*models.PRDTemplate, error)
	ListTemplates() ([]*models.PRDTemplate, error)
	DeleteTemplate(id string) error
}

// PRDStorage persists the current PRD per project plus version snapshots
type PRDStorage interface {
	SavePRD(prd *models.PRD) error
	GetPRD(projectID string) (*models.PRD, error)
	DeletePRD(projectID string) error
	SaveSnapshot(snapshot *models.PRDSnapshot) error
	GetSnapshot(id string) (*models.PRDSnapshot, error)
	ListSnapshots(projectID string) ([]*models.PRDSnapshot, error)
	DeleteSnapshot(id string) error
	DeleteProjectSnapshots(projectID string) error
}
