package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ContextStorage implements the ContextStorage interface for Badger
type ContextStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewContextStorage creates a new ContextStorage instance
func NewContextStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ContextStorage {
	return &ContextStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ContextStorage) SaveFile(file *models.ContextFile) error {
	if file.ID == "" {
		return fmt.Errorf("context file ID is required")
	}
	if file.ProjectID == "" {
		return fmt.Errorf("project ID is required")
	}

	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now()
	}

	if err := s.db.Store().Upsert(file.ID, file); err != nil {
		return fmt.Errorf("failed to save context file: %w", err)
	}
	return nil
}

func (s *ContextStorage) GetFile(id string) (*models.ContextFile, error) {
	var file models.ContextFile
	if err := s.db.Store().Get(id, &file); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.NotFoundError("context file not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get context file: %w", err)
	}
	return &file, nil
}

// ListFiles returns a project's context files in upload order. Aggregated
// context text depends on this ordering.
func (s *ContextStorage) ListFiles(projectID string) ([]*models.ContextFile, error) {
	var files []models.ContextFile
	if err := s.db.Store().Find(&files, badgerhold.Where("ProjectID").Eq(projectID).Index("ProjectID").SortBy("UploadedAt")); err != nil {
		return nil, fmt.Errorf("failed to list context files: %w", err)
	}

	result := make([]*models.ContextFile, len(files))
	for i := range files {
		result[i] = &files[i]
	}
	return result, nil
}

func (s *ContextStorage) DeleteFile(id string) error {
	if err := s.db.Store().Delete(id, &models.ContextFile{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete context file: %w", err)
	}
	return nil
}

func (s *ContextStorage) DeleteProjectFiles(projectID string) error {
	if err := s.db.Store().DeleteMatching(&models.ContextFile{}, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return fmt.Errorf("failed to delete project context files: %w", err)
	}
	return nil
}
