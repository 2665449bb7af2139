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

// TemplateStorage implements the TemplateStorage interface for Badger
type TemplateStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTemplateStorage creates a new TemplateStorage instance
func NewTemplateStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TemplateStorage {
	return &TemplateStorage{
		db:     db,
		logger: logger,
	}
}

func (s *TemplateStorage) SaveTemplate(template *models.PRDTemplate) error {
	if template.ID == "" {
		return fmt.Errorf("template ID is required")
	}

	now := time.Now()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}
	template.UpdatedAt = now

	if err := s.db.Store().Upsert(template.ID, template); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

func (s *TemplateStorage) GetTemplate(id string) (*models.PRDTemplate, error) {
	var template models.PRDTemplate
	if err := s.db.Store().Get(id, &template); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.NotFoundError("template not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &template, nil
}

func (s *TemplateStorage) ListTemplates() ([]*models.PRDTemplate, error) {
	var templates []models.PRDTemplate
	if err := s.db.Store().Find(&templates, nil); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	result := make([]*models.PRDTemplate, len(templates))
	for i := range templates {
		result[i] = &templates[i]
	}
	return result, nil
}

func (s *TemplateStorage) DeleteTemplate(id string) error {
	if err := s.db.Store().Delete(id, &models.PRDTemplate{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}
