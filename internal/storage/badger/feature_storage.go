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

// FeatureStorage implements the FeatureStorage interface for Badger
type FeatureStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFeatureStorage creates a new FeatureStorage instance
func NewFeatureStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FeatureStorage {
	return &FeatureStorage{
		db:     db,
		logger: logger,
	}
}

func (s *FeatureStorage) SaveFeature(feature *models.Feature) error {
	if feature.ID == "" {
		return fmt.Errorf("feature ID is required")
	}
	if feature.ProjectID == "" {
		return fmt.Errorf("project ID is required")
	}

	now := time.Now()
	if feature.CreatedAt.IsZero() {
		feature.CreatedAt = now
	}
	feature.UpdatedAt = now

	if err := s.db.Store().Upsert(feature.ID, feature); err != nil {
		return fmt.Errorf("failed to save feature: %w", err)
	}
	return nil
}

func (s *FeatureStorage) GetFeature(id string) (*models.Feature, error) {
	var feature models.Feature
	if err := s.db.Store().Get(id, &feature); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.NotFoundError("feature not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get feature: %w", err)
	}
	return &feature, nil
}

func (s *FeatureStorage) ListFeatures(projectID string) ([]*models.Feature, error) {
	var features []models.Feature
	if err := s.db.Store().Find(&features, badgerhold.Where("ProjectID").Eq(projectID).Index("ProjectID").SortBy("DisplayOrder")); err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}

	result := make([]*models.Feature, len(features))
	for i := range features {
		result[i] = &features[i]
	}
	return result, nil
}

func (s *FeatureStorage) DeleteFeature(id string) error {
	if err := s.db.Store().Delete(id, &models.Feature{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete feature: %w", err)
	}
	return nil
}

func (s *FeatureStorage) DeleteProjectFeatures(projectID string) error {
	if err := s.db.Store().DeleteMatching(&models.Feature{}, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return fmt.Errorf("failed to delete project features: %w", err)
	}
	return nil
}
