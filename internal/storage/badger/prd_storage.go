package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PRDStorage implements the PRDStorage interface for Badger. The current
// PRD is keyed by project ID (one per project); snapshots carry their
// own IDs.
type PRDStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPRDStorage creates a new PRDStorage instance
func NewPRDStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PRDStorage {
	return &PRDStorage{
		db:     db,
		logger: logger,
	}
}

func (s *PRDStorage) SavePRD(prd *models.PRD) error {
	if prd.ProjectID == "" {
		return fmt.Errorf("project ID is required")
	}
	if err := s.db.Store().Upsert(prd.ProjectID, prd); err != nil {
		return fmt.Errorf("failed to save PRD: %w", err)
	}
	return nil
}

func (s *PRDStorage) GetPRD(projectID string) (*models.PRD, error) {
	var prd models.PRD
	if err := s.db.Store().Get(projectID, &prd); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.NotFoundError("PRD not found for project: %s", projectID)
		}
		return nil, fmt.Errorf("failed to get PRD: %w", err)
	}
	return &prd, nil
}

func (s *PRDStorage) DeletePRD(projectID string) error {
	if err := s.db.Store().Delete(projectID, &models.PRD{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete PRD: %w", err)
	}
	return nil
}

func (s *PRDStorage) SaveSnapshot(snapshot *models.PRDSnapshot) error {
	if snapshot.ID == "" {
		return fmt.Errorf("snapshot ID is required")
	}
	if err := s.db.Store().Upsert(snapshot.ID, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *PRDStorage) GetSnapshot(id string) (*models.PRDSnapshot, error) {
	var snapshot models.PRDSnapshot
	if err := s.db.Store().Get(id, &snapshot); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.NotFoundError("snapshot not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &snapshot, nil
}

// ListSnapshots returns a project's snapshots, newest version first
func (s *PRDStorage) ListSnapshots(projectID string) ([]*models.PRDSnapshot, error) {
	var snapshots []models.PRDSnapshot
	if err := s.db.Store().Find(&snapshots, badgerhold.Where("ProjectID").Eq(projectID).Index("ProjectID").SortBy("Version").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	result := make([]*models.PRDSnapshot, len(snapshots))
	for i := range snapshots {
		result[i] = &snapshots[i]
	}
	return result, nil
}

func (s *PRDStorage) DeleteSnapshot(id string) error {
	if err := s.db.Store().Delete(id, &models.PRDSnapshot{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (s *PRDStorage) DeleteProjectSnapshots(projectID string) error {
	if err := s.db.Store().DeleteMatching(&models.PRDSnapshot{}, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return fmt.Errorf("failed to delete project snapshots: %w", err)
	}
	return nil
}
