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

// ResponseStorage implements the ResponseStorage interface for Badger.
// Rows are keyed by the (project, question) pair so a save is always an
// upsert on that natural key.
type ResponseStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewResponseStorage creates a new ResponseStorage instance
func NewResponseStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ResponseStorage {
	return &ResponseStorage{
		db:     db,
		logger: logger,
	}
}

// responseKey builds the badgerhold key for a (project, question) pair.
// Question IDs are dotted numerics so "/" is a safe separator.
func responseKey(projectID, questionID string) string {
	return projectID + "/" + questionID
}

// UpsertResponse inserts or replaces the stored response for the
// response's (ProjectID, QuestionID) pair. CreatedAt and the row ID are
// preserved when a row already exists; everything else is overwritten.
func (s *ResponseStorage) UpsertResponse(response *models.QuestionResponse) (*models.QuestionResponse, error) {
	if response.ProjectID == "" {
		return nil, fmt.Errorf("project ID is required")
	}
	if response.QuestionID == "" {
		return nil, fmt.Errorf("question ID is required")
	}

	key := responseKey(response.ProjectID, response.QuestionID)
	now := time.Now()

	var existing models.QuestionResponse
	err := s.db.Store().Get(key, &existing)
	switch {
	case err == nil:
		response.ID = existing.ID
		response.CreatedAt = existing.CreatedAt
	case err == badgerhold.ErrNotFound:
		response.ID = common.NewResponseID()
		response.CreatedAt = now
	default:
		return nil, fmt.Errorf("failed to look up response: %w", err)
	}
	response.UpdatedAt = now

	if err := s.db.Store().Upsert(key, response); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}
	return response, nil
}

func (s *ResponseStorage) GetResponse(projectID, questionID string) (*models.QuestionResponse, error) {
	var response models.QuestionResponse
	if err := s.db.Store().Get(responseKey(projectID, questionID), &response); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, common.NotFoundError("response not found: %s/%s", projectID, questionID)
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return &response, nil
}

func (s *ResponseStorage) ListResponses(projectID string) ([]*models.QuestionResponse, error) {
	var responses []models.QuestionResponse
	if err := s.db.Store().Find(&responses, badgerhold.Where("ProjectID").Eq(projectID).Index("ProjectID").SortBy("QuestionID")); err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	result := make([]*models.QuestionResponse, len(responses))
	for i := range responses {
		result[i] = &responses[i]
	}
	return result, nil
}

func (s *ResponseStorage) DeleteProjectResponses(projectID string) error {
	if err := s.db.Store().DeleteMatching(&models.QuestionResponse{}, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return fmt.Errorf("failed to delete project responses: %w", err)
	}
	return nil
}
