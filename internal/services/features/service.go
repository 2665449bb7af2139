package features

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
	"github.com/ternarybob/clarity/internal/services/llm"
)

// Service manages project features: AI extraction from context plus
// manual CRUD and selection.
type Service struct {
	llm      interfaces.LLMService
	storage  interfaces.FeatureStorage
	logger   arbor.ILogger
	validate *validator.Validate
	retry    *llm.RetryConfig
}

// NewService creates a feature service
func NewService(llmService interfaces.LLMService, storage interfaces.FeatureStorage, logger arbor.ILogger) *Service {
	return &Service{
		llm:      llmService,
		storage:  storage,
		logger:   logger,
		validate: validator.New(),
		retry:    llm.NewDefaultRetryConfig(),
	}
}

const extractPrompt = "You are a product analyst. Extract the distinct product features described " +
	"in the context below. Return a JSON array with this EXACT format (no extra text): " +
	`[{"name": "...", "description": "..."}]` + "\n\nContext:\n"

// extractedFeature mirrors the JSON the model is asked for
type extractedFeature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Extract asks the model for features found in the aggregated context
// and saves them as selected, AI-generated features appended after any
// existing ones.
func (s *Service) Extract(ctx context.Context, projectID, contextText string) ([]*models.Feature, error) {
	if s.llm == nil {
		return nil, common.UnavailableError("AI service is not configured")
	}
	if strings.TrimSpace(contextText) == "" {
		return nil, common.ValidationError("no context documents uploaded; upload at least one document before extracting features")
	}

	var reply string
	err := s.retry.Do(ctx, func() error {
		var chatErr error
		reply, chatErr = s.llm.Chat(ctx, []interfaces.Message{
			{Role: "user", Content: extractPrompt + contextText},
		})
		return chatErr
	})
	if err != nil {
		return nil, common.UnavailableError("feature extraction failed: %s", err.Error())
	}

	extracted, err := parseExtractedFeatures(reply)
	if err != nil {
		return nil, common.NoOutputError("AI returned no usable features: %s", err.Error())
	}

	existing, err := s.storage.ListFeatures(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing features: %w", err)
	}
	nextOrder := len(existing)

	saved := make([]*models.Feature, 0, len(extracted))
	for i, ef := range extracted {
		feature := &models.Feature{
			ID:            common.NewFeatureID(),
			ProjectID:     projectID,
			Name:          ef.Name,
			Description:   ef.Description,
			IsSelected:    true,
			IsAIGenerated: true,
			DisplayOrder:  nextOrder + i,
		}
		if err := s.storage.SaveFeature(feature); err != nil {
			s.logger.Warn().Err(err).Str("feature", ef.Name).Msg("Failed to save extracted feature")
			continue
		}
		saved = append(saved, feature)
	}

	s.logger.Info().
		Str("project_id", projectID).
		Int("extracted", len(extracted)).
		Int("saved", len(saved)).
		Msg("Feature extraction complete")

	return saved, nil
}

// parseExtractedFeatures locates the JSON array in a model reply and
// drops entries without a name.
func parseExtractedFeatures(raw string) ([]extractedFeature, error) {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array found in model reply")
	}

	var entries []extractedFeature
	if err := json.Unmarshal([]byte(raw[start:end+1]), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse feature array: %w", err)
	}

	features := entries[:0]
	for _, entry := range entries {
		if strings.TrimSpace(entry.Name) != "" {
			features = append(features, entry)
		}
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("model reply contained no named features")
	}
	return features, nil
}

// Create adds a manual feature after validating the payload
func (s *Service) Create(projectID, name, description string) (*models.Feature, error) {
	existing, err := s.storage.ListFeatures(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}

	feature := &models.Feature{
		ID:           common.NewFeatureID(),
		ProjectID:    projectID,
		Name:         strings.TrimSpace(name),
		Description:  strings.TrimSpace(description),
		IsSelected:   true,
		DisplayOrder: len(existing),
	}

	if err := s.validate.Struct(feature); err != nil {
		return nil, common.ValidationError("invalid feature: %s", err.Error())
	}

	if err := s.storage.SaveFeature(feature); err != nil {
		return nil, fmt.Errorf("failed to save feature: %w", err)
	}
	return feature, nil
}

// List returns a project's features in display order
func (s *Service) List(projectID string) ([]*models.Feature, error) {
	return s.storage.ListFeatures(projectID)
}

// Get returns one feature by ID
func (s *Service) Get(id string) (*models.Feature, error) {
	return s.storage.GetFeature(id)
}

// Update replaces a feature's name, description, and display order
func (s *Service) Update(id, name, description string, displayOrder int) (*models.Feature, error) {
	feature, err := s.storage.GetFeature(id)
	if err != nil {
		return nil, err
	}

	feature.Name = strings.TrimSpace(name)
	feature.Description = strings.TrimSpace(description)
	feature.DisplayOrder = displayOrder

	if err := s.validate.Struct(feature); err != nil {
		return nil, common.ValidationError("invalid feature: %s", err.Error())
	}

	if err := s.storage.SaveFeature(feature); err != nil {
		return nil, fmt.Errorf("failed to save feature: %w", err)
	}
	return feature, nil
}

// Delete removes a feature
func (s *Service) Delete(id string) error {
	return s.storage.DeleteFeature(id)
}

// SetSelected toggles whether a feature feeds AI prompts and the PRD
func (s *Service) SetSelected(id string, selected bool) (*models.Feature, error) {
	feature, err := s.storage.GetFeature(id)
	if err != nil {
		return nil, err
	}

	feature.IsSelected = selected
	if err := s.storage.SaveFeature(feature); err != nil {
		return nil, fmt.Errorf("failed to save feature: %w", err)
	}
	return feature, nil
}

// Selected returns the project's selected features in display order
func (s *Service) Selected(projectID string) ([]*models.Feature, error) {
	all, err := s.storage.ListFeatures(projectID)
	if err != nil {
		return nil, err
	}

	selected := make([]*models.Feature, 0, len(all))
	for _, f := range all {
		if f.IsSelected {
			selected = append(selected, f)
		}
	}
	return selected, nil
}
