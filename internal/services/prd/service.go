package prd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
	"github.com/ternarybob/clarity/internal/services/llm"
)

// Service synthesizes, versions, and diffs PRDs. Generation is one LLM
// call over the project's confirmed answers; every content change
// snapshots the previous version first.
type Service struct {
	llm       interfaces.LLMService
	storage   interfaces.PRDStorage
	responses interfaces.ResponseStorage
	catalog   interfaces.CatalogService
	logger    arbor.ILogger
	retry     *llm.RetryConfig
}

// NewService creates a PRD service
func NewService(llmService interfaces.LLMService, storage interfaces.PRDStorage, responses interfaces.ResponseStorage, catalog interfaces.CatalogService, logger arbor.ILogger) *Service {
	return &Service{
		llm:       llmService,
		storage:   storage,
		responses: responses,
		catalog:   catalog,
		logger:    logger,
		retry:     llm.NewDefaultRetryConfig(),
	}
}

// Generate produces a fresh PRD from the project's confirmed answers and
// selected features, replacing the current document. The previous
// version, if any, is snapshotted first.
func (s *Service) Generate(ctx context.Context, project *models.Project, features []*models.Feature) (*models.PRD, error) {
	if s.llm == nil {
		return nil, common.UnavailableError("AI service is not configured")
	}

	saved, err := s.responses.ListResponses(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	sections := organizeResponses(s.catalog, saved)
	if len(sections) == 0 {
		return nil, common.NoOutputError("no confirmed answers; confirm at least one questionnaire answer before generating a PRD")
	}

	content, err := s.complete(ctx, generateSystemPrompt, buildGeneratePrompt(project.Name, sections, features))
	if err != nil {
		return nil, err
	}

	prd, err := s.replaceContent(project.ID, content)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("project_id", project.ID).
		Int("version", prd.Version).
		Int("content_len", len(prd.Content)).
		Msg("PRD generated")

	return prd, nil
}

// Get returns the project's current PRD
func (s *Service) Get(projectID string) (*models.PRD, error) {
	return s.storage.GetPRD(projectID)
}

// Edit replaces the PRD content with a user edit, snapshotting the
// previous version.
func (s *Service) Edit(projectID, content string) (*models.PRD, error) {
	if strings.TrimSpace(content) == "" {
		return nil, common.ValidationError("PRD content cannot be empty")
	}
	if _, err := s.storage.GetPRD(projectID); err != nil {
		return nil, err
	}
	return s.replaceContent(projectID, content)
}

// RegenerateSection rewrites one `##` section of the current PRD via the
// model and splices it back, leaving the rest of the document intact.
func (s *Service) RegenerateSection(ctx context.Context, projectID, sectionTitle, instructions string) (*models.PRD, error) {
	if s.llm == nil {
		return nil, common.UnavailableError("AI service is not configured")
	}

	current, err := s.storage.GetPRD(projectID)
	if err != nil {
		return nil, err
	}

	if !hasSection(current.Content, sectionTitle) {
		return nil, common.ValidationError("section %q not found in the current PRD", sectionTitle)
	}

	replacement, err := s.complete(ctx, generateSystemPrompt, buildRegeneratePrompt(current.Content, sectionTitle, instructions))
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.TrimSpace(replacement), "## ") {
		return nil, common.NoOutputError("AI did not return a usable section rewrite")
	}

	updated := spliceSection(current.Content, sectionTitle, replacement)
	return s.replaceContent(projectID, updated)
}

// SaveVersion snapshots the current PRD content under a label without
// changing the document.
func (s *Service) SaveVersion(projectID, label string) (*models.PRDSnapshot, error) {
	current, err := s.storage.GetPRD(projectID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.PRDSnapshot{
		ID:        common.NewSnapshotID(),
		ProjectID: projectID,
		Content:   current.Content,
		Version:   current.Version,
		Label:     label,
		CreatedAt: time.Now(),
	}
	if err := s.storage.SaveSnapshot(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// History returns a project's snapshots, newest first
func (s *Service) History(projectID string) ([]*models.PRDSnapshot, error) {
	return s.storage.ListSnapshots(projectID)
}

// GetSnapshot returns one snapshot by ID
func (s *Service) GetSnapshot(id string) (*models.PRDSnapshot, error) {
	return s.storage.GetSnapshot(id)
}

// Restore replaces the current PRD with a snapshot's content. The
// pre-restore content is snapshotted so the restore itself is undoable.
func (s *Service) Restore(projectID, snapshotID string) (*models.PRD, error) {
	snapshot, err := s.storage.GetSnapshot(snapshotID)
	if err != nil {
		return nil, err
	}
	if snapshot.ProjectID != projectID {
		return nil, common.ValidationError("snapshot %s does not belong to project %s", snapshotID, projectID)
	}
	if _, err := s.storage.GetPRD(projectID); err != nil {
		return nil, err
	}
	return s.replaceContent(projectID, snapshot.Content)
}

// Changelog reports section-level changes across the version history,
// oldest transition first, ending with the step to the current document.
func (s *Service) Changelog(projectID string) ([]models.ChangelogEntry, error) {
	current, err := s.storage.GetPRD(projectID)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.storage.ListSnapshots(projectID)
	if err != nil {
		return nil, err
	}

	// ListSnapshots is newest first; walk oldest to newest
	var entries []models.ChangelogEntry
	for i := len(snapshots) - 1; i > 0; i-- {
		older, newer := snapshots[i], snapshots[i-1]
		diff := DiffSections(older.Content, newer.Content)
		entries = append(entries, models.ChangelogEntry{
			FromVersion: older.Version,
			ToVersion:   newer.Version,
			Added:       diff.Added,
			Modified:    diff.Modified,
			Removed:     diff.Removed,
			CreatedAt:   newer.CreatedAt,
		})
	}

	if len(snapshots) > 0 {
		latest := snapshots[0]
		diff := DiffSections(latest.Content, current.Content)
		entries = append(entries, models.ChangelogEntry{
			FromVersion: latest.Version,
			ToVersion:   current.Version,
			Added:       diff.Added,
			Modified:    diff.Modified,
			Removed:     diff.Removed,
			CreatedAt:   current.UpdatedAt,
		})
	}

	return entries, nil
}

// replaceContent snapshots the existing PRD (if any) and writes the new
// content with a bumped version.
func (s *Service) replaceContent(projectID, content string) (*models.PRD, error) {
	now := time.Now()
	version := 1
	generatedAt := now

	current, err := s.storage.GetPRD(projectID)
	if err == nil {
		snapshot := &models.PRDSnapshot{
			ID:        common.NewSnapshotID(),
			ProjectID: projectID,
			Content:   current.Content,
			Version:   current.Version,
			CreatedAt: now,
		}
		if err := s.storage.SaveSnapshot(snapshot); err != nil {
			return nil, fmt.Errorf("failed to snapshot previous version: %w", err)
		}
		version = current.Version + 1
		generatedAt = current.GeneratedAt
	}

	prd := &models.PRD{
		ID:          common.NewPRDID(),
		ProjectID:   projectID,
		Content:     strings.TrimSpace(content),
		Version:     version,
		GeneratedAt: generatedAt,
		UpdatedAt:   now,
	}
	if current != nil {
		prd.ID = current.ID
	}

	if err := s.storage.SavePRD(prd); err != nil {
		return nil, err
	}
	return prd, nil
}

// complete runs one chat call with rate-limit retries and unwraps the
// reply from any markdown fence.
func (s *Service) complete(ctx context.Context, system, prompt string) (string, error) {
	var reply string
	err := s.retry.Do(ctx, func() error {
		var chatErr error
		reply, chatErr = s.llm.Chat(ctx, []interfaces.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		})
		return chatErr
	})
	if err != nil {
		return "", common.UnavailableError("PRD generation failed: %s", err.Error())
	}

	content := stripFence(reply)
	if content == "" {
		return "", common.NoOutputError("AI returned an empty document")
	}
	return content, nil
}

// hasSection reports whether the document contains a `## title` heading
func hasSection(document, title string) bool {
	for _, section := range splitSections(document) {
		if section.Title == title {
			return true
		}
	}
	return false
}

// spliceSection replaces the named `##` section with new content,
// keeping everything else byte for byte.
func spliceSection(document, title, replacement string) string {
	var out []string
	lines := strings.Split(document, "\n")
	skipping := false

	for _, line := range lines {
		isHeading := strings.HasPrefix(line, "## ") && !strings.HasPrefix(line, "###")
		if isHeading {
			if skipping {
				skipping = false
			}
			if strings.TrimSpace(strings.TrimPrefix(line, "## ")) == title {
				out = append(out, strings.TrimSpace(replacement))
				skipping = true
				continue
			}
		}
		if !skipping {
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}
