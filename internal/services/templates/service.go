package templates

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
)

// ErrDefaultTemplate marks attempts to modify a shipped template.
// Handlers map it to 403.
var ErrDefaultTemplate = errors.New("default templates are read-only")

// Service manages the PRD template library. Default templates ship with
// the application; users create their own or clone a default to edit.
type Service struct {
	storage  interfaces.TemplateStorage
	logger   arbor.ILogger
	validate *validator.Validate
}

// NewService creates a template service
func NewService(storage interfaces.TemplateStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		logger:   logger,
		validate: validator.New(),
	}
}

// EnsureDefault seeds the built-in template if no default exists yet.
// Section names come from the canonical PRD outline so a fresh install
// lists at least one usable template.
func (s *Service) EnsureDefault(name, description string, sectionNames []string) error {
	existing, err := s.storage.ListTemplates()
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	for _, t := range existing {
		if t.IsDefault {
			return nil
		}
	}

	sections := make([]models.TemplateSection, len(sectionNames))
	for i, n := range sectionNames {
		sections[i] = models.TemplateSection{Name: n, Order: i + 1, Required: true}
	}

	template := &models.PRDTemplate{
		ID:          common.NewTemplateID(),
		Name:        name,
		Description: description,
		IsDefault:   true,
		Sections:    sections,
	}
	if err := s.storage.SaveTemplate(template); err != nil {
		return fmt.Errorf("failed to seed default template: %w", err)
	}

	s.logger.Info().
		Str("template_id", template.ID).
		Int("sections", len(sections)).
		Msg("Seeded default PRD template")
	return nil
}

// List returns template summaries, defaults first, then by name
func (s *Service) List() ([]models.TemplateSummary, error) {
	all, err := s.storage.ListTemplates()
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].IsDefault != all[j].IsDefault {
			return all[i].IsDefault
		}
		return all[i].Name < all[j].Name
	})

	summaries := make([]models.TemplateSummary, len(all))
	for i, t := range all {
		summaries[i] = models.TemplateSummary{
			ID:           t.ID,
			Name:         t.Name,
			Description:  t.Description,
			IsDefault:    t.IsDefault,
			SectionCount: len(t.Sections),
			CreatedAt:    t.CreatedAt,
		}
	}
	return summaries, nil
}

// Get returns one template with its full section list
func (s *Service) Get(id string) (*models.PRDTemplate, error) {
	return s.storage.GetTemplate(id)
}

// Sections returns a template's sections in order
func (s *Service) Sections(id string) ([]models.TemplateSection, error) {
	template, err := s.storage.GetTemplate(id)
	if err != nil {
		return nil, err
	}
	return sortedSections(template.Sections), nil
}

// Create adds a user template. Missing section names and orders are
// filled in positionally.
func (s *Service) Create(name, description string, sections []models.TemplateSection) (*models.PRDTemplate, error) {
	template := &models.PRDTemplate{
		ID:          common.NewTemplateID(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Sections:    normalizeSections(sections),
	}

	if err := s.validate.Struct(template); err != nil {
		return nil, common.ValidationError("invalid template: %s", err.Error())
	}

	if err := s.storage.SaveTemplate(template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	return template, nil
}

// Update replaces a template's metadata and, when sections is non-nil,
// its whole section list. Default templates are immutable.
func (s *Service) Update(id, name, description string, sections []models.TemplateSection) (*models.PRDTemplate, error) {
	template, err := s.storage.GetTemplate(id)
	if err != nil {
		return nil, err
	}
	if template.IsDefault {
		return nil, fmt.Errorf("%w: clone it first", ErrDefaultTemplate)
	}

	if strings.TrimSpace(name) != "" {
		template.Name = strings.TrimSpace(name)
	}
	if description != "" {
		template.Description = strings.TrimSpace(description)
	}
	if sections != nil {
		template.Sections = normalizeSections(sections)
	}

	if err := s.validate.Struct(template); err != nil {
		return nil, common.ValidationError("invalid template: %s", err.Error())
	}

	if err := s.storage.SaveTemplate(template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	return template, nil
}

// Delete removes a user template. Default templates cannot be deleted.
func (s *Service) Delete(id string) error {
	template, err := s.storage.GetTemplate(id)
	if err != nil {
		return err
	}
	if template.IsDefault {
		return fmt.Errorf("%w: clone it first", ErrDefaultTemplate)
	}
	return s.storage.DeleteTemplate(id)
}

// Clone copies a template, sections included, as an editable user
// template. An empty name yields "Copy of <original>".
func (s *Service) Clone(id, name string) (*models.PRDTemplate, error) {
	original, err := s.storage.GetTemplate(id)
	if err != nil {
		return nil, err
	}

	cloneName := strings.TrimSpace(name)
	if cloneName == "" {
		cloneName = "Copy of " + original.Name
	}

	clone := &models.PRDTemplate{
		ID:          common.NewTemplateID(),
		Name:        cloneName,
		Description: original.Description,
		Sections:    append([]models.TemplateSection(nil), original.Sections...),
	}
	if err := s.storage.SaveTemplate(clone); err != nil {
		return nil, fmt.Errorf("failed to save cloned template: %w", err)
	}

	s.logger.Info().
		Str("source_id", id).
		Str("template_id", clone.ID).
		Msg("Template cloned")
	return clone, nil
}

// normalizeSections fills positional defaults for unnamed or unordered
// sections and sorts the result.
func normalizeSections(sections []models.TemplateSection) []models.TemplateSection {
	normalized := make([]models.TemplateSection, len(sections))
	for i, section := range sections {
		section.Name = strings.TrimSpace(section.Name)
		if section.Name == "" {
			section.Name = fmt.Sprintf("Section %d", i+1)
		}
		if section.Order <= 0 {
			section.Order = i + 1
		}
		normalized[i] = section
	}
	return sortedSections(normalized)
}

func sortedSections(sections []models.TemplateSection) []models.TemplateSection {
	sorted := append([]models.TemplateSection(nil), sections...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}
