package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
)

// Service holds the static question catalog loaded at startup. The
// catalog is immutable after load, so lookups need no locking.
type Service struct {
	logger  arbor.ILogger
	catalog *models.Catalog
	flat    []models.FlatQuestion
	byID    map[string]models.FlatQuestion
	// siblings maps a question ID to the other questions in its subsection
	siblings map[string][]models.Question
}

// Compile-time interface assertion
var _ interfaces.CatalogService = (*Service)(nil)

// NewService loads the question catalog from the given JSON file. A load
// failure is not fatal: the service starts with an empty catalog and the
// error is logged, matching the product behavior of degrading to an
// empty questionnaire rather than refusing to start.
func NewService(path string, logger arbor.ILogger) *Service {
	s := &Service{
		logger:  logger,
		catalog: &models.Catalog{Sections: []models.Section{}},
	}

	catalog, err := loadCatalog(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to load question catalog, starting with empty catalog")
	} else {
		s.catalog = catalog
	}

	s.index()

	logger.Info().
		Int("sections", len(s.catalog.Sections)).
		Int("questions", len(s.flat)).
		Msg("Question catalog loaded")

	return s
}

// NewServiceFromCatalog builds a service around an in-memory catalog.
// Used by tests and by callers that assemble catalogs programmatically.
func NewServiceFromCatalog(catalog *models.Catalog, logger arbor.ILogger) *Service {
	s := &Service{
		logger:  logger,
		catalog: catalog,
	}
	s.index()
	return s
}

func loadCatalog(path string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog models.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return &catalog, nil
}

// index builds the flattened question list and lookup maps
func (s *Service) index() {
	s.flat = make([]models.FlatQuestion, 0, s.catalog.TotalQuestions())
	s.byID = make(map[string]models.FlatQuestion)
	s.siblings = make(map[string][]models.Question)

	for _, sec := range s.catalog.Sections {
		for _, sub := range sec.Subsections {
			for _, q := range sub.Questions {
				fq := models.FlatQuestion{
					ID:         q.ID,
					Text:       q.Text,
					Section:    sec.Title,
					Subsection: sub.Title,
				}
				s.flat = append(s.flat, fq)
				s.byID[q.ID] = fq

				siblings := make([]models.Question, 0, len(sub.Questions)-1)
				for _, other := range sub.Questions {
					if other.ID != q.ID {
						siblings = append(siblings, other)
					}
				}
				s.siblings[q.ID] = siblings
			}
		}
	}
}

// Catalog returns the full question tree
func (s *Service) Catalog() *models.Catalog {
	return s.catalog
}

// Questions returns all catalog questions flattened in tree order
func (s *Service) Questions() []models.FlatQuestion {
	return s.flat
}

// Question looks up a flattened question by its dotted ID
func (s *Service) Question(id string) (models.FlatQuestion, bool) {
	q, ok := s.byID[id]
	return q, ok
}

// Siblings returns the other questions in the same subsection as the
// given question, in catalog order. Unknown IDs yield an empty slice.
func (s *Service) Siblings(questionID string) []models.Question {
	return s.siblings[questionID]
}

// TotalQuestions returns the number of questions across all sections
func (s *Service) TotalQuestions() int {
	return len(s.flat)
}
