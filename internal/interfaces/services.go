package interfaces

import (
	"context"

	"github.com/ternarybob/clarity/internal/models"
)

// CatalogService exposes the static question catalog
type CatalogService interface {
	Catalog() *models.Catalog
	Questions() []models.FlatQuestion
	Question(id string) (models.FlatQuestion, bool)
	Siblings(questionID string) []models.Question
	TotalQuestions() int
}

// TextExtractor extracts plain text from uploaded context documents
type TextExtractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (string, error)
	Supported(fileName string) bool
}

// PDFService converts markdown documents to PDF bytes
type PDFService interface {
	ConvertMarkdownToPDF(markdown, title string) ([]byte, error)
}
