package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
)

// Service extracts plain text from uploaded context documents. Plain
// text formats decode directly; PDF goes through pdfcpu and EML through
// go-message.
type Service struct {
	logger arbor.ILogger
	pdf    *pdfExtractor
}

// Compile-time interface assertion
var _ interfaces.TextExtractor = (*Service)(nil)

// NewService creates a new text extraction service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		pdf:    newPDFExtractor(logger),
	}
}

// fileType returns the lowercase extension without the leading dot
func fileType(fileName string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
}

// Supported reports whether the file's extension has an extractor
func (s *Service) Supported(fileName string) bool {
	switch fileType(fileName) {
	case "txt", "md", "csv", "pdf", "eml":
		return true
	default:
		return false
	}
}

// Extract returns the plain text content of an uploaded document.
// Unsupported extensions are rejected so the upload handler can report
// per-file errors without aborting the whole batch.
func (s *Service) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	ft := fileType(fileName)

	s.logger.Debug().
		Str("file", fileName).
		Str("type", ft).
		Int("size", len(data)).
		Msg("Extracting text from context file")

	switch ft {
	case "txt", "md", "csv":
		return extractPlainText(data)
	case "eml":
		return extractEmail(data)
	case "pdf":
		return s.pdf.ExtractTextFromBytes(ctx, data)
	default:
		return "", fmt.Errorf("unsupported file type: .%s (supported: txt, md, csv, pdf, eml)", ft)
	}
}

// extractPlainText decodes text formats, replacing invalid UTF-8 so a
// stray binary upload cannot poison the aggregated context.
func extractPlainText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

// Aggregate joins the extracted text of a project's context files into a
// single document for AI prompts. Each file contributes a named block in
// upload order; files with no extracted text are skipped.
func Aggregate(files []*models.ContextFile) string {
	var builder strings.Builder
	for _, file := range files {
		text := strings.TrimSpace(file.ExtractedText)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString("=== ")
		builder.WriteString(file.FileName)
		builder.WriteString(" ===\n")
		builder.WriteString(text)
	}
	return builder.String()
}
