package models

import "time"

// ContextFile represents an uploaded context document. The extracted text
// is persisted at upload time so aggregation never re-parses raw bytes.
type ContextFile struct {
	ID            string    `json:"id" badgerhold:"key"`
	ProjectID     string    `json:"project_id" badgerhold:"index"`
	FileName      string    `json:"file_name"`
	FileType      string    `json:"file_type"` // lowercase extension without dot: "txt", "md", "csv", "pdf", "eml"
	FileSize      int64     `json:"file_size"`
	ExtractedText string    `json:"extracted_text"`
	UploadedAt    time.Time `json:"uploaded_at"`
}
