package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
	"github.com/ternarybob/clarity/internal/services/analyze"
	"github.com/ternarybob/clarity/internal/services/extract"
)

// ContextHandler serves context document endpoints: upload, listing,
// aggregated text, and quality analysis.
type ContextHandler struct {
	storage   interfaces.StorageManager
	extractor interfaces.TextExtractor
	analyzer  *analyze.Service
	logger    arbor.ILogger
	config    common.UploadConfig
}

// NewContextHandler creates a new context handler
func NewContextHandler(storage interfaces.StorageManager, extractor interfaces.TextExtractor, analyzer *analyze.Service, config common.UploadConfig, logger arbor.ILogger) *ContextHandler {
	return &ContextHandler{
		storage:   storage,
		extractor: extractor,
		analyzer:  analyzer,
		logger:    logger,
		config:    config,
	}
}

// uploadResult reports the outcome for one file in an upload batch
type uploadResult struct {
	FileName string `json:"file_name"`
	FileID   string `json:"file_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UploadHandler handles POST /api/context/upload/{projectID}. Each file
// in the multipart form succeeds or fails independently.
func (h *ContextHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/context/upload/", 0)
	if projectID == "" {
		WriteError(w, http.StatusBadRequest, "project ID is required")
		return
	}
	if _, err := h.storage.ProjectStorage().GetProject(projectID); err != nil {
		WriteServiceError(w, err)
		return
	}

	if err := r.ParseMultipartForm(h.config.MaxFileSize); err != nil {
		WriteError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		WriteError(w, http.StatusBadRequest, "no files in upload; use the 'files' form field")
		return
	}

	results := make([]uploadResult, 0, len(files))
	saved := 0
	for _, header := range files {
		result := uploadResult{FileName: header.Filename}

		if header.Size > h.config.MaxFileSize {
			result.Error = "file exceeds the maximum upload size"
			results = append(results, result)
			continue
		}
		if !h.extractor.Supported(header.Filename) {
			result.Error = "unsupported file type (supported: txt, md, csv, pdf, eml)"
			results = append(results, result)
			continue
		}

		file, err := header.Open()
		if err != nil {
			result.Error = "failed to open uploaded file: " + err.Error()
			results = append(results, result)
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			result.Error = "failed to read uploaded file: " + err.Error()
			results = append(results, result)
			continue
		}

		text, err := h.extractor.Extract(r.Context(), header.Filename, data)
		if err != nil {
			result.Error = "text extraction failed: " + err.Error()
			results = append(results, result)
			continue
		}

		contextFile := &models.ContextFile{
			ID:            common.NewFileID(),
			ProjectID:     projectID,
			FileName:      header.Filename,
			FileType:      fileTypeOf(header.Filename),
			FileSize:      header.Size,
			ExtractedText: text,
		}
		if err := h.storage.ContextStorage().SaveFile(contextFile); err != nil {
			result.Error = "failed to save file: " + err.Error()
			results = append(results, result)
			continue
		}

		result.FileID = contextFile.ID
		results = append(results, result)
		saved++
	}

	h.logger.Info().
		Str("project_id", projectID).
		Int("uploaded", len(files)).
		Int("saved", saved).
		Msg("Context upload processed")

	status := http.StatusOK
	if saved == 0 {
		status = http.StatusBadRequest
	}
	WriteJSON(w, status, map[string]interface{}{
		"results": results,
		"saved":   saved,
	})
}

// ListHandler handles GET /api/context/{projectID}
func (h *ContextHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/context/", 0)
	files, err := h.storage.ContextStorage().ListFiles(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	// Strip extracted text from listings; it can be large
	summaries := make([]map[string]interface{}, 0, len(files))
	for _, f := range files {
		summaries = append(summaries, map[string]interface{}{
			"id":          f.ID,
			"file_name":   f.FileName,
			"file_type":   f.FileType,
			"file_size":   f.FileSize,
			"text_length": len(f.ExtractedText),
			"uploaded_at": f.UploadedAt,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"files": summaries})
}

// TextHandler handles GET /api/context/text/{projectID}, returning the
// aggregated context text used for AI prompts.
func (h *ContextHandler) TextHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	projectID := PathSegment(r.URL.Path, "/api/context/text/", 0)
	files, err := h.storage.ContextStorage().ListFiles(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	text := extract.Aggregate(files)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"text":       text,
		"length":     len(text),
		"file_count": len(files),
	})
}

// AnalyzeHandler handles GET and POST /api/context/analyze/{projectID}.
// POST with {"deep": true} adds the AI analysis layer.
func (h *ContextHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	projectID := PathSegment(r.URL.Path, "/api/context/analyze/", 0)
	if _, err := h.storage.ProjectStorage().GetProject(projectID); err != nil {
		WriteServiceError(w, err)
		return
	}

	deep := false
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req struct {
			Deep bool `json:"deep"`
		}
		if err := DecodeJSON(r, &req); err == nil {
			deep = req.Deep
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	files, err := h.storage.ContextStorage().ListFiles(projectID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), extract.Aggregate(files), deep)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, analysis)
}

// FileHandler handles GET and DELETE on /api/context/file/{fileID}
func (h *ContextHandler) FileHandler(w http.ResponseWriter, r *http.Request) {
	fileID := PathSegment(r.URL.Path, "/api/context/file/", 0)
	if fileID == "" {
		WriteError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		file, err := h.storage.ContextStorage().GetFile(fileID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, file)
	case http.MethodDelete:
		if _, err := h.storage.ContextStorage().GetFile(fileID); err != nil {
			WriteServiceError(w, err)
			return
		}
		if err := h.storage.ContextStorage().DeleteFile(fileID); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// fileTypeOf mirrors the extractor's extension normalization
func fileTypeOf(fileName string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
}
