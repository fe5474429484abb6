package handler

import (
	"log/slog"
	"net/http"

	"vault/internal/config"
	"vault/internal/domain"
	docsysSvc "vault/internal/domain/services/docsystem"
	"vault/internal/httputil"
)

// ImportHandler handles file import requests
type ImportHandler struct {
	importService docsysSvc.ImportService
	logger        *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService docsysSvc.ImportService, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		logger:        logger,
	}
}

// ImportResponse represents the response for import operations
type ImportResponse struct {
	Success   bool                       `json:"success"`
	Summary   docsysSvc.ImportSummary    `json:"summary"`
	Errors    []docsysSvc.ImportError    `json:"errors"`
	Documents []docsysSvc.ImportDocument `json:"documents"`
}

// Import creates one document per uploaded file.
// POST /api/v1/documents/import (multipart, field "files")
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	badRequest := map[string]interface{}{"code": domain.CodeBadRequest}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxImportBytes)
	if err := r.ParseMultipartForm(config.MaxImportBytes); err != nil {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "Failed to parse multipart form", badRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "No files provided", badRequest)
		return
	}

	userID := httputil.GetUserID(r)
	h.logger.Info("starting import", "user_id", userID, "file_count", len(files))

	// Files are closed on return, after the service has read them all
	uploaded := make([]docsysSvc.UploadedFile, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			h.logger.Error("failed to open uploaded file", "file", header.Filename, "error", err)
			handleError(w, err)
			return
		}
		defer func() { _ = file.Close() }()

		uploaded = append(uploaded, docsysSvc.UploadedFile{
			Filename: header.Filename,
			Content:  file,
		})
	}

	result, err := h.importService.ImportFiles(r.Context(), userID, uploaded)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ImportResponse{
		Success:   result.Summary.Failed == 0,
		Summary:   result.Summary,
		Errors:    result.Errors,
		Documents: result.Documents,
	})
}
