package docsystem

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	docsys "vault/internal/domain/models/docsystem"
	docsysSvc "vault/internal/domain/services/docsystem"
	"vault/internal/service/docsystem/converter"
)

// importService implements the ImportService interface
type importService struct {
	docService docsysSvc.DocumentService
	converters *converter.ConverterRegistry
	logger     *slog.Logger
}

// NewImportService creates a new import service
func NewImportService(
	docService docsysSvc.DocumentService,
	converters *converter.ConverterRegistry,
	logger *slog.Logger,
) docsysSvc.ImportService {
	return &importService{
		docService: docService,
		converters: converters,
		logger:     logger,
	}
}

// ImportFiles creates one document per file. Failures are collected per file.
func (s *importService) ImportFiles(ctx context.Context, userID string, files []docsysSvc.UploadedFile) (*docsysSvc.ImportResult, error) {
	result := &docsysSvc.ImportResult{
		Errors:    []docsysSvc.ImportError{},
		Documents: []docsysSvc.ImportDocument{},
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Summary.TotalFiles++
		doc, err := s.importFile(ctx, userID, file)
		if err != nil {
			s.addError(result, file.Filename, err)
			continue
		}

		result.Summary.Created++
		result.Documents = append(result.Documents, docsysSvc.ImportDocument{
			ID:    doc.ID,
			File:  file.Filename,
			Title: doc.Title,
			Tags:  doc.Tags,
		})
	}

	s.logger.Info("import complete",
		"user_id", userID,
		"created", result.Summary.Created,
		"failed", result.Summary.Failed,
		"total_files", result.Summary.TotalFiles,
	)
	return result, nil
}

func (s *importService) importFile(ctx context.Context, userID string, file docsysSvc.UploadedFile) (*docsys.Document, error) {
	if s.converters.GetConverter(filepath.Ext(file.Filename)) == nil {
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(file.Filename))
	}

	content, err := io.ReadAll(file.Content)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	markdown, err := s.converters.Convert(ctx, file.Filename, content)
	if err != nil {
		return nil, err
	}

	meta, body, err := parseFrontmatter(markdown)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		base := filepath.Base(file.Filename)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	req := &docsysSvc.CreateDocumentRequest{
		Title:      title,
		Content:    body,
		DocType:    meta.DocType,
		Tags:       meta.Tags,
		SourceType: docsys.SourceTypeImport,
	}
	if meta.SourceURL != "" {
		req.SourceURL = &meta.SourceURL
	}

	return s.docService.CreateDocument(ctx, userID, req)
}

func (s *importService) addError(result *docsysSvc.ImportResult, file string, err error) {
	result.Summary.Failed++
	result.Errors = append(result.Errors, docsysSvc.ImportError{
		File:  file,
		Error: err.Error(),
	})

	s.logger.Warn("file import failed", "file", file, "error", err)
}
