package docsystem

import (
	"context"
	"io"
)

// ImportService turns uploaded files into documents
type ImportService interface {
	// ImportFiles converts each file to markdown, reads optional frontmatter and creates a document.
	// A failing file is reported in the result and does not stop the others.
	ImportFiles(ctx context.Context, userID string, files []UploadedFile) (*ImportResult, error)
}

// UploadedFile is one file of an import request, named as the client sent it
type UploadedFile struct {
	Filename string
	Content  io.Reader
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Summary   ImportSummary    `json:"summary"`
	Errors    []ImportError    `json:"errors"`
	Documents []ImportDocument `json:"documents"`
}

// ImportSummary contains aggregate statistics for an import operation
type ImportSummary struct {
	Created    int `json:"created"`
	Failed     int `json:"failed"`
	TotalFiles int `json:"total_files"`
}

// ImportError represents an error that occurred during import
type ImportError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// ImportDocument represents a created document
type ImportDocument struct {
	ID    string   `json:"id"`
	File  string   `json:"file"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}
