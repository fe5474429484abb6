package docsystem

import (
	"context"
	"strings"

	"vault/internal/config"
	"vault/internal/domain/models/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// DocumentService handles document business logic.
// Every method is scoped to the acting user's documents.
type DocumentService interface {
	// CreateDocument creates a document owned by userID, applying tags if given
	CreateDocument(ctx context.Context, userID string, req *CreateDocumentRequest) (*docsystem.Document, error)

	// GetDocument retrieves a document and records the access.
	// Returns ErrNotFound if it does not exist and ErrForbidden if another user owns it.
	GetDocument(ctx context.Context, userID, documentID string) (*docsystem.Document, error)

	// ListDocuments returns a filtered, sorted page of the user's documents
	ListDocuments(ctx context.Context, filter *docsystem.DocumentFilter) (*docsystem.DocumentPage, error)

	// UpdateDocument applies a partial update; tags, when present, replace the whole set
	UpdateDocument(ctx context.Context, userID, documentID string, req *UpdateDocumentRequest) (*docsystem.Document, error)

	// DeleteDocument hard-deletes a document
	DeleteDocument(ctx context.Context, userID, documentID string) error

	// ArchiveDocument sets the archived flag (idempotent)
	ArchiveDocument(ctx context.Context, userID, documentID string, archived bool) (*docsystem.Document, error)

	// PinDocument sets the pinned flag (idempotent)
	PinDocument(ctx context.Context, userID, documentID string, pinned bool) (*docsystem.Document, error)

	// Stats summarizes the user's vault
	Stats(ctx context.Context, userID string) (*docsystem.Stats, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	DocType    string   `json:"doc_type,omitempty"` // Default: note
	SourceURL  *string  `json:"source_url,omitempty"`
	IsPinned   bool     `json:"is_pinned"`
	Tags       []string `json:"tags,omitempty"` // Tag names, normalized on apply
	SourceType string   `json:"-"`              // Set by the import path, manual otherwise
}

// Validate checks the request shape. Tag names are checked as they will be stored.
func (r CreateDocumentRequest) Validate() error {
	r.Tags = NormalizeTagNames(r.Tags)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&r.DocType, validation.RuneLength(0, config.MaxDocTypeLength)),
		validation.Field(&r.SourceURL, validation.RuneLength(0, config.MaxSourceURLLength), is.URL),
		validation.Field(&r.Tags, validation.Each(validation.RuneLength(0, config.MaxTagNameLength))),
	)
}

// OptionalString tracks tri-state PATCH semantics without any JSON coupling.
// The handler maps it from httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (clear)
//   - Present=true, Value=&"x": set
type OptionalString struct {
	Present bool
	Value   *string
}

// UpdateDocumentRequest represents a partial document update.
// Nil pointers leave the field unchanged; a non-nil Tags replaces the tag set (empty clears it).
type UpdateDocumentRequest struct {
	Title      *string
	Content    *string
	DocType    *string
	SourceURL  OptionalString
	IsPinned   *bool
	IsArchived *bool
	Tags       *[]string
}

// Validate checks the request shape
func (r UpdateDocumentRequest) Validate() error {
	errs := validation.Errors{
		"title":      validation.Validate(r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, config.MaxTitleLength)),
		"doc_type":   validation.Validate(r.DocType, validation.NilOrNotEmpty, validation.RuneLength(1, config.MaxDocTypeLength)),
		"source_url": validation.Validate(r.SourceURL.Value, validation.RuneLength(0, config.MaxSourceURLLength), is.URL),
	}
	if r.Tags != nil {
		errs["tags"] = validation.Validate(NormalizeTagNames(*r.Tags), validation.Each(validation.RuneLength(0, config.MaxTagNameLength)))
	}
	return errs.Filter()
}

// NormalizeTagNames trims and lowercases names, dropping empties and duplicates.
// Order of first appearance is kept.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, name)
	}
	return normalized
}
