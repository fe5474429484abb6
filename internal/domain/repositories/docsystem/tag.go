package docsystem

import (
	"context"

	"vault/internal/domain/models/docsystem"
)

// TagRepository defines data access operations for tags and document-tag links
type TagRepository interface {
	// FindOrCreate returns the user's tag with this name, inserting it if missing.
	// Relies on the (user_id, name) unique constraint so concurrent callers never create duplicates.
	FindOrCreate(ctx context.Context, userID, name, color string) (*docsystem.Tag, error)

	// GetByID retrieves a tag by ID regardless of owner
	GetByID(ctx context.Context, id string) (*docsystem.Tag, error)

	// ListByUser lists the user's tags ordered by name, with document counts
	ListByUser(ctx context.Context, userID string) ([]docsystem.Tag, error)

	// Update persists name, color and updated_at
	Update(ctx context.Context, tag *docsystem.Tag) error

	// Delete removes a tag owned by userID together with its links
	Delete(ctx context.Context, id, userID string) error

	// CountByUser counts the user's tags
	CountByUser(ctx context.Context, userID string) (int, error)

	// LockDocument locks the document row until the surrounding transaction ends,
	// so reconciliations of one document run one at a time.
	// Returns ErrNotFound when the document does not exist.
	LockDocument(ctx context.Context, documentID string) error

	// DeleteDocumentTags removes every link of a document
	DeleteDocumentTags(ctx context.Context, documentID string) error

	// AddDocumentTag links a document to a tag; an existing identical link is left untouched
	AddDocumentTag(ctx context.Context, link *docsystem.DocumentTag) error

	// ListNamesByDocuments returns the sorted tag names of each document
	ListNamesByDocuments(ctx context.Context, documentIDs []string) (map[string][]string, error)
}
