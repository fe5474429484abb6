package docsystem

import (
	"context"
	"time"

	"vault/internal/domain/models/docsystem"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	// Create inserts a new document
	Create(ctx context.Context, doc *docsystem.Document) error

	// GetByID retrieves a document by ID regardless of owner.
	// Ownership is checked by the caller so that a foreign document and a missing one stay distinguishable.
	GetByID(ctx context.Context, id string) (*docsystem.Document, error)

	// Update persists every mutable column of an existing document
	Update(ctx context.Context, doc *docsystem.Document) error

	// Delete hard-deletes a document owned by userID.
	// Tag associations are removed by the foreign key cascade.
	Delete(ctx context.Context, id, userID string) error

	// TouchLastAccessed sets last_accessed without bumping updated_at
	TouchLastAccessed(ctx context.Context, id string, at time.Time) error

	// List returns one page of documents matching the filter and the total match count before pagination
	List(ctx context.Context, filter *docsystem.DocumentFilter) ([]docsystem.Document, int, error)

	// Stats counts the user's documents
	Stats(ctx context.Context, userID string) (*docsystem.Stats, error)
}
