package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"vault/internal/domain"
	"vault/internal/domain/models/docsystem"
	docsysRepo "vault/internal/domain/repositories/docsystem"
)

// DocumentRepository implements docsystem.DocumentRepository
type DocumentRepository struct {
	store *Store
}

// NewDocumentRepository creates a document repository over store
func NewDocumentRepository(store *Store) docsysRepo.DocumentRepository {
	return &DocumentRepository{store: store}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *docsystem.Document) error {
	defer r.store.lockWrite(ctx)()

	if _, ok := r.store.data.users[doc.UserID]; !ok {
		return fmt.Errorf("document owner %s: %w", doc.UserID, domain.ErrNotFound)
	}

	r.store.data.documents[doc.ID] = copyDocument(*doc)
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*docsystem.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	doc, ok := r.store.data.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc = copyDocument(doc)
	return &doc, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *docsystem.Document) error {
	defer r.store.lockWrite(ctx)()

	existing, ok := r.store.data.documents[doc.ID]
	if !ok || existing.UserID != doc.UserID {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	updated := copyDocument(*doc)
	// Columns Update never writes
	updated.SourceType = existing.SourceType
	updated.SourceDate = existing.SourceDate
	updated.LastAccessed = existing.LastAccessed
	updated.CreatedAt = existing.CreatedAt
	r.store.data.documents[doc.ID] = updated
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id, userID string) error {
	defer r.store.lockWrite(ctx)()

	doc, ok := r.store.data.documents[id]
	if !ok || doc.UserID != userID {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	delete(r.store.data.documents, id)
	for key := range r.store.data.links {
		if key.documentID == id {
			delete(r.store.data.links, key)
		}
	}
	return nil
}

func (r *DocumentRepository) TouchLastAccessed(ctx context.Context, id string, at time.Time) error {
	defer r.store.lockWrite(ctx)()

	doc, ok := r.store.data.documents[id]
	if !ok {
		return nil
	}
	doc.LastAccessed = &at
	r.store.data.documents[id] = doc
	return nil
}

func (r *DocumentRepository) List(ctx context.Context, f *docsystem.DocumentFilter) ([]docsystem.Document, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []docsystem.Document
	for _, doc := range r.store.data.documents {
		if r.matches(&doc, f) {
			matched = append(matched, copyDocument(doc))
		}
	}

	sortDocuments(matched, f.SortColumn(), f.SortDirection() == "ASC")

	total := len(matched)
	start := min(f.Offset(), total)
	end := start + min(max(f.Limit, 0), total-start)
	page := matched[start:end]
	if page == nil {
		page = []docsystem.Document{}
	}
	return page, total, nil
}

func (r *DocumentRepository) Stats(ctx context.Context, userID string) (*docsystem.Stats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var stats docsystem.Stats
	for _, doc := range r.store.data.documents {
		if doc.UserID != userID {
			continue
		}
		stats.DocumentsCount++
		if doc.IsArchived {
			stats.ArchivedCount++
		} else if doc.IsPinned {
			stats.PinnedCount++
		}
	}
	for _, tag := range r.store.data.tags {
		if tag.UserID == userID {
			stats.TagsCount++
		}
	}
	return &stats, nil
}

// matches applies the listing predicates; caller holds the read lock
func (r *DocumentRepository) matches(doc *docsystem.Document, f *docsystem.DocumentFilter) bool {
	if doc.UserID != f.UserID || doc.IsArchived != f.ArchivedValue() {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(doc.Title), q) && !strings.Contains(strings.ToLower(doc.ContentPlain), q) {
			return false
		}
	}
	if f.DocType != "" && doc.DocType != f.DocType {
		return false
	}
	if f.IsPinned != nil && doc.IsPinned != *f.IsPinned {
		return false
	}
	if f.DateFrom != nil && doc.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && doc.CreatedAt.After(*f.DateTo) {
		return false
	}
	if len(f.Tags) > 0 {
		names := r.tagNames(doc.ID)
		for _, want := range f.Tags {
			if !slices.Contains(names, want) {
				return false
			}
		}
	}
	return true
}

func (r *DocumentRepository) tagNames(documentID string) []string {
	var names []string
	for key := range r.store.data.links {
		if key.documentID == documentID {
			names = append(names, r.store.data.tags[key.tagID].Name)
		}
	}
	return names
}

func sortDocuments(docs []docsystem.Document, column string, asc bool) {
	slices.SortFunc(docs, func(a, b docsystem.Document) int {
		var c int
		switch column {
		case "title":
			c = strings.Compare(a.Title, b.Title)
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if !asc {
			c = -c
		}
		return c
	})
}

func copyDocument(doc docsystem.Document) docsystem.Document {
	doc.Metadata = cloneMap(doc.Metadata)
	doc.Tags = nil
	return doc
}
