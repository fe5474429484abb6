package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"vault/internal/domain"
	"vault/internal/domain/models"
	"vault/internal/domain/models/docsystem"
	docsysRepo "vault/internal/domain/repositories/docsystem"
)

// TagRepository implements docsystem.TagRepository
type TagRepository struct {
	store *Store
}

// NewTagRepository creates a tag repository over store
func NewTagRepository(store *Store) docsysRepo.TagRepository {
	return &TagRepository{store: store}
}

func (r *TagRepository) FindOrCreate(ctx context.Context, userID, name, color string) (*docsystem.Tag, error) {
	defer r.store.lockWrite(ctx)()

	for _, tag := range r.store.data.tags {
		if tag.UserID == userID && tag.Name == name {
			return &tag, nil
		}
	}

	tag := docsystem.Tag{
		Base:   models.NewBase(time.Now().UTC()),
		UserID: userID,
		Name:   name,
		Color:  color,
	}
	r.store.data.tags[tag.ID] = tag
	return &tag, nil
}

func (r *TagRepository) GetByID(ctx context.Context, id string) (*docsystem.Tag, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tag, ok := r.store.data.tags[id]
	if !ok {
		return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	return &tag, nil
}

func (r *TagRepository) ListByUser(ctx context.Context, userID string) ([]docsystem.Tag, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tags := []docsystem.Tag{}
	for _, tag := range r.store.data.tags {
		if tag.UserID != userID {
			continue
		}
		for key := range r.store.data.links {
			if key.tagID == tag.ID {
				tag.DocumentCount++
			}
		}
		tags = append(tags, tag)
	}

	slices.SortFunc(tags, func(a, b docsystem.Tag) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return tags, nil
}

func (r *TagRepository) Update(ctx context.Context, tag *docsystem.Tag) error {
	defer r.store.lockWrite(ctx)()

	existing, ok := r.store.data.tags[tag.ID]
	if !ok || existing.UserID != tag.UserID {
		return fmt.Errorf("tag %s: %w", tag.ID, domain.ErrNotFound)
	}
	for id, other := range r.store.data.tags {
		if id != tag.ID && other.UserID == tag.UserID && other.Name == tag.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tag '%s' already exists", tag.Name),
				ResourceType: "tag",
				Field:        "name",
			}
		}
	}

	existing.Name = tag.Name
	existing.Color = tag.Color
	existing.UpdatedAt = tag.UpdatedAt
	r.store.data.tags[tag.ID] = existing
	return nil
}

func (r *TagRepository) Delete(ctx context.Context, id, userID string) error {
	defer r.store.lockWrite(ctx)()

	tag, ok := r.store.data.tags[id]
	if !ok || tag.UserID != userID {
		return fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}

	delete(r.store.data.tags, id)
	for key := range r.store.data.links {
		if key.tagID == id {
			delete(r.store.data.links, key)
		}
	}
	return nil
}

func (r *TagRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, tag := range r.store.data.tags {
		if tag.UserID == userID {
			count++
		}
	}
	return count, nil
}

// LockDocument only checks existence; units of work on the store already run one at a time
func (r *TagRepository) LockDocument(ctx context.Context, documentID string) error {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.data.documents[documentID]; !ok {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return nil
}

func (r *TagRepository) DeleteDocumentTags(ctx context.Context, documentID string) error {
	defer r.store.lockWrite(ctx)()

	for key := range r.store.data.links {
		if key.documentID == documentID {
			delete(r.store.data.links, key)
		}
	}
	return nil
}

func (r *TagRepository) AddDocumentTag(ctx context.Context, link *docsystem.DocumentTag) error {
	defer r.store.lockWrite(ctx)()

	_, docOK := r.store.data.documents[link.DocumentID]
	_, tagOK := r.store.data.tags[link.TagID]
	if !docOK || !tagOK {
		return fmt.Errorf("document %s or tag %s: %w", link.DocumentID, link.TagID, domain.ErrNotFound)
	}

	key := linkKey{documentID: link.DocumentID, tagID: link.TagID}
	if _, exists := r.store.data.links[key]; !exists {
		r.store.data.links[key] = *link
	}
	return nil
}

func (r *TagRepository) ListNamesByDocuments(ctx context.Context, documentIDs []string) (map[string][]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	names := make(map[string][]string, len(documentIDs))
	for key := range r.store.data.links {
		if slices.Contains(documentIDs, key.documentID) {
			names[key.documentID] = append(names[key.documentID], r.store.data.tags[key.tagID].Name)
		}
	}
	for id := range names {
		slices.Sort(names[id])
	}
	return names, nil
}
