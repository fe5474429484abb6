package auth

import (
	"context"
	"fmt"

	"vault/internal/domain"
	"vault/internal/domain/models/docsystem"
	docsystemRepo "vault/internal/domain/repositories/docsystem"
	"vault/internal/domain/services"

	"github.com/google/uuid"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using single-owner checks.
// Resources are loaded without owner scoping so that a missing resource (404) and a
// foreign one (403) stay distinguishable.
type OwnerBasedAuthorizer struct {
	docRepo docsystemRepo.DocumentRepository
	tagRepo docsystemRepo.TagRepository
}

var _ services.ResourceAuthorizer = (*OwnerBasedAuthorizer)(nil)

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	docRepo docsystemRepo.DocumentRepository,
	tagRepo docsystemRepo.TagRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		docRepo: docRepo,
		tagRepo: tagRepo,
	}
}

// CanAccessDocument returns the document if userID owns it
func (a *OwnerBasedAuthorizer) CanAccessDocument(ctx context.Context, userID, documentID string) (*docsystem.Document, error) {
	if err := checkID(documentID); err != nil {
		return nil, fmt.Errorf("document %q: %w", documentID, err)
	}

	doc, err := a.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document for auth: %w", err)
	}

	if !doc.OwnedBy(userID) {
		return nil, fmt.Errorf("access denied to document %s: %w", documentID, domain.ErrForbidden)
	}
	return doc, nil
}

// CanAccessTag returns the tag if userID owns it
func (a *OwnerBasedAuthorizer) CanAccessTag(ctx context.Context, userID, tagID string) (*docsystem.Tag, error) {
	if err := checkID(tagID); err != nil {
		return nil, fmt.Errorf("tag %q: %w", tagID, err)
	}

	tag, err := a.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("get tag for auth: %w", err)
	}

	if tag.UserID != userID {
		return nil, fmt.Errorf("access denied to tag %s: %w", tagID, domain.ErrForbidden)
	}
	return tag, nil
}

// checkID rejects ids that cannot name a row; ids are UUID columns
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return nil
}
