package docsystem

import (
	"context"
	"regexp"

	"vault/internal/config"
	"vault/internal/domain/models/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// TagReconciler replaces a document's tag set
type TagReconciler interface {
	// Apply makes the document's tags exactly the normalized desired names, creating missing tags
	// for the owner. Runs in one transaction; returns the applied names sorted.
	Apply(ctx context.Context, documentID, userID string, names []string) ([]string, error)
}

// TagService manages a user's tags outside of any single document
type TagService interface {
	// ListTags lists the user's tags with document counts
	ListTags(ctx context.Context, userID string) ([]docsystem.Tag, error)

	// UpdateTag renames or recolors a tag
	UpdateTag(ctx context.Context, userID, tagID string, req *UpdateTagRequest) (*docsystem.Tag, error)

	// DeleteTag removes a tag from every document and deletes it
	DeleteTag(ctx context.Context, userID, tagID string) error
}

// UpdateTagRequest supports partial updates via pointers
type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// Validate checks the request shape
func (r UpdateTagRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.RuneLength(1, config.MaxTagNameLength)),
		validation.Field(&r.Color, validation.NilOrNotEmpty, validation.Match(hexColorPattern).Error("must be a hex color like #6366f1")),
	)
}
