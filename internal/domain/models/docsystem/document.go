package docsystem

import (
	"time"

	"vault/internal/domain/models"
)

// Document defaults
const (
	DefaultDocType    = "note"
	SourceTypeManual  = "manual"
	SourceTypeImport  = "import"
	DefaultImportance = 0.5
)

// Document is a single owned piece of content.
// Every read or write must be checked against UserID.
type Document struct {
	models.Base
	UserID          string         `json:"user_id" db:"user_id"`
	Title           string         `json:"title" db:"title"`
	ContentRaw      string         `json:"content" db:"content_raw"`       // As submitted (markdown)
	ContentHTML     string         `json:"content_html" db:"content_html"` // Rendered and sanitized
	ContentPlain    string         `json:"-" db:"content_plain"`           // Searchable text
	DocType         string         `json:"doc_type" db:"doc_type"`         // note, bookmark, article, ...
	SourceType      string         `json:"source_type" db:"source_type"`   // manual, import
	SourceURL       *string        `json:"source_url" db:"source_url"`
	Metadata        models.JSONMap `json:"metadata" db:"metadata"`
	ImportanceScore float64        `json:"importance_score" db:"importance_score"`
	SourceDate      *time.Time     `json:"source_date" db:"source_date"`
	LastAccessed    *time.Time     `json:"last_accessed" db:"last_accessed"`
	IsArchived      bool           `json:"is_archived" db:"is_archived"`
	IsPinned        bool           `json:"is_pinned" db:"is_pinned"`
	IsProcessed     bool           `json:"is_processed" db:"is_processed"`
	Tags            []string       `json:"tags" db:"-"` // Loaded from document_tags, sorted by name
}

// OwnedBy reports whether the document belongs to the given user
func (d *Document) OwnedBy(userID string) bool {
	return d.UserID == userID
}
