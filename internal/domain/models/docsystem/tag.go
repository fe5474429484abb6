package docsystem

import (
	"time"

	"vault/internal/domain/models"
)

// DefaultTagColor is assigned to tags created without an explicit color
const DefaultTagColor = "#6366f1"

// Tag is a label owned by one user. Name is unique per owner and stored lowercase.
type Tag struct {
	models.Base
	UserID        string `json:"user_id" db:"user_id"`
	Name          string `json:"name" db:"name"`
	Color         string `json:"color" db:"color"`
	IsAuto        bool   `json:"is_auto" db:"is_auto"`
	DocumentCount int    `json:"document_count" db:"document_count"` // Only populated by listings
}

// DocumentTag links a document to a tag of the same owner
type DocumentTag struct {
	DocumentID string    `json:"document_id" db:"document_id"`
	TagID      string    `json:"tag_id" db:"tag_id"`
	Confidence float64   `json:"confidence" db:"confidence"`
	IsAuto     bool      `json:"is_auto" db:"is_auto"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
