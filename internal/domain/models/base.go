package models

import (
	"time"

	"github.com/google/uuid"
)

// Base holds the identity and timestamp columns shared by every persisted entity.
// Entities embed it rather than repeating the fields.
type Base struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewBase returns a Base with a fresh UUID and both timestamps set to now
func NewBase(now time.Time) Base {
	return Base{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps the updated timestamp
func (b *Base) Touch(now time.Time) {
	b.UpdatedAt = now
}
