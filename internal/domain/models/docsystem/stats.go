package docsystem

// Stats summarizes a user's vault
type Stats struct {
	DocumentsCount int `json:"documents_count" db:"documents_count"`
	ArchivedCount  int `json:"archived_count" db:"archived_count"`
	PinnedCount    int `json:"pinned_count" db:"pinned_count"`
	TagsCount      int `json:"tags_count" db:"tags_count"`
}
