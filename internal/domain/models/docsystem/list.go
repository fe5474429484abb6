package docsystem

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default listing configuration values
const (
	DefaultPage      = 1
	DefaultPageSize  = 20
	MaxPageSize      = 100
	MaxPage          = 1_000_000 // keeps (page-1)*limit far from int overflow
	DefaultSortField = "updated_at"
	DefaultSortOrder = SortOrderDesc
)

// Sort directions
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// sortableColumns is the allow-list of fields a listing may be ordered by.
// Keys are request values, values are the column names passed to storage.
var sortableColumns = map[string]string{
	"updated_at": "updated_at",
	"created_at": "created_at",
	"title":      "title",
}

// DocumentFilter configures an ownership-scoped document listing
type DocumentFilter struct {
	// UserID scopes the listing to one owner (required, set from the authenticated user)
	UserID string

	// Query is a case-insensitive substring matched against title or plain content
	Query string

	// DocType filters by exact document type
	DocType string

	// Tags keeps only documents carrying every listed tag name
	Tags []string

	// IsPinned and IsArchived filter by flag when non-nil.
	// A nil IsArchived excludes archived documents.
	IsPinned   *bool
	IsArchived *bool

	// DateFrom and DateTo bound created_at inclusively
	DateFrom *time.Time
	DateTo   *time.Time

	// SortBy must be one of updated_at, created_at, title; anything else falls back to updated_at
	SortBy string

	// SortOrder is asc or desc; anything else falls back to desc
	SortOrder string

	// Pagination (1-indexed)
	Page  int
	Limit int
}

// ApplyDefaults fills in default values for unset fields
func (f *DocumentFilter) ApplyDefaults() {
	if f.Page == 0 {
		f.Page = DefaultPage
	}
	if f.Limit == 0 {
		f.Limit = DefaultPageSize
	}
	if f.SortBy == "" {
		f.SortBy = DefaultSortField
	}
	if f.SortOrder == "" {
		f.SortOrder = DefaultSortOrder
	}
	f.Query = strings.TrimSpace(f.Query)
}

// Validate checks pagination bounds. Page is capped at MaxPage.
// Sort parameters are never rejected, see SortColumn and SortDirection.
func (f DocumentFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.UserID, validation.Required),
		validation.Field(&f.Page, validation.Min(1), validation.Max(MaxPage)),
		validation.Field(&f.Limit, validation.Min(1), validation.Max(MaxPageSize)),
	)
}

// SortColumn returns the allow-listed column to order by
func (f DocumentFilter) SortColumn() string {
	if column, ok := sortableColumns[strings.ToLower(strings.TrimSpace(f.SortBy))]; ok {
		return column
	}
	return sortableColumns[DefaultSortField]
}

// SortDirection returns ASC or DESC
func (f DocumentFilter) SortDirection() string {
	if strings.EqualFold(strings.TrimSpace(f.SortOrder), SortOrderAsc) {
		return "ASC"
	}
	return "DESC"
}

// Offset is the number of rows skipped for the current page.
// Out-of-range pages are clamped to [1, MaxPage] so the result never overflows.
func (f DocumentFilter) Offset() int {
	page := min(max(f.Page, 1), MaxPage)
	limit := min(max(f.Limit, 0), MaxPageSize)
	return (page - 1) * limit
}

// ArchivedValue resolves the archived filter, defaulting to false
func (f DocumentFilter) ArchivedValue() bool {
	if f.IsArchived == nil {
		return false
	}
	return *f.IsArchived
}

// DocumentPage is one page of a listing with pagination metadata
type DocumentPage struct {
	Items []Document `json:"items"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Pages int        `json:"pages"`
}

// NewDocumentPage creates a DocumentPage with the page count derived from total
func NewDocumentPage(items []Document, total int, f *DocumentFilter) *DocumentPage {
	if items == nil {
		items = []Document{}
	}
	return &DocumentPage{
		Items: items,
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
		Pages: PageCount(total, f.Limit),
	}
}

// PageCount returns ceil(total / limit)
func PageCount(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
