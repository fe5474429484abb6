package docsystem

import (
	"strings"
	"testing"
	"time"

	models "vault/internal/domain/models/docsystem"
	"vault/internal/repository/postgres"

	"github.com/stretchr/testify/assert"
)

func TestBuildListConditions(t *testing.T) {
	tables := postgres.NewTableNames("test_")
	pinned := true
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		filter     *models.DocumentFilter
		contains   []string
		argCount   int
		firstExtra interface{}
	}{
		{
			name:     "owner and archived only",
			filter:   &models.DocumentFilter{UserID: "u1"},
			contains: []string{"d.user_id = $1", "d.is_archived = $2"},
			argCount: 2,
		},
		{
			name:       "query is escaped and shared by both columns",
			filter:     &models.DocumentFilter{UserID: "u1", Query: "50%_off"},
			contains:   []string{"(d.title ILIKE $3 OR d.content_plain ILIKE $3)"},
			argCount:   3,
			firstExtra: `%50\%\_off%`,
		},
		{
			name:       "pinned and date range",
			filter:     &models.DocumentFilter{UserID: "u1", IsPinned: &pinned, DateFrom: &from, DateTo: &from},
			contains:   []string{"d.is_pinned = $3", "d.created_at >= $4", "d.created_at <= $5"},
			argCount:   5,
			firstExtra: true,
		},
		{
			name:     "tags require every name",
			filter:   &models.DocumentFilter{UserID: "u1", DocType: "note", Tags: []string{"idea", "draft"}},
			contains: []string{"d.doc_type = $3", "test_document_tags dt", "t.name = ANY($4)", "HAVING COUNT(DISTINCT t.name) = $5"},
			argCount: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildListConditions(tables, tt.filter)

			for _, fragment := range tt.contains {
				assert.Contains(t, where, fragment)
			}
			assert.Len(t, args, tt.argCount)
			assert.Equal(t, "u1", args[0])
			assert.Equal(t, false, args[1])
			if tt.firstExtra != nil {
				assert.Equal(t, tt.firstExtra, args[2])
			}
		})
	}
}

func TestBuildListConditionsArchivedOnly(t *testing.T) {
	archived := true
	_, args := buildListConditions(postgres.NewTableNames(""), &models.DocumentFilter{UserID: "u1", IsArchived: &archived})

	assert.Equal(t, true, args[1])
}

func TestBuildListConditionsNeverInterpolatesValues(t *testing.T) {
	filter := &models.DocumentFilter{
		UserID:  "u1",
		Query:   "'; DROP TABLE users; --",
		DocType: "note' OR '1'='1",
		Tags:    []string{"x'); DELETE FROM tags; --"},
	}

	where, _ := buildListConditions(postgres.NewTableNames(""), filter)

	assert.False(t, strings.Contains(where, "DROP"))
	assert.False(t, strings.Contains(where, "'1'='1"))
	assert.False(t, strings.Contains(where, "DELETE"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
