package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"vault/internal/domain"
	models "vault/internal/domain/models/docsystem"
	docsysRepo "vault/internal/domain/repositories/docsystem"
	"vault/internal/repository/postgres"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tagColumns = `id, user_id, name, color, is_auto, created_at, updated_at`

// PostgresTagRepository implements the TagRepository interface
type PostgresTagRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *postgres.RepositoryConfig) docsysRepo.TagRepository {
	return &PostgresTagRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// FindOrCreate returns the user's tag with this name, inserting it if missing.
// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
func (r *PostgresTagRepository) FindOrCreate(ctx context.Context, userID, name, color string) (*models.Tag, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, color, is_auto, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING %s
	`, r.tables.Tags, tagColumns)

	var tag models.Tag
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := pgxscan.Get(ctx, executor, &tag, query, uuid.NewString(), userID, name, color); err != nil {
		return nil, fmt.Errorf("find or create tag %q: %w", name, err)
	}

	return &tag, nil
}

// GetByID retrieves a tag by ID regardless of owner
func (r *PostgresTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, tagColumns, r.tables.Tags)

	var tag models.Tag
	if err := pgxscan.Get(ctx, postgres.GetExecutor(ctx, r.pool), &tag, query, id); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}

	return &tag, nil
}

// ListByUser lists the user's tags ordered by name with document counts
func (r *PostgresTagRepository) ListByUser(ctx context.Context, userID string) ([]models.Tag, error) {
	query := fmt.Sprintf(`
		SELECT t.id, t.user_id, t.name, t.color, t.is_auto, t.created_at, t.updated_at,
		       COUNT(dt.document_id) AS document_count
		FROM %s t
		LEFT JOIN %s dt ON dt.tag_id = t.id
		WHERE t.user_id = $1
		GROUP BY t.id
		ORDER BY t.name
	`, r.tables.Tags, r.tables.DocumentTags)

	var tags []models.Tag
	if err := pgxscan.Select(ctx, postgres.GetExecutor(ctx, r.pool), &tags, query, userID); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// Update persists name, color and updated_at
func (r *PostgresTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	query := fmt.Sprintf(`
		UPDATE %s SET name = $1, color = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, tag.Name, tag.Color, tag.UpdatedAt, tag.ID, tag.UserID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tag '%s' already exists", tag.Name),
				ResourceType: "tag",
				Field:        "name",
			}
		}
		return fmt.Errorf("update tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("tag %s: %w", tag.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a tag owned by userID; links go with it through the cascade
func (r *PostgresTagRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CountByUser counts the user's tags
func (r *PostgresTagRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1`, r.tables.Tags)

	var count int
	if err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return count, nil
}

// LockDocument takes a row lock on the parent document. Without it two concurrent
// reconciliations under READ COMMITTED can each miss the other's new links.
func (r *PostgresTagRepository) LockDocument(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE id = $1 FOR UPDATE`, r.tables.Documents)

	var one int
	if err := postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, documentID).Scan(&one); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}
		return fmt.Errorf("lock document: %w", err)
	}
	return nil
}

// DeleteDocumentTags removes every link of a document
func (r *PostgresTagRepository) DeleteDocumentTags(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, r.tables.DocumentTags)

	if _, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete document tags: %w", err)
	}
	return nil
}

// AddDocumentTag links a document to a tag, leaving an existing link untouched
func (r *PostgresTagRepository) AddDocumentTag(ctx context.Context, link *models.DocumentTag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, tag_id, confidence, is_auto, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (document_id, tag_id) DO NOTHING
	`, r.tables.DocumentTags)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, link.DocumentID, link.TagID, link.Confidence, link.IsAuto, link.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s or tag %s: %w", link.DocumentID, link.TagID, domain.ErrNotFound)
		}
		return fmt.Errorf("add document tag: %w", err)
	}
	return nil
}

// ListNamesByDocuments returns the sorted tag names of each document
func (r *PostgresTagRepository) ListNamesByDocuments(ctx context.Context, documentIDs []string) (map[string][]string, error) {
	names := make(map[string][]string, len(documentIDs))
	if len(documentIDs) == 0 {
		return names, nil
	}

	query := fmt.Sprintf(`
		SELECT dt.document_id, t.name
		FROM %s dt
		JOIN %s t ON t.id = dt.tag_id
		WHERE dt.document_id = ANY($1)
		ORDER BY t.name
	`, r.tables.DocumentTags, r.tables.Tags)

	var rows []struct {
		DocumentID string `db:"document_id"`
		Name       string `db:"name"`
	}
	if err := pgxscan.Select(ctx, postgres.GetExecutor(ctx, r.pool), &rows, query, documentIDs); err != nil {
		return nil, fmt.Errorf("list document tags: %w", err)
	}

	for _, row := range rows {
		names[row.DocumentID] = append(names[row.DocumentID], row.Name)
	}
	for id := range names {
		sort.Strings(names[id])
	}
	return names, nil
}
