package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vault/internal/domain"
	models "vault/internal/domain/models/docsystem"
	docsysRepo "vault/internal/domain/repositories/docsystem"
	"vault/internal/repository/postgres"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `id, user_id, title, content_raw, content_html, content_plain, doc_type, source_type,
	source_url, metadata, importance_score, source_date, last_accessed, is_archived, is_pinned,
	is_processed, created_at, updated_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) docsysRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, r.tables.Documents, documentColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Title,
		doc.ContentRaw,
		doc.ContentHTML,
		doc.ContentPlain,
		doc.DocType,
		doc.SourceType,
		doc.SourceURL,
		doc.Metadata,
		doc.ImportanceScore,
		doc.SourceDate,
		doc.LastAccessed,
		doc.IsArchived,
		doc.IsPinned,
		doc.IsProcessed,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document owner %s: %w", doc.UserID, domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID regardless of owner
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, documentColumns, r.tables.Documents)

	var doc models.Document
	if err := pgxscan.Get(ctx, postgres.GetExecutor(ctx, r.pool), &doc, query, id); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// Update persists every mutable column of an existing document
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content_raw = $2, content_html = $3, content_plain = $4, doc_type = $5,
		    source_url = $6, metadata = $7, importance_score = $8, is_archived = $9, is_pinned = $10,
		    is_processed = $11, updated_at = $12
		WHERE id = $13 AND user_id = $14
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.Title,
		doc.ContentRaw,
		doc.ContentHTML,
		doc.ContentPlain,
		doc.DocType,
		doc.SourceURL,
		doc.Metadata,
		doc.ImportanceScore,
		doc.IsArchived,
		doc.IsPinned,
		doc.IsProcessed,
		doc.UpdatedAt,
		doc.ID,
		doc.UserID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete hard-deletes a document owned by userID
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// TouchLastAccessed sets last_accessed without bumping updated_at
func (r *PostgresDocumentRepository) TouchLastAccessed(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET last_accessed = $1 WHERE id = $2`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, at, id); err != nil {
		return fmt.Errorf("touch document: %w", err)
	}
	return nil
}

// List returns one page of the user's documents and the total match count
func (r *PostgresDocumentRepository) List(ctx context.Context, filter *models.DocumentFilter) ([]models.Document, int, error) {
	where, args := buildListConditions(r.tables, filter)
	executor := postgres.GetExecutor(ctx, r.pool)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s d WHERE %s`, r.tables.Documents, where)
	var total int
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	if total == 0 {
		return []models.Document{}, 0, nil
	}

	// id breaks ties so pages never overlap
	listQuery := fmt.Sprintf(`
		SELECT %s FROM %s d
		WHERE %s
		ORDER BY d.%s %s, d.id %s
		LIMIT $%d OFFSET $%d
	`, documentColumns, r.tables.Documents, where,
		filter.SortColumn(), filter.SortDirection(), filter.SortDirection(),
		len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	var docs []models.Document
	if err := pgxscan.Select(ctx, executor, &docs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	if docs == nil {
		docs = []models.Document{}
	}

	return docs, total, nil
}

// Stats counts the user's documents and tags
func (r *PostgresDocumentRepository) Stats(ctx context.Context, userID string) (*models.Stats, error) {
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS documents_count,
			COUNT(*) FILTER (WHERE is_archived) AS archived_count,
			COUNT(*) FILTER (WHERE is_pinned AND NOT is_archived) AS pinned_count,
			(SELECT COUNT(*) FROM %s WHERE user_id = $1) AS tags_count
		FROM %s
		WHERE user_id = $1
	`, r.tables.Tags, r.tables.Documents)

	var stats models.Stats
	if err := pgxscan.Get(ctx, postgres.GetExecutor(ctx, r.pool), &stats, query, userID); err != nil {
		return nil, fmt.Errorf("document stats: %w", err)
	}
	return &stats, nil
}

// buildListConditions builds the WHERE clause of a listing and its positional arguments.
// The documents table is aliased as d. Only values travel as arguments; column names
// and sort direction come from allow-lists on the filter.
func buildListConditions(tables *postgres.TableNames, f *models.DocumentFilter) (string, []interface{}) {
	conditions := []string{"d.user_id = $1", "d.is_archived = $2"}
	args := []interface{}{f.UserID, f.ArchivedValue()}
	paramIndex := 3

	if f.Query != "" {
		conditions = append(conditions,
			fmt.Sprintf("(d.title ILIKE $%d OR d.content_plain ILIKE $%d)", paramIndex, paramIndex))
		args = append(args, "%"+escapeLike(f.Query)+"%")
		paramIndex++
	}

	if f.DocType != "" {
		conditions = append(conditions, fmt.Sprintf("d.doc_type = $%d", paramIndex))
		args = append(args, f.DocType)
		paramIndex++
	}

	if f.IsPinned != nil {
		conditions = append(conditions, fmt.Sprintf("d.is_pinned = $%d", paramIndex))
		args = append(args, *f.IsPinned)
		paramIndex++
	}

	if f.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("d.created_at >= $%d", paramIndex))
		args = append(args, *f.DateFrom)
		paramIndex++
	}

	if f.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("d.created_at <= $%d", paramIndex))
		args = append(args, *f.DateTo)
		paramIndex++
	}

	if len(f.Tags) > 0 {
		// Documents carrying every listed tag
		conditions = append(conditions, fmt.Sprintf(`d.id IN (
			SELECT dt.document_id
			FROM %s dt
			JOIN %s t ON t.id = dt.tag_id
			WHERE t.user_id = $1 AND t.name = ANY($%d)
			GROUP BY dt.document_id
			HAVING COUNT(DISTINCT t.name) = $%d
		)`, tables.DocumentTags, tables.Tags, paramIndex, paramIndex+1))
		args = append(args, f.Tags, len(f.Tags))
	}

	return strings.Join(conditions, " AND "), args
}

// escapeLike escapes ILIKE wildcards so the query matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
