package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// tablePrefixEnv is substituted into the migration files by goose ENVSUB
const tablePrefixEnv = "VAULT_TABLE_PREFIX"

// MigrationDirection selects what Migrate does
type MigrationDirection string

const (
	MigrateUp     MigrationDirection = "up"
	MigrateDown   MigrationDirection = "down"
	MigrateStatus MigrationDirection = "status"
)

// Migrate runs the embedded goose migrations against the pool for the given table prefix.
// Each prefix keeps its own goose version table so environments sharing a database stay independent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, direction MigrationDirection) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	return migrate(ctx, db, tables.Prefix, direction)
}

func migrate(ctx context.Context, db *sql.DB, prefix string, direction MigrationDirection) error {
	if err := os.Setenv(tablePrefixEnv, prefix); err != nil {
		return fmt.Errorf("set migration prefix: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(prefix + "goose_db_version")
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	var err error
	switch direction {
	case MigrateUp:
		err = goose.UpContext(ctx, db, "migrations")
	case MigrateDown:
		err = goose.DownContext(ctx, db, "migrations")
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, "migrations")
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	return nil
}
