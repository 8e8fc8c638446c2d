package seojobinfra

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every embedded migration not yet recorded in
// seo_schema_migrations, each in its own transaction.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS seo_schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return ErrRegistry.NewWithCause(CodeMigrationFailed, err).WithDetail("step", "bootstrap")
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return ErrRegistry.NewWithCause(CodeMigrationFailed, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if err := applyMigration(ctx, db, entry.Name()); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sqlx.DB, name string) error {
	version, err := parseMigrationVersion(name)
	if err != nil {
		return ErrRegistry.NewWithCause(CodeMigrationFailed, err).WithDetail("file", name)
	}

	var applied bool
	if err := db.GetContext(ctx, &applied,
		`SELECT EXISTS (SELECT 1 FROM seo_schema_migrations WHERE version = $1)`, version); err != nil {
		return ErrRegistry.NewWithCause(CodeMigrationFailed, err).WithDetail("version", version)
	}
	if applied {
		return nil
	}

	content, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return ErrRegistry.NewWithCause(CodeMigrationFailed, err).WithDetail("file", name)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return ErrRegistry.NewWithCause(CodeMigrationFailed, err).WithDetail("version", version)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return ErrRegistry.NewWithCause(CodeMigrationFailed, err).WithDetail("file", name)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO seo_schema_migrations (version) VALUES ($1)`, version); err != nil {
		return ErrRegistry.NewWithCause(CodeMigrationFailed, err).WithDetail("version", version)
	}
	if err := tx.Commit(); err != nil {
		return ErrRegistry.NewWithCause(CodeMigrationFailed, err).WithDetail("version", version)
	}

	logx.WithField("file", name).Info("seojobinfra: migration applied")
	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}
