package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/api-sage/banking-ledger/internal/logger"
)

// RunMigrations applies every .sql file in migrationsDir that is not yet
// recorded in schema_migrations, in lexical order. Each file and its
// bookkeeping row commit in one transaction, so a failed migration leaves no
// partial schema behind.
func RunMigrations(ctx context.Context, db *sql.DB, migrationsDir string) error {
	const bootstrap = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := db.ExecContext(ctx, bootstrap); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	versions, err := migrationVersions(migrationsDir)
	if err != nil {
		return err
	}

	applied := 0
	for _, version := range versions {
		done, err := alreadyApplied(ctx, db, version)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		if err := applyMigration(ctx, db, migrationsDir, version); err != nil {
			return err
		}
		applied++
		logger.Info("migration applied", logger.Fields{"version": version})
	}

	logger.Info("migrations up to date", logger.Fields{
		"applied": applied,
		"total":   len(versions),
	})

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, dir, version string) error {
	statements, err := os.ReadFile(filepath.Join(dir, version))
	if err != nil {
		return fmt.Errorf("read migration %q: %w", version, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for migration %q: %w", version, err)
	}

	if _, err := tx.ExecContext(ctx, string(statements)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute migration %q: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES ($1)`, version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %q: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %q: %w", version, err)
	}
	return nil
}

// migrationVersions lists the .sql files in dir sorted by name; the numeric
// filename prefix is the ordering contract.
func migrationVersions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %q: %w", dir, err)
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		versions = append(versions, entry.Name())
	}
	sort.Strings(versions)

	return versions, nil
}

func alreadyApplied(ctx context.Context, db *sql.DB, version string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`,
		version,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check migration %q: %w", version, err)
	}
	return exists, nil
}
