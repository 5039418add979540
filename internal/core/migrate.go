// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type Migration struct {
	Version int
	Name    string
	SQL     string
}

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT        NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// LoadMigrations returns the embedded migrations ordered by version.
func LoadMigrations() ([]Migration, error) {
	return loadMigrations(migrationFS, "migrations")
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	seen := make(map[int]string, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".sql")
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %q: missing version prefix", entry.Name())
		}

		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %q: bad version: %w", entry.Name(), err)
		}

		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf(
				"migrations %q and %q share version %d",
				other, entry.Name(), version,
			)
		}
		seen[version] = entry.Name()

		body, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %q: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			SQL:     string(body),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// Migrate applies every migration not yet recorded in schema_migrations.
// Each migration runs in its own transaction together with its bookkeeping
// row.
func Migrate(
	ctx context.Context,
	db *sqlx.DB,
	migrations []Migration,
	logger *slog.Logger,
) (int, error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []int
	if err := db.SelectContext(
		ctx,
		&applied,
		`SELECT version FROM schema_migrations ORDER BY version`,
	); err != nil {
		return 0, fmt.Errorf("list applied migrations: %w", err)
	}

	done := make(map[int]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}

	count := 0
	for _, m := range migrations {
		if _, ok := done[m.Version]; ok {
			continue
		}

		err := InTx(ctx, db, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				return fmt.Errorf("apply %s: %w", m.Name, err)
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
				m.Version,
				m.Name,
			); err != nil {
				return fmt.Errorf("record %s: %w", m.Name, err)
			}
			return nil
		})
		if err != nil {
			return count, err
		}

		logger.Info("migration applied", "version", m.Version, "name", m.Name)
		count++
	}

	return count, nil
}

// ImportLegacyTasks copies rows from the pre-ownership old_tasks table into
// tasks, assigning every row to ownerID, then drops old_tasks. It returns
// the number of imported rows; a missing old_tasks table imports nothing.
func ImportLegacyTasks(
	ctx context.Context,
	db *sqlx.DB,
	ownerID int64,
) (int64, error) {
	var imported int64

	err := InTx(ctx, db, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(
			ctx,
			&exists,
			`SELECT to_regclass('old_tasks') IS NOT NULL`,
		); err != nil {
			return fmt.Errorf("check old_tasks: %w", err)
		}
		if !exists {
			return nil
		}

		var ownerExists bool
		if err := tx.GetContext(
			ctx,
			&ownerExists,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`,
			ownerID,
		); err != nil {
			return fmt.Errorf("check owner: %w", err)
		}
		if !ownerExists {
			return fmt.Errorf("legacy owner %d: %w", ownerID, ErrNotFound)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (name, due_date, priority, status, posted_date, user_id)
			SELECT name, due_date, priority, status, NOW(), $1
			FROM old_tasks
			ORDER BY task_id ASC`,
			ownerID,
		)
		if err != nil {
			return fmt.Errorf("copy old_tasks: %w", err)
		}

		imported, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("copy old_tasks: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DROP TABLE old_tasks`); err != nil {
			return fmt.Errorf("drop old_tasks: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return imported, nil
}
