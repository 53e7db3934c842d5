package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// migrationFilePattern matches {version}_{description}.sql.
var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// ErrInvalidMigration is returned for migration files that do not follow the naming convention.
var ErrInvalidMigration = errors.New("sqlite: invalid migration file")

// Migration is a single schema change read from the migrations directory.
type Migration struct {
	Version     string
	Description string
	SQL         string
}

// Migrations returns the embedded migrations in version order.
func Migrations() ([]Migration, error) {
	return scanMigrations(embeddedMigrations, "migrations")
}

func scanMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	seen := make(map[string]string)
	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		m := migrationFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMigration, entry.Name())
		}
		if existing, dup := seen[m[1]]; dup {
			return nil, fmt.Errorf("%w: version %s found in both %s and %s", ErrInvalidMigration, m[1], existing, entry.Name())
		}
		seen[m[1]] = entry.Name()

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{
			Version:     m[1],
			Description: strings.ReplaceAll(m[2], "_", " "),
			SQL:         string(data),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Migrator applies pending migrations and records them in schema_migrations.
type Migrator struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewMigrator creates a migrator for pool.
func NewMigrator(pool *ConnectionPool) *Migrator {
	return &Migrator{pool: pool, now: time.Now}
}

// Run applies every migration not yet recorded, each in its own transaction.
// It returns the versions it applied.
func (m *Migrator) Run(ctx context.Context, migrations []Migration) ([]string, error) {
	if _, err := m.pool.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}

	applied, err := m.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	var ran []string
	for _, migration := range migrations {
		if done[migration.Version] {
			continue
		}
		statements := parseSQL(migration.SQL)
		if len(statements) == 0 {
			return ran, fmt.Errorf("%w: %s has no statements", ErrInvalidMigration, migration.Version)
		}

		err := m.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for i, stmt := range statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("statement %d: %w", i+1, err)
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
				migration.Version, m.now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return ran, fmt.Errorf("migration %s (%s): %w", migration.Version, migration.Description, err)
		}
		ran = append(ran, migration.Version)
	}

	return ran, nil
}

// AppliedVersions lists recorded versions in ascending order.
func (m *Migrator) AppliedVersions(ctx context.Context) ([]string, error) {
	rows, err := m.pool.db.QueryContext(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// parseSQL splits a script on semicolons and drops comment-only lines.
func parseSQL(script string) []string {
	var statements []string
	for _, raw := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				lines = append(lines, line)
			}
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
