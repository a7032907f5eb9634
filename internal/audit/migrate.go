package audit

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// schemaVersion is the current expected schema version.
const schemaVersion = 2

type migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations is the ordered list of schema migrations.
// Each migration is applied exactly once, tracked in the schema_version table.
var migrations = []migration{
	{
		Version:     1,
		Description: "turns table",
		SQL: `
		CREATE TABLE IF NOT EXISTS turns (
			id          TEXT PRIMARY KEY,
			input       TEXT NOT NULL,
			route       TEXT NOT NULL,
			category    TEXT,
			agent       TEXT,
			tool        TEXT,
			arguments   TEXT,
			success     INTEGER NOT NULL,
			error_kind  TEXT,
			error       TEXT,
			output      TEXT,
			duration_ms INTEGER DEFAULT 0,
			started_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_turns_started ON turns(started_at);
		`,
	},
	{
		Version:     2,
		Description: "per-turn diff summary",
		SQL: `
		ALTER TABLE turns ADD COLUMN files_changed INTEGER DEFAULT 0;
		ALTER TABLE turns ADD COLUMN additions INTEGER DEFAULT 0;
		ALTER TABLE turns ADD COLUMN removals INTEGER DEFAULT 0;
		`,
	},
}

// runMigrations applies all pending schema migrations inside one
// transaction each.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version     INTEGER PRIMARY KEY,
			description TEXT,
			applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		logger.Debug("applying migration", "version", m.Version, "description", m.Description)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration v%d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration v%d: %w", m.Version, err)
		}
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO schema_version (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.Version, err)
		}
	}
	return nil
}

func currentVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	return version, nil
}
