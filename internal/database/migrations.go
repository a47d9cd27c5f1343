package database

import (
	"fmt"
	"strings"
)

// Migration represents a database migration
type Migration struct {
	ID          int
	Description string
	SQL         string
}

// migrations contains all database migrations in order
var migrations = []Migration{
	{
		ID:          1,
		Description: "Snapshot tables",
		SQL: `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	lines INTEGER NOT NULL DEFAULT 0,
	dropped INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS agents (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	agent_id INTEGER NOT NULL,
	color INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE TABLE IF NOT EXISTS spatial_objects (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	object_id INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	owner_id INTEGER NOT NULL DEFAULT 0,
	sector_id INTEGER NOT NULL DEFAULT 0,
	x REAL NOT NULL DEFAULT 0,
	y REAL NOT NULL DEFAULT 0,
	radius REAL NOT NULL DEFAULT 0,
	color_r REAL NOT NULL DEFAULT 0,
	color_g REAL NOT NULL DEFAULT 0,
	color_b REAL NOT NULL DEFAULT 0,
	sensor_range REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, seq)
)`,
	},
	{
		ID:          2,
		Description: "Index objects by owner and sector",
		SQL: `
CREATE INDEX IF NOT EXISTS idx_spatial_objects_owner ON spatial_objects(run_id, owner_id);
CREATE INDEX IF NOT EXISTS idx_spatial_objects_sector ON spatial_objects(run_id, sector_id)`,
	},
}

// runMigrations executes all pending migrations
func (d *SQLiteDatabase) runMigrations() error {
	if err := d.ensureSchemaVersionTable(); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := d.getCurrentSchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.ID <= currentVersion {
			continue
		}
		d.logger.Debug("applying migration", "id", migration.ID, "description", migration.Description)
		if err := d.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.ID, err)
		}
	}
	return nil
}

// ensureSchemaVersionTable creates the schema_version table if it doesn't exist
func (d *SQLiteDatabase) ensureSchemaVersionTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err := d.db.Exec(query)
	return err
}

// getCurrentSchemaVersion returns the current schema version
func (d *SQLiteDatabase) getCurrentSchemaVersion() (int, error) {
	var version int
	err := d.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version;`).Scan(&version)
	return version, err
}

// SchemaVersion returns the highest applied migration
func (d *SQLiteDatabase) SchemaVersion() (int, error) {
	if !d.dbOpen {
		return 0, fmt.Errorf("database not open")
	}
	return d.getCurrentSchemaVersion()
}

// applyMigration applies a single migration in its own transaction
func (d *SQLiteDatabase) applyMigration(migration Migration) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(migration.SQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute migration statement: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?);`, migration.ID); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
