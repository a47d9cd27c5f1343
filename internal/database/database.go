// Package database persists snapshots of a parsed dump to SQLite so runs
// can be inspected or compared after the process exits.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"dominion/internal/log"
	"dominion/internal/rgb"
	"dominion/internal/store"
)

// Database is the snapshot store
type Database interface {
	OpenDatabase(filename string) error
	CreateDatabase(filename string) error
	CloseDatabase() error
	GetDatabaseOpen() bool

	SaveSnapshot(run Run, st *store.Store) error
	LoadRun(runID string) (Run, error)
	ListRuns() ([]Run, error)
	LoadAgents(runID string) ([]store.Agent, error)
	LoadObjects(runID string) ([]store.SpatialObject, error)
	LoadStore(runID string) (*store.Store, error)

	GetDB() *sql.DB
}

// SQLiteDatabase implements Database using the pure Go SQLite driver
type SQLiteDatabase struct {
	db       *sql.DB
	dbOpen   bool
	filename string
	logger   *slog.Logger
}

// NewDatabase creates a new SQLite database instance
func NewDatabase() *SQLiteDatabase {
	return &SQLiteDatabase{logger: log.With("component", "database")}
}

// OpenDatabase opens an existing snapshot database, migrating it if needed.
// A missing file is an error; use CreateDatabase to start a new one.
func (d *SQLiteDatabase) OpenDatabase(filename string) error {
	if d.dbOpen {
		return fmt.Errorf("database already open")
	}
	if _, err := os.Stat(filename); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	return d.open(filename)
}

// CreateDatabase opens filename, creating it and its schema if missing
func (d *SQLiteDatabase) CreateDatabase(filename string) error {
	if d.dbOpen {
		return fmt.Errorf("database already open")
	}
	return d.open(filename)
}

func (d *SQLiteDatabase) open(filename string) error {
	db, err := sql.Open("sqlite", filename+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	d.db = db
	if err = d.runMigrations(); err != nil {
		db.Close()
		d.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.filename = filename
	d.dbOpen = true
	d.logger.Debug("database open", "file", filename)
	return nil
}

// CloseDatabase closes the database connection
func (d *SQLiteDatabase) CloseDatabase() error {
	if !d.dbOpen {
		return nil
	}
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	d.dbOpen = false
	d.filename = ""
	return nil
}

// GetDatabaseOpen reports whether the database is open
func (d *SQLiteDatabase) GetDatabaseOpen() bool {
	return d.dbOpen
}

// GetDB exposes the underlying handle
func (d *SQLiteDatabase) GetDB() *sql.DB {
	return d.db
}

// SaveSnapshot writes the run and every record of st in one transaction.
// Records keep their store order through the seq column.
func (d *SQLiteDatabase) SaveSnapshot(run Run, st *store.Store) error {
	if !d.dbOpen {
		return fmt.Errorf("database not open")
	}
	if run.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (id, source, created_at, lines, dropped) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.CreatedAt.UTC(), run.Lines, run.Dropped)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	agentStmt, err := tx.Prepare(`INSERT INTO agents (run_id, seq, agent_id, color) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare agent insert: %w", err)
	}
	defer agentStmt.Close()

	for i, a := range st.Agents() {
		if _, err := agentStmt.Exec(run.ID, i, a.ID, a.Color.Packed()); err != nil {
			return fmt.Errorf("failed to save agent %d: %w", a.ID, err)
		}
	}

	objectStmt, err := tx.Prepare(`
		INSERT INTO spatial_objects (
			run_id, seq, object_id, name, owner_id, sector_id,
			x, y, radius, color_r, color_g, color_b, sensor_range
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare object insert: %w", err)
	}
	defer objectStmt.Close()

	for i, o := range st.Objects() {
		_, err := objectStmt.Exec(run.ID, i, o.ID, o.Name, o.OwnerID, o.SectorID,
			o.X, o.Y, o.Radius, o.Color.R, o.Color.G, o.Color.B, o.SensorRange)
		if err != nil {
			return fmt.Errorf("failed to save object %d: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	d.logger.Info("snapshot saved", "run", run.ID, "agents", st.AgentCount(), "objects", st.ObjectCount())
	return nil
}

const runQuery = `
	SELECT r.id, r.source, r.created_at, r.lines, r.dropped,
		(SELECT COUNT(*) FROM agents a WHERE a.run_id = r.id),
		(SELECT COUNT(*) FROM spatial_objects o WHERE o.run_id = r.id)
	FROM runs r`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.Source, &run.CreatedAt, &run.Lines, &run.Dropped, &run.Agents, &run.Objects)
	return run, err
}

// LoadRun returns the run with the given id
func (d *SQLiteDatabase) LoadRun(runID string) (Run, error) {
	if !d.dbOpen {
		return Run{}, fmt.Errorf("database not open")
	}
	run, err := scanRun(d.db.QueryRow(runQuery+` WHERE r.id = ?`, runID))
	if err == sql.ErrNoRows {
		return Run{}, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to load run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run, oldest first
func (d *SQLiteDatabase) ListRuns() ([]Run, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	rows, err := d.db.Query(runQuery + ` ORDER BY r.created_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadAgents returns a run's agents in their original order
func (d *SQLiteDatabase) LoadAgents(runID string) ([]store.Agent, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	rows, err := d.db.Query(`SELECT agent_id, color FROM agents WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load agents: %w", err)
	}
	defer rows.Close()

	var agents []store.Agent
	for rows.Next() {
		var a store.Agent
		var packed int64
		if err := rows.Scan(&a.ID, &packed); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		a.Color = rgb.FromPacked(uint32(packed))
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// LoadObjects returns a run's spatial objects in their original order
func (d *SQLiteDatabase) LoadObjects(runID string) ([]store.SpatialObject, error) {
	if !d.dbOpen {
		return nil, fmt.Errorf("database not open")
	}
	rows, err := d.db.Query(`
		SELECT object_id, name, owner_id, sector_id, x, y, radius,
			color_r, color_g, color_b, sensor_range
		FROM spatial_objects WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load objects: %w", err)
	}
	defer rows.Close()

	var objects []store.SpatialObject
	for rows.Next() {
		var o store.SpatialObject
		err := rows.Scan(&o.ID, &o.Name, &o.OwnerID, &o.SectorID, &o.X, &o.Y, &o.Radius,
			&o.Color.R, &o.Color.G, &o.Color.B, &o.SensorRange)
		if err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// LoadStore rebuilds a store from a saved run
func (d *SQLiteDatabase) LoadStore(runID string) (*store.Store, error) {
	agents, err := d.LoadAgents(runID)
	if err != nil {
		return nil, err
	}
	objects, err := d.LoadObjects(runID)
	if err != nil {
		return nil, err
	}
	st := store.New()
	for _, a := range agents {
		st.AddAgent(a)
	}
	for _, o := range objects {
		st.AddObject(o)
	}
	return st, nil
}
