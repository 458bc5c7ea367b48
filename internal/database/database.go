package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-resizer/internal/logging"
	"media-resizer/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// Database is the run history journal.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New opens (creating if needed) the journal at dbPath. The parent directory
// is created when missing.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Debug("Journal path: %s", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Journal permission diagnostics: %v", err)
	}

	// busy_timeout lets concurrent workers wait for the write lock
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite serializes writers anyway
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	d := &Database{db: db, dbPath: dbPath}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Debug("Journal ready at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		folder TEXT NOT NULL,
		photo_target TEXT NOT NULL,
		video_target TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		files_total INTEGER NOT NULL DEFAULT 0,
		files_done INTEGER NOT NULL DEFAULT 0,
		original_bytes INTEGER NOT NULL DEFAULT 0,
		new_bytes INTEGER NOT NULL DEFAULT 0,
		cancelled INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		kind TEXT NOT NULL,
		strategy TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		original_bytes INTEGER NOT NULL DEFAULT 0,
		new_bytes INTEGER NOT NULL DEFAULT 0,
		target TEXT NOT NULL,
		content_hash TEXT NOT NULL DEFAULT '',
		recorded_at INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
	CREATE INDEX IF NOT EXISTS idx_outcomes_lookup ON outcomes(path, content_hash, target);
	`

	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	return d.runMigrations(ctx)
}

// runMigrations brings older journals up to schemaVersion.
func (d *Database) runMigrations(ctx context.Context) error {
	var version int
	if err := d.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version == schemaVersion {
		return nil
	}
	if version > schemaVersion {
		return fmt.Errorf("journal schema version %d is newer than supported version %d", version, schemaVersion)
	}

	logging.Info("Migrating journal schema from version %d to %d", version, schemaVersion)
	if _, err := d.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the journal file path.
func (d *Database) Path() string {
	return d.dbPath
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// diagnoseDatabasePermissions logs the state of the journal files and fixes
// read-only WAL/SHM files left by another user.
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("journal directory not writable: %w", err)
	}
	_ = os.Remove(testFile)

	if info, err := os.Stat(dbPath); err == nil && info.Mode().Perm()&0o200 == 0 {
		logging.Warn("Journal file is read-only! Mode: %v", info.Mode())
	}

	for _, side := range []string{dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(side)
		if err != nil || info.Mode().Perm()&0o200 != 0 {
			continue
		}
		logging.Warn("%s is read-only! Mode: %v - this will cause write failures", side, info.Mode())
		if chmodErr := os.Chmod(side, 0o600); chmodErr != nil {
			logging.Error("Failed to fix permissions on %s: %v", side, chmodErr)
		} else {
			logging.Info("Fixed permissions on %s", side)
		}
	}

	return nil
}
