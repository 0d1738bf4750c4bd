package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"vidpress/internal/logging"
	"vidpress/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database manages all persistence for the transcoding service.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New creates a new Database instance. dbPath must be the full path to the
// database file (e.g. "/database/vidpress.db") and the parent directory must
// already exist and be writable; startup.LoadConfig validates this.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL mode and busy_timeout prevent "database is locked" errors when
	// concurrent job completions write history rows.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

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

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	-- Result cache index
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		quality TEXT NOT NULL,
		format TEXT NOT NULL,
		output_path TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_cache_entries_source ON cache_entries(source_path);

	-- Terminal job records
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		quality TEXT NOT NULL,
		format TEXT NOT NULL,
		output_path TEXT,
		state TEXT NOT NULL,
		error TEXT,
		cached INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_finished ON jobs(finished_at DESC);

	-- Single admin token hash (id is always 1)
	CREATE TABLE IF NOT EXISTS admin_token (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		hash TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);
	`

	start := time.Now()
	_, err := d.db.ExecContext(ctx, schema)
	observeQuery("initialize_schema", start, err)
	return err
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the database file path (used by the metrics collector).
func (d *Database) Path() string {
	return d.dbPath
}

// observeQuery records per-operation query metrics.
func observeQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
