package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// sqliteTimeLayout is the storage format for timestamps. Fixed-width UTC
// text keeps range comparisons in SQL correct.
const sqliteTimeLayout = "2006-01-02 15:04:05.000"

// DB wraps sql.DB with the sample store operations
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// Enable WAL mode for better concurrent access
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")

	return &DB{db}, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS samples (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        target TEXT NOT NULL,
        timestamp DATETIME NOT NULL,
        reachable BOOLEAN NOT NULL,
        latency_min_ms REAL,
        latency_avg_ms REAL,
        latency_max_ms REAL,
        jitter_ms REAL,
        packet_loss_percent REAL NOT NULL DEFAULT 0,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_target_timestamp ON samples(target, timestamp);

    CREATE TABLE IF NOT EXISTS hourly_stats (
        hour DATETIME NOT NULL,
        target TEXT NOT NULL,
        total_samples INTEGER,
        reachable_samples INTEGER,
        avg_latency_ms REAL,
        max_latency_ms REAL,
        min_latency_ms REAL,
        avg_jitter_ms REAL,
        packet_loss_percent REAL,
        PRIMARY KEY (hour, target)
    );
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}
