package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// New opens the SQLite database at the given path. The modernc driver is
// pure Go, so no cgo toolchain is needed at build time.
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// under concurrent request handlers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	log.Println("✅ SQLite database connected")

	return &DB{db}, nil
}

// Initialize creates all required tables
func (db *DB) Initialize() error {
	log.Println("🔍 Checking database schema...")

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			source TEXT NOT NULL DEFAULT 'manual',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user_time ON activities(user_id, start_time)`,

		`CREATE TABLE IF NOT EXISTS daily_summaries (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			focus_minutes REAL NOT NULL,
			stress_periods INTEGER NOT NULL,
			cognitive_score INTEGER NOT NULL,
			sample_count INTEGER NOT NULL,
			distribution TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, date)
		)`,

		`CREATE TABLE IF NOT EXISTS baselines (
			user_id TEXT PRIMARY KEY,
			days INTEGER NOT NULL,
			avg_focus_minutes REAL NOT NULL,
			avg_stress_periods REAL NOT NULL,
			avg_distribution TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS insights (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			content TEXT NOT NULL,
			recommendation TEXT NOT NULL DEFAULT '',
			evidence TEXT NOT NULL DEFAULT '{}',
			generated_at TIMESTAMP NOT NULL,
			dismissed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_user_generated ON insights(user_id, generated_at)`,

		`CREATE TABLE IF NOT EXISTS surfaced_patterns (
			user_id TEXT NOT NULL,
			pattern_key TEXT NOT NULL,
			surfaced_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, pattern_key)
		)`,
	}

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	log.Println("✅ Database initialized successfully")
	return nil
}
