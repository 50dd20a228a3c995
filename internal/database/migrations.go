package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the embedded, ordered schema history. Every statement is
// idempotent, so replaying on an already-migrated database is safe.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_raw_sensor_data",
		SQL: `
			CREATE TABLE IF NOT EXISTS raw_sensor_data (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				subject_id INTEGER NOT NULL,
				activity TEXT NOT NULL,
				timestamp INTEGER,
				accel_x REAL NOT NULL,
				accel_y REAL NOT NULL,
				accel_z REAL NOT NULL,
				gyro_x REAL NOT NULL,
				gyro_y REAL NOT NULL,
				gyro_z REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_raw_subject_time
				ON raw_sensor_data(subject_id, timestamp);
		`,
	},
	{
		Version: 2,
		Name:    "create_windows",
		SQL: `
			CREATE TABLE IF NOT EXISTS windows (
				window_id INTEGER PRIMARY KEY AUTOINCREMENT,
				subject_id INTEGER NOT NULL,
				t_start INTEGER NOT NULL,
				t_end   INTEGER NOT NULL,
				label   VARCHAR(50),
				features TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_windows_subject_time
				ON windows(subject_id, t_start);
		`,
	},
}

// initMigrationsTable creates the migrations tracking table
func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// appliedMigrations returns the set of applied migration versions
func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// applyMigration applies a single migration inside its own transaction
func applyMigration(db *sql.DB, migration Migration) error {
	return Transaction(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		return nil
	})
}

// Migrate brings the schema up to date. Safe to call on every run.
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := applyMigration(db, migration); err != nil {
			return err
		}
		log.Printf("Applied migration %d: %s", migration.Version, migration.Name)
	}

	return nil
}
