package database

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered schema history. Versions are append-only.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_routes",
		SQL: `
			CREATE TABLE IF NOT EXISTS routes (
				route_id TEXT PRIMARY KEY,
				route_short_name TEXT,
				route_long_name TEXT,
				route_type INTEGER NOT NULL
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_vehicle_positions",
		SQL: `
			CREATE TABLE IF NOT EXISTS vehicle_positions (
				vehicle_id TEXT NOT NULL,
				trip_id TEXT NOT NULL DEFAULT '',
				route_id TEXT NOT NULL DEFAULT '',
				route_type INTEGER NOT NULL,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				bearing REAL NOT NULL DEFAULT 0,
				speed REAL NOT NULL DEFAULT 0,
				timestamp INTEGER NOT NULL,
				recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (vehicle_id, timestamp)
			)
		`,
	},
	{
		Version: 3,
		Name:    "index_vehicle_positions_lookup",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_vehicle_positions_time
				ON vehicle_positions (timestamp);
			CREATE INDEX IF NOT EXISTS idx_vehicle_positions_lat_lon
				ON vehicle_positions (latitude, longitude)
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

// applyMigration applies a single migration inside a transaction
func applyMigration(db *sql.DB, migration Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err = tx.Exec(migration.SQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
	}

	if _, err = tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", migration.Version, migration.Name); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}

	return nil
}

// RunMigrations applies all pending migrations
func RunMigrations(db *sql.DB, log *logrus.Logger) error {
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
		log.WithFields(logrus.Fields{
			"version": migration.Version,
			"name":    migration.Name,
		}).Info("applied migration")
	}

	return nil
}
