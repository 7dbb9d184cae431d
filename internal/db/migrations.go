package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS vehicle_owners (
		plate       TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS violations (
		id                 UUID PRIMARY KEY,
		image_reference    TEXT NOT NULL,
		helmet_violation   BOOLEAN NOT NULL DEFAULT false,
		triple_riding      BOOLEAN NOT NULL DEFAULT false,
		overloaded         BOOLEAN NOT NULL DEFAULT false,
		seatbelt_violation BOOLEAN NOT NULL DEFAULT false,
		mobile_use         BOOLEAN NOT NULL DEFAULT false,
		underage_driver    BOOLEAN NOT NULL DEFAULT false,
		number_plate       TEXT NOT NULL DEFAULT '',
		vehicle_type       TEXT NOT NULL DEFAULT 'unknown',
		summary            TEXT NOT NULL DEFAULT '',
		severity_score     INT NOT NULL DEFAULT 0,
		status             TEXT NOT NULL DEFAULT 'pending',
		raw_result         JSONB,
		timestamp          TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_violations_timestamp ON violations(timestamp);`,
	`CREATE INDEX IF NOT EXISTS idx_violations_number_plate ON violations(number_plate);`,
	`CREATE INDEX IF NOT EXISTS idx_violations_status ON violations(status);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
