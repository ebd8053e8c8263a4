// internal/infra/database/schema.go
package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the tables the service reads and writes. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS weather_logs (
		id          BIGSERIAL PRIMARY KEY,
		city        TEXT NOT NULL,
		temperature DOUBLE PRECISION NOT NULL,
		rainfall_1h DOUBLE PRECISION,
		humidity    DOUBLE PRECISION,
		lat         DOUBLE PRECISION,
		lon         DOUBLE PRECISION,
		timestamp   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS weather_logs_city_timestamp_idx ON weather_logs (city, timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS asili_reports (
		id           UUID PRIMARY KEY,
		sign         TEXT NOT NULL,
		region       TEXT NOT NULL,
		hazard       TEXT NOT NULL,
		zone_id      TEXT NOT NULL,
		sender       TEXT NOT NULL DEFAULT '',
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}
	return nil
}
