// internal/infra/database/postgres_observation_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"geoguard/internal/domain/observation"
)

// ErrObservationNotFound is returned when a zone has no stored reading yet.
var ErrObservationNotFound = fmt.Errorf("observation not found")

type PostgresObservationRepository struct {
	db *sql.DB
}

func NewPostgresObservationRepository(db *sql.DB) *PostgresObservationRepository {
	return &PostgresObservationRepository{db: db}
}

// Latest returns the most recent reading for the zone display name.
func (r *PostgresObservationRepository) Latest(ctx context.Context, zoneName string) (*observation.Observation, error) {
	query := `SELECT id, city, temperature, rainfall_1h, humidity, lat, lon, timestamp
               FROM weather_logs WHERE city = $1
               ORDER BY timestamp DESC, id DESC LIMIT 1`

	o := &observation.Observation{}
	var rain, humidity, lat, lon sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, zoneName).Scan(&o.ID, &o.Zone, &o.TemperatureC, &rain, &humidity, &lat, &lon, &o.ObservedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrObservationNotFound
		}
		return nil, fmt.Errorf("error getting latest observation for %q: %w", zoneName, err)
	}
	// A NULL rainfall means the provider sent no rain block; that is dry weather.
	o.Rainfall1hMm = rain.Float64
	o.HumidityPct = humidity.Float64
	o.Lat = lat.Float64
	o.Lon = lon.Float64
	return o, nil
}

// Save appends a reading. ObservedAt is filled from the database clock when zero.
func (r *PostgresObservationRepository) Save(ctx context.Context, o *observation.Observation) error {
	query := `INSERT INTO weather_logs (city, temperature, rainfall_1h, humidity, lat, lon, timestamp)
               VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
               RETURNING id, timestamp`

	var observedAt sql.NullTime
	if !o.ObservedAt.IsZero() {
		observedAt = sql.NullTime{Time: o.ObservedAt, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query, o.Zone, o.TemperatureC, o.Rainfall1hMm, o.HumidityPct, o.Lat, o.Lon, observedAt).
		Scan(&o.ID, &o.ObservedAt)
	if err != nil {
		return fmt.Errorf("error saving observation for %q: %w", o.Zone, err)
	}
	return nil
}
