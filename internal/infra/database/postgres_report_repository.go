// internal/infra/database/postgres_report_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"geoguard/internal/domain/report"

	"github.com/google/uuid"
)

type PostgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(db *sql.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

// Create stores a sign report, assigning an id and timestamp when the caller left them empty.
func (r *PostgresReportRepository) Create(ctx context.Context, rep *report.Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	if rep.SubmittedAt.IsZero() {
		rep.SubmittedAt = time.Now().UTC()
	}
	query := `INSERT INTO asili_reports (id, sign, region, hazard, zone_id, sender, submitted_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query, rep.ID, rep.Sign, rep.Region, string(rep.Hazard), string(rep.ZoneID), rep.Sender, rep.SubmittedAt)
	if err != nil {
		return fmt.Errorf("error creating report: %w", err)
	}
	return nil
}

// CountByZone is used by operators and tests to check what was recorded for a zone.
func (r *PostgresReportRepository) CountByZone(ctx context.Context, zoneID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM asili_reports WHERE zone_id = $1`, zoneID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting reports: %w", err)
	}
	return n, nil
}
