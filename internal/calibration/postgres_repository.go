package calibration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists calibration reports.
type Repository interface {
	SaveReport(ctx context.Context, report *Report) error
	LatestReport(ctx context.Context) (*Report, error)
}

// PostgresRepository is a PostgreSQL implementation of Repository, backed
// by the calibration_reports table (ran_at timestamptz, failed bool,
// checks jsonb).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL calibration repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveReport inserts one calibration run.
func (r *PostgresRepository) SaveReport(ctx context.Context, report *Report) error {
	checks, err := json.Marshal(report.Checks)
	if err != nil {
		return fmt.Errorf("marshal checks: %w", err)
	}

	query := `
		INSERT INTO calibration_reports (ran_at, failed, checks)
		VALUES ($1, $2, $3)
	`
	if _, err := r.pool.Exec(ctx, query, report.RanAt, report.Failed(), checks); err != nil {
		return fmt.Errorf("insert calibration report: %w", err)
	}
	return nil
}

// LatestReport returns the most recent run, or nil when none exist.
func (r *PostgresRepository) LatestReport(ctx context.Context) (*Report, error) {
	query := `
		SELECT ran_at, checks
		FROM calibration_reports
		ORDER BY ran_at DESC
		LIMIT 1
	`

	var report Report
	var checks []byte
	err := r.pool.QueryRow(ctx, query).Scan(&report.RanAt, &checks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(checks, &report.Checks); err != nil {
		return nil, fmt.Errorf("unmarshal checks: %w", err)
	}
	return &report, nil
}
