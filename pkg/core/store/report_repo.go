package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stockval/pkg/core/report"
)

// ReportRepo handles durable storage of generated valuation reports. The
// in-memory registry serves the hot path; this repo keeps reports
// retrievable across restarts when a database is configured.
type ReportRepo struct{}

// NewReportRepo creates a new repository instance.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{}
}

// Save persists a report. Re-saving the same id upserts.
func (r *ReportRepo) Save(ctx context.Context, rep *report.Report) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO valuation_reports (id, symbol, data, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			symbol = EXCLUDED.symbol,
			data = EXCLUDED.data
	`
	if _, err := pool.Exec(ctx, query, rep.ID, rep.Symbol, jsonData, rep.CreatedAt); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Load retrieves a stored report by id.
func (r *ReportRepo) Load(ctx context.Context, id string) (*report.Report, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT data FROM valuation_reports WHERE id = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, id).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no report found for id %s", id)
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var rep report.Report
	if err := json.Unmarshal(jsonData, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rep, nil
}
