package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"finpulse/pkg/core/analysis"
	"finpulse/pkg/models"
)

// ReportRepo persists generated analytics reports. The DB is the primary
// store; when no pool is configured it falls back to JSON files under
// fileDir, which keeps local runs working without Postgres.
type ReportRepo struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewReportRepo creates a report repository. With a nil pool and empty dir
// it defaults to a local cache directory.
func NewReportRepo(pool *pgxpool.Pool, dir string) *ReportRepo {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "reports")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check report dir: %v\n", err)
		}
	}
	return &ReportRepo{pool: pool, fileDir: dir}
}

// Save upserts the report keyed by organization and period. Re-running the
// same range replaces the stored report.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS analytics_reports (
//   organization_id UUID,
//   period_start DATE,
//   period_end DATE,
//   report_json JSONB,
//   updated_at TIMESTAMPTZ,
//   PRIMARY KEY (organization_id, period_start, period_end)
// );
func (r *ReportRepo) Save(ctx context.Context, report *analysis.Report) error {
	jsonData, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if r.pool != nil {
		query := `
			INSERT INTO analytics_reports (organization_id, period_start, period_end, report_json, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (organization_id, period_start, period_end)
			DO UPDATE SET
				report_json = EXCLUDED.report_json,
				updated_at = EXCLUDED.updated_at;
		`
		_, err = r.pool.Exec(ctx, query,
			report.OrganizationID, report.Range.Start, report.Range.End, jsonData, time.Now())
		if err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		return nil
	}

	if r.fileDir != "" {
		path := r.reportPath(report.OrganizationID, report.Range)
		if err := os.WriteFile(path, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to save report file: %w", err)
		}
	}
	return nil
}

// Load retrieves the stored report for an organization and period. A miss
// returns pgx.ErrNoRows semantics as a plain error.
func (r *ReportRepo) Load(ctx context.Context, orgID uuid.UUID, dateRange models.DateRange) (*analysis.Report, error) {
	if r.pool != nil {
		query := `
			SELECT report_json FROM analytics_reports
			WHERE organization_id = $1 AND period_start = $2 AND period_end = $3`

		var jsonData []byte
		err := r.pool.QueryRow(ctx, query, orgID, dateRange.Start, dateRange.End).Scan(&jsonData)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, fmt.Errorf("no report found for organization %s", orgID)
			}
			return nil, fmt.Errorf("failed to load report: %w", err)
		}
		return decodeReport(jsonData)
	}

	if r.fileDir != "" {
		jsonData, err := os.ReadFile(r.reportPath(orgID, dateRange))
		if err != nil {
			return nil, fmt.Errorf("no report found for organization %s", orgID)
		}
		return decodeReport(jsonData)
	}

	return nil, fmt.Errorf("report store not configured")
}

func decodeReport(jsonData []byte) (*analysis.Report, error) {
	var report analysis.Report
	if err := json.Unmarshal(jsonData, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

func (r *ReportRepo) reportPath(orgID uuid.UUID, dateRange models.DateRange) string {
	name := fmt.Sprintf("%s_%s_%s.json",
		orgID, dateRange.Start.Format("20060102"), dateRange.End.Format("20060102"))
	return filepath.Join(r.fileDir, name)
}
