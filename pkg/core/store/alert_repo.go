package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"finpulse/pkg/core/anomaly"
)

// AlertRepo stores synthesized anomaly alerts. Alert IDs are deterministic,
// so re-running detection over the same data upserts instead of duplicating.
type AlertRepo struct {
	pool *pgxpool.Pool
}

func NewAlertRepo(pool *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

// SaveAlert stores one alert.
func (r *AlertRepo) SaveAlert(ctx context.Context, orgID uuid.UUID, alert *anomaly.Alert) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	query := `
		INSERT INTO anomaly_alerts (
			id, organization_id, category, severity, message
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			severity = EXCLUDED.severity,
			message = EXCLUDED.message,
			updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query,
		alert.ID, orgID, alert.Category, alert.Severity, alert.Message)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// SaveAllAlerts saves every alert, continuing past individual failures.
func (r *AlertRepo) SaveAllAlerts(ctx context.Context, orgID uuid.UUID, alerts []anomaly.Alert) error {
	for i := range alerts {
		if err := r.SaveAlert(ctx, orgID, &alerts[i]); err != nil {
			fmt.Printf("  Warning: failed to save alert %s: %v\n", alerts[i].ID, err)
		}
	}
	return nil
}

// GetAlerts retrieves stored alerts for an organization, newest first.
func (r *AlertRepo) GetAlerts(ctx context.Context, orgID uuid.UUID) ([]anomaly.Alert, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	query := `
		SELECT id, category, severity, message
		FROM anomaly_alerts
		WHERE organization_id = $1
		ORDER BY updated_at DESC, category
	`
	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []anomaly.Alert
	for rows.Next() {
		var alert anomaly.Alert
		if err := rows.Scan(&alert.ID, &alert.Category, &alert.Severity, &alert.Message); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// AlertExists checks whether an alert with the given deterministic ID is
// already stored.
func (r *AlertRepo) AlertExists(ctx context.Context, id uuid.UUID) bool {
	if r.pool == nil {
		return false
	}
	query := `SELECT 1 FROM anomaly_alerts WHERE id = $1 LIMIT 1`
	var exists int
	err := r.pool.QueryRow(ctx, query, id).Scan(&exists)
	return err == nil
}
