package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"finpulse/pkg/models"
)

// DatasetRepo assembles the per-organization analytics dataset. Each entity
// is fetched in its own goroutine; the first error cancels the rest.
type DatasetRepo struct {
	pool *pgxpool.Pool
}

func NewDatasetRepo(pool *pgxpool.Pool) *DatasetRepo {
	return &DatasetRepo{pool: pool}
}

// Fetch loads the six entity sets for the organization. Time-stamped rows are
// pulled one extra window back from the range start so period-over-period
// comparisons and expense baselines have history to work against.
func (r *DatasetRepo) Fetch(ctx context.Context, orgID uuid.UUID, dateRange models.DateRange) (*models.AnalyticsDataset, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}
	if err := dateRange.Validate(); err != nil {
		return nil, err
	}

	span := dateRange.End.Sub(dateRange.Start)
	lookback := dateRange.Start.Add(-span)

	ds := &models.AnalyticsDataset{
		OrganizationID: orgID,
		Range:          dateRange,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT id, name, industry, created_at
			FROM customers
			WHERE organization_id = $1
			ORDER BY created_at`, orgID)
		if err != nil {
			return fmt.Errorf("failed to query customers: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var c models.Customer
			if err := rows.Scan(&c.ID, &c.Name, &c.Industry, &c.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan customer row: %w", err)
			}
			ds.Customers = append(ds.Customers, c)
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT id, customer_id, amount, status, issued_at, due_at, paid_at
			FROM invoices
			WHERE organization_id = $1 AND issued_at >= $2 AND issued_at <= $3
			ORDER BY issued_at`, orgID, lookback, dateRange.End)
		if err != nil {
			return fmt.Errorf("failed to query invoices: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var inv models.Invoice
			if err := rows.Scan(&inv.ID, &inv.CustomerID, &inv.Amount, &inv.Status, &inv.IssuedAt, &inv.DueAt, &inv.PaidAt); err != nil {
				return fmt.Errorf("failed to scan invoice row: %w", err)
			}
			ds.Invoices = append(ds.Invoices, inv)
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT id, invoice_id, customer_id, amount, received_at
			FROM payments
			WHERE organization_id = $1 AND received_at >= $2 AND received_at <= $3
			ORDER BY received_at`, orgID, lookback, dateRange.End)
		if err != nil {
			return fmt.Errorf("failed to query payments: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var p models.Payment
			if err := rows.Scan(&p.ID, &p.InvoiceID, &p.CustomerID, &p.Amount, &p.ReceivedAt); err != nil {
				return fmt.Errorf("failed to scan payment row: %w", err)
			}
			ds.Payments = append(ds.Payments, p)
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT id, category, vendor, amount, incurred_at
			FROM expenses
			WHERE organization_id = $1 AND incurred_at >= $2 AND incurred_at <= $3
			ORDER BY incurred_at`, orgID, lookback, dateRange.End)
		if err != nil {
			return fmt.Errorf("failed to query expenses: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var e models.Expense
			if err := rows.Scan(&e.ID, &e.Category, &e.Vendor, &e.Amount, &e.IncurredAt); err != nil {
				return fmt.Errorf("failed to scan expense row: %w", err)
			}
			ds.Expenses = append(ds.Expenses, e)
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT id, name, type, is_current, balance
			FROM accounts
			WHERE organization_id = $1
			ORDER BY name`, orgID)
		if err != nil {
			return fmt.Errorf("failed to query accounts: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var a models.Account
			if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Current, &a.Balance); err != nil {
				return fmt.Errorf("failed to scan account row: %w", err)
			}
			ds.Accounts = append(ds.Accounts, a)
		}
		return rows.Err()
	})

	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT id, period, amount, due_at, paid_at
			FROM tax_records
			WHERE organization_id = $1 AND due_at >= $2 AND due_at <= $3
			ORDER BY due_at`, orgID, lookback, dateRange.End)
		if err != nil {
			return fmt.Errorf("failed to query tax records: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var tr models.TaxRecord
			if err := rows.Scan(&tr.ID, &tr.Period, &tr.Amount, &tr.DueAt, &tr.PaidAt); err != nil {
				return fmt.Errorf("failed to scan tax record row: %w", err)
			}
			ds.TaxRecords = append(ds.TaxRecords, tr)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}
