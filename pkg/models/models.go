package models

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ANALYTICS DATASET
// The aggregation layer fetches these per organization and date range and
// hands the core one immutable value. Engines never mutate it.
// =============================================================================

type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	CreatedAt time.Time `json:"created_at"`
}

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

type Invoice struct {
	ID         uuid.UUID     `json:"id"`
	CustomerID uuid.UUID     `json:"customer_id"`
	Amount     float64       `json:"amount"`
	Status     InvoiceStatus `json:"status"`
	IssuedAt   time.Time     `json:"issued_at"`
	DueAt      time.Time     `json:"due_at"`
	PaidAt     *time.Time    `json:"paid_at,omitempty"`
}

type Payment struct {
	ID         uuid.UUID `json:"id"`
	InvoiceID  uuid.UUID `json:"invoice_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Amount     float64   `json:"amount"`
	ReceivedAt time.Time `json:"received_at"`
}

type Expense struct {
	ID         uuid.UUID `json:"id"`
	Category   string    `json:"category"`
	Vendor     string    `json:"vendor"`
	Amount     float64   `json:"amount"`
	IncurredAt time.Time `json:"incurred_at"`
}

type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// Account is one row of the chart-of-accounts balance list. Current marks
// current (short-term) assets and liabilities for the balance-sheet projection.
type Account struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	Type    AccountType `json:"type"`
	Current bool        `json:"current"`
	Balance float64     `json:"balance"`
}

type TaxRecord struct {
	ID     uuid.UUID  `json:"id"`
	Period string     `json:"period"`
	Amount float64    `json:"amount"`
	DueAt  time.Time  `json:"due_at"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

// DateRange is closed on both ends. Start must not be after End; the request
// layer validates before the core sees it, but Validate is exported so the
// boundary and the tools share one check.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return &InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Days returns the span length in whole days (inclusive counting is not
// needed anywhere; callers compare against thresholds).
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Contains reports whether t falls inside the closed range. The aggregation
// layer fetches rows from before Start so period-over-period comparisons
// have a baseline; engines summing flows for the requested period must gate
// every row through this.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

type AnalyticsDataset struct {
	OrganizationID uuid.UUID   `json:"organization_id"`
	Range          DateRange   `json:"range"`
	Customers      []Customer  `json:"customers"`
	Invoices       []Invoice   `json:"invoices"`
	Payments       []Payment   `json:"payments"`
	Expenses       []Expense   `json:"expenses"`
	Accounts       []Account   `json:"accounts"`
	TaxRecords     []TaxRecord `json:"tax_records"`
}

// Minimum data the boundary requires before running the full report:
// 5 invoices, 10 expenses, a 30-day span. Engines still degrade to empty
// output if a caller bypasses this.
const (
	MinInvoices   = 5
	MinExpenses   = 10
	MinPeriodDays = 30
)

func (d *AnalyticsDataset) CheckMinimumData() error {
	if err := d.Range.Validate(); err != nil {
		return err
	}
	// Only rows inside the requested period count toward the minimums;
	// baseline rows fetched from before the range do not.
	var invoices int
	for _, inv := range d.Invoices {
		if d.Range.Contains(inv.IssuedAt) {
			invoices++
		}
	}
	if invoices < MinInvoices {
		return &InsufficientDataError{Op: "analytics", Need: MinInvoices, Got: invoices, Unit: "invoices"}
	}
	var expenses int
	for _, e := range d.Expenses {
		if d.Range.Contains(e.IncurredAt) {
			expenses++
		}
	}
	if expenses < MinExpenses {
		return &InsufficientDataError{Op: "analytics", Need: MinExpenses, Got: expenses, Unit: "expenses"}
	}
	if d.Range.Days() < MinPeriodDays {
		return &InsufficientDataError{Op: "analytics", Need: MinPeriodDays, Got: d.Range.Days(), Unit: "days"}
	}
	return nil
}
