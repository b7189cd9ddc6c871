// Package health condenses the whole analytics picture into one weighted
// 0-100 score across five components: cash flow, profitability, growth,
// efficiency, and stability.
package health

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"finpulse/pkg/core/config"
	"finpulse/pkg/core/ratios"
	"finpulse/pkg/core/stats"
	"finpulse/pkg/models"
)

// Component weights. They sum to exactly 1.0.
const (
	weightCashFlow      = 0.25
	weightProfitability = 0.25
	weightGrowth        = 0.20
	weightEfficiency    = 0.15
	weightStability     = 0.15
)

// Category thresholds.
const (
	categoryExcellent = 85
	categoryGood      = 70
	categoryFair      = 55
	categoryPoor      = 40
)

const maxRecommendations = 8

type Component struct {
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

type Score struct {
	OverallScore    float64              `json:"overall_score"`
	Category        string               `json:"category"`
	Components      map[string]Component `json:"components"`
	Trends          map[string]string    `json:"trends"`
	Recommendations []string             `json:"recommendations"`
	Benchmarks      config.Health        `json:"benchmarks"`
}

// Compute scores the dataset. Financial ratios are passed in rather than
// recomputed so one request derives them once; bench carries the comparison
// levels from config.
func Compute(ds *models.AnalyticsDataset, r ratios.FinancialRatios, bench config.Health) Score {
	revenue, customersActive := flowTotals(ds.Invoices, ds.Range)
	expenses := expenseTotal(ds.Expenses, ds.Range)

	cashFlow, cfRecs := scoreCashFlow(ds, r, bench, revenue, expenses)
	profit, prRecs := scoreProfitability(r, bench)
	growth, grRecs, revTrend := scoreGrowth(ds, revenue, customersActive)
	efficiency, efRecs := scoreEfficiency(ds, r, revenue, expenses)
	stability, stRecs := scoreStability(ds, r, revenue)

	components := map[string]Component{
		"cash_flow":     {Score: cashFlow, Weight: weightCashFlow},
		"profitability": {Score: profit, Weight: weightProfitability},
		"growth":        {Score: growth, Weight: weightGrowth},
		"efficiency":    {Score: efficiency, Weight: weightEfficiency},
		"stability":     {Score: stability, Weight: weightStability},
	}

	overall := cashFlow*weightCashFlow +
		profit*weightProfitability +
		growth*weightGrowth +
		efficiency*weightEfficiency +
		stability*weightStability

	recs := []string{}
	for _, group := range [][]string{cfRecs, prRecs, grRecs, efRecs, stRecs} {
		recs = append(recs, group...)
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	return Score{
		OverallScore: overall,
		Category:     categorize(overall),
		Components:   components,
		Trends: map[string]string{
			"revenue": string(revTrend),
		},
		Recommendations: recs,
		Benchmarks:      bench,
	}
}

func categorize(score float64) string {
	switch {
	case score >= categoryExcellent:
		return "excellent"
	case score >= categoryGood:
		return "good"
	case score >= categoryFair:
		return "fair"
	case score >= categoryPoor:
		return "poor"
	default:
		return "critical"
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// flowTotals sums non-draft invoice revenue inside the range and counts
// distinct invoiced customers.
func flowTotals(invoices []models.Invoice, r models.DateRange) (float64, int) {
	var revenue float64
	active := make(map[uuid.UUID]bool)
	for _, inv := range invoices {
		if inv.Status == models.InvoiceDraft || !r.Contains(inv.IssuedAt) {
			continue
		}
		revenue += inv.Amount
		active[inv.CustomerID] = true
	}
	return revenue, len(active)
}

func expenseTotal(expenses []models.Expense, r models.DateRange) float64 {
	var total float64
	for _, e := range expenses {
		if r.Contains(e.IncurredAt) {
			total += e.Amount
		}
	}
	return total
}

// =============================================================================
// COMPONENT SCORERS
// Each starts from a 50 base and applies bounded additive adjustments.
// =============================================================================

func scoreCashFlow(ds *models.AnalyticsDataset, r ratios.FinancialRatios, bench config.Health, revenue, expenses float64) (float64, []string) {
	score := 50.0
	var recs []string

	var received float64
	for _, p := range ds.Payments {
		if ds.Range.Contains(p.ReceivedAt) {
			received += p.Amount
		}
	}
	operatingCashFlow := received - expenses

	if revenue > 0 && operatingCashFlow/revenue > bench.CashFlowToRevenue {
		score += 20
	}
	if operatingCashFlow < 0 {
		score -= 25
		recs = append(recs, "Operating cash flow is negative; tighten collections and defer discretionary spend")
	}

	// Reserve months: cash on hand against the average monthly burn
	months := float64(ds.Range.Days()) / 30
	if months > 0 && expenses > 0 {
		burn := expenses / months
		if r.BalanceSheet.Cash/burn >= 3 {
			score += 15
		} else {
			recs = append(recs, "Cash reserve covers less than three months of expenses")
		}
	}

	return clampScore(score), recs
}

func scoreProfitability(r ratios.FinancialRatios, bench config.Health) (float64, []string) {
	score := 50.0
	var recs []string

	nm := r.Profitability.NetMargin
	if nm > bench.NetMargin {
		score += 20
	}
	if r.Profitability.GrossMargin > 40 {
		score += 10
	}
	if nm < 0 {
		score -= 30
		recs = append(recs, "The business is running at a loss; revisit pricing and fixed costs")
	} else if nm < 5 {
		score -= 15
		recs = append(recs, "Net margin is under 5%; small cost shocks can push the business into a loss")
	}

	return clampScore(score), recs
}

// scoreGrowth compares the current range against the immediately preceding
// window of the same length. When the dataset carries no prior activity the
// component stays neutral at 50.
func scoreGrowth(ds *models.AnalyticsDataset, revenue float64, customers int) (float64, []string, models.TrendDirection) {
	span := ds.Range.End.Sub(ds.Range.Start)
	prior := models.DateRange{Start: ds.Range.Start.Add(-span - 24*time.Hour), End: ds.Range.Start.Add(-24 * time.Hour)}

	priorRevenue, priorCustomers := flowTotals(ds.Invoices, prior)
	if priorRevenue == 0 && priorCustomers == 0 {
		return 50, nil, models.TrendStable
	}

	score := 50.0
	var recs []string

	revTrend := models.TrendStable
	growth := stats.PercentageChange(revenue, priorRevenue)
	switch {
	case growth > 10:
		score += 25
		revTrend = models.TrendIncreasing
	case growth > 0:
		score += 10
		revTrend = models.TrendIncreasing
	case growth < 0:
		score -= 20
		revTrend = models.TrendDecreasing
		recs = append(recs, "Revenue declined against the prior period; review pipeline and repeat business")
	}

	if customers > priorCustomers {
		score += 10
	} else if customers < priorCustomers {
		score -= 10
		recs = append(recs, "Fewer customers were invoiced than in the prior period")
	}

	return clampScore(score), recs, revTrend
}

func scoreEfficiency(ds *models.AnalyticsDataset, r ratios.FinancialRatios, revenue, expenses float64) (float64, []string) {
	score := 50.0
	var recs []string

	if r.Efficiency.AssetTurnover > 1 {
		score += 15
	}

	costRatio := stats.SafeDiv(expenses, revenue)
	if revenue > 0 && costRatio < 0.85 {
		score += 15
	} else if revenue > 0 {
		recs = append(recs, "Expenses absorb more than 85% of revenue")
	}

	perCustomer := stats.SafeDiv(revenue, float64(len(ds.Customers)))
	if perCustomer > 2000 {
		score += 10
	} else if len(ds.Customers) > 0 {
		recs = append(recs, "Revenue per customer is low; consider packaging or minimum engagement sizes")
	}

	return clampScore(score), recs
}

func scoreStability(ds *models.AnalyticsDataset, r ratios.FinancialRatios, revenue float64) (float64, []string) {
	score := 50.0
	var recs []string

	// Largest single customer's share of revenue
	byCustomer := make(map[uuid.UUID]float64)
	for _, inv := range ds.Invoices {
		if inv.Status == models.InvoiceDraft || !ds.Range.Contains(inv.IssuedAt) {
			continue
		}
		byCustomer[inv.CustomerID] += inv.Amount
	}
	var largest float64
	for _, v := range byCustomer {
		if v > largest {
			largest = v
		}
	}
	share := stats.SafeDiv(largest, revenue) * 100

	if share > 50 {
		score -= 25
		recs = append(recs, "More than half of revenue comes from one customer; losing them would be existential")
	} else if share > 30 {
		score -= 15
		recs = append(recs, "Revenue is concentrated in a single large customer")
	}

	if r.Leverage.DebtToEquity > 0.6 {
		score -= 15
		recs = append(recs, "Leverage is high relative to equity")
	}

	switch n := len(ds.Customers); {
	case n >= 20:
		score += 15
	case n >= 10:
		score += 10
	case n >= 5:
		score += 5
	}

	return clampScore(score), recs
}

// SortedComponentNames is a helper for stable iteration in reports.
func SortedComponentNames(components map[string]Component) []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
