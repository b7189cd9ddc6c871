// Package profitability computes per-customer profit after direct costs and
// an optional shared-cost allocation, plus risk scoring and ranking.
package profitability

import (
	"sort"

	"github.com/google/uuid"

	"finpulse/pkg/core/stats"
	"finpulse/pkg/models"
)

// Allocation basis weights. The 10% "time share" component is approximated
// with revenue share: true activity-based time tracking is not available in
// the dataset, so this is a declared simplification, not ABC costing.
const (
	revenueShareWeight     = 0.6
	transactionShareWeight = 0.3
	timeShareWeight        = 0.1
)

// Risk scoring tiers.
const (
	marginCritical = 5
	marginThin     = 15

	paymentSlowDays = 45
	paymentLateDays = 30

	concentrationHeavy = 30 // percent of total revenue
	concentrationNoted = 15

	riskHighScore   = 5
	riskMediumScore = 3
)

type Params struct {
	IncludeCostAllocation bool
	MinProfitThreshold    *float64
	// IndustryCostRatio approximates direct costs as a share of revenue.
	// Zero means "use the configured default" at the call site.
	IndustryCostRatio float64
}

type CustomerProfitability struct {
	CustomerID          uuid.UUID        `json:"customer_id"`
	CustomerName        string           `json:"customer_name"`
	Revenue             float64          `json:"revenue"`
	DirectCosts         float64          `json:"direct_costs"`
	AllocatedCosts      float64          `json:"allocated_costs"`
	GrossProfit         float64          `json:"gross_profit"`
	NetProfit           float64          `json:"net_profit"`
	ProfitMarginPercent float64          `json:"profit_margin_percent"`
	RevenueSharePercent float64          `json:"revenue_share_percent"`
	AvgPaymentDays      float64          `json:"avg_payment_days"`
	Ranking             int              `json:"ranking"`
	RiskLevel           models.RiskLevel `json:"risk_level"`
}

// Analyze computes profitability for every customer in the dataset. Output is
// ordered by ranking (net profit descending, input order breaking ties);
// rankings are a dense 1..N permutation.
func Analyze(ds *models.AnalyticsDataset, p Params) []CustomerProfitability {
	if p.IndustryCostRatio <= 0 {
		p.IndustryCostRatio = 0.6
	}

	type accum struct {
		revenue      float64
		transactions int
		paymentDays  float64
		paymentsSeen int
	}
	byCustomer := make(map[uuid.UUID]*accum, len(ds.Customers))
	for _, c := range ds.Customers {
		byCustomer[c.ID] = &accum{}
	}

	// Only flows inside the requested period count; the dataset may carry
	// baseline rows from before the range.
	var totalRevenue float64
	var totalTransactions int
	for _, inv := range ds.Invoices {
		if inv.Status == models.InvoiceDraft || !ds.Range.Contains(inv.IssuedAt) {
			continue
		}
		a, ok := byCustomer[inv.CustomerID]
		if !ok {
			continue // invoice for a customer outside the dataset
		}
		a.revenue += inv.Amount
		a.transactions++
		totalRevenue += inv.Amount
		totalTransactions++
		if inv.PaidAt != nil {
			a.paymentDays += inv.PaidAt.Sub(inv.IssuedAt).Hours() / 24
			a.paymentsSeen++
		}
	}

	var totalExpenses float64
	for _, e := range ds.Expenses {
		if ds.Range.Contains(e.IncurredAt) {
			totalExpenses += e.Amount
		}
	}

	results := make([]CustomerProfitability, 0, len(ds.Customers))
	for _, c := range ds.Customers {
		a := byCustomer[c.ID]

		revenueShare := stats.SafeDiv(a.revenue, totalRevenue)
		transactionShare := stats.SafeDiv(float64(a.transactions), float64(totalTransactions))

		directCosts := a.revenue * p.IndustryCostRatio

		allocated := 0.0
		if p.IncludeCostAllocation {
			allocated = totalExpenses*revenueShare*revenueShareWeight +
				totalExpenses*transactionShare*transactionShareWeight +
				totalExpenses*revenueShare*timeShareWeight
		}

		grossProfit := a.revenue - directCosts
		netProfit := grossProfit - allocated
		margin := stats.SafeDiv(netProfit, a.revenue) * 100

		avgPaymentDays := stats.SafeDiv(a.paymentDays, float64(a.paymentsSeen))

		cp := CustomerProfitability{
			CustomerID:          c.ID,
			CustomerName:        c.Name,
			Revenue:             a.revenue,
			DirectCosts:         directCosts,
			AllocatedCosts:      allocated,
			GrossProfit:         grossProfit,
			NetProfit:           netProfit,
			ProfitMarginPercent: margin,
			RevenueSharePercent: revenueShare * 100,
			AvgPaymentDays:      avgPaymentDays,
		}
		cp.RiskLevel = riskLevel(cp)

		if p.MinProfitThreshold != nil && cp.NetProfit < *p.MinProfitThreshold {
			continue
		}
		results = append(results, cp)
	}

	// Rank by net profit descending; SliceStable keeps input order on ties
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].NetProfit > results[j].NetProfit
	})
	for i := range results {
		results[i].Ranking = i + 1
	}
	return results
}

// riskLevel scores three independent signals as tiers and sums them:
// thin margins, slow payment, and revenue concentration.
func riskLevel(cp CustomerProfitability) models.RiskLevel {
	score := 0

	if cp.ProfitMarginPercent < marginCritical {
		score += 3
	} else if cp.ProfitMarginPercent < marginThin {
		score += 1
	}

	if cp.AvgPaymentDays > paymentSlowDays {
		score += 2
	} else if cp.AvgPaymentDays > paymentLateDays {
		score += 1
	}

	if cp.RevenueSharePercent > concentrationHeavy {
		score += 2
	} else if cp.RevenueSharePercent > concentrationNoted {
		score += 1
	}

	switch {
	case score >= riskHighScore:
		return models.RiskHigh
	case score >= riskMediumScore:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// AvgPaymentTime reports the dataset-wide mean days from issue to payment.
func AvgPaymentTime(invoices []models.Invoice) float64 {
	var days float64
	var seen int
	for _, inv := range invoices {
		if inv.PaidAt == nil {
			continue
		}
		days += inv.PaidAt.Sub(inv.IssuedAt).Hours() / 24
		seen++
	}
	return stats.SafeDiv(days, float64(seen))
}
