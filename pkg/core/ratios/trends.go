package ratios

import (
	"finpulse/pkg/core/period"
	"finpulse/pkg/models"
)

// TrendPoint carries the per-period ratio snapshot. The legacy system filled
// these with random placeholders; here each point is the real ratio math run
// over that period's flows against the current balance positions.
type TrendPoint struct {
	Period        string  `json:"period"`
	CurrentRatio  float64 `json:"current_ratio"`
	NetMargin     float64 `json:"net_margin"`
	AssetTurnover float64 `json:"asset_turnover"`
}

// Trends computes the ratio series per bucket. Flow figures (revenue,
// expenses) are restricted to each bucket; balance figures are the dataset's
// current positions, since historical balance snapshots are not part of the
// dataset contract.
func Trends(ds *models.AnalyticsDataset, groupBy models.GroupBy, costRatio float64) ([]TrendPoint, error) {
	buckets, err := period.Split(ds.Range, groupBy)
	if err != nil {
		return nil, err
	}

	points := make([]TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		sub := &models.AnalyticsDataset{
			Range:    ds.Range,
			Accounts: ds.Accounts,
		}
		for _, inv := range ds.Invoices {
			if period.Label(inv.IssuedAt, groupBy) == b.Label {
				sub.Invoices = append(sub.Invoices, inv)
			}
		}
		for _, e := range ds.Expenses {
			if period.Label(e.IncurredAt, groupBy) == b.Label {
				sub.Expenses = append(sub.Expenses, e)
			}
		}

		r := Compute(sub, costRatio)
		points = append(points, TrendPoint{
			Period:        b.Label,
			CurrentRatio:  r.Liquidity.CurrentRatio,
			NetMargin:     r.Profitability.NetMargin,
			AssetTurnover: r.Efficiency.AssetTurnover,
		})
	}
	return points, nil
}
