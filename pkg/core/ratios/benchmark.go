package ratios

import (
	"fmt"
	"strings"

	"finpulse/pkg/core/config"
)

// Recommendation trigger thresholds.
const (
	currentRatioFloor = 1.2
	netMarginFloor    = 8.0
	debtToEquityCeil  = 0.6
)

type BenchmarkBucket string

const (
	BucketAbove BenchmarkBucket = "ABOVE"
	BucketBelow BenchmarkBucket = "BELOW"
)

type BenchmarkEntry struct {
	Value     float64         `json:"value"`
	Benchmark float64         `json:"benchmark"`
	Bucket    BenchmarkBucket `json:"bucket"`
}

type BenchmarkComparison struct {
	Sector          string         `json:"sector"`
	CurrentRatio    BenchmarkEntry `json:"current_ratio"`
	NetMargin       BenchmarkEntry `json:"net_margin"`
	Recommendations []string       `json:"recommendations"`
}

// CompareToBenchmark scores current ratio and net margin against the sector
// table. Unknown sectors fall back to the "default" row.
func CompareToBenchmark(r FinancialRatios, sector string, table map[string]config.Benchmark) BenchmarkComparison {
	key := strings.ToLower(sector)
	bench, ok := table[key]
	if !ok {
		key = "default"
		bench = table[key]
	}

	bucket := func(value, benchmark float64) BenchmarkBucket {
		if value >= benchmark {
			return BucketAbove
		}
		return BucketBelow
	}

	cmp := BenchmarkComparison{
		Sector: key,
		CurrentRatio: BenchmarkEntry{
			Value:     r.Liquidity.CurrentRatio,
			Benchmark: bench.CurrentRatio,
			Bucket:    bucket(r.Liquidity.CurrentRatio, bench.CurrentRatio),
		},
		NetMargin: BenchmarkEntry{
			Value:     r.Profitability.NetMargin,
			Benchmark: bench.NetMargin,
			Bucket:    bucket(r.Profitability.NetMargin, bench.NetMargin),
		},
		Recommendations: []string{},
	}

	if r.Liquidity.CurrentRatio < currentRatioFloor {
		cmp.Recommendations = append(cmp.Recommendations,
			fmt.Sprintf("Current ratio %.2f is below %.1f; build short-term liquidity before taking on new obligations", r.Liquidity.CurrentRatio, currentRatioFloor))
	}
	if r.Profitability.NetMargin < netMarginFloor {
		cmp.Recommendations = append(cmp.Recommendations,
			fmt.Sprintf("Net margin %.1f%% is under %.0f%%; review pricing and the largest expense categories", r.Profitability.NetMargin, netMarginFloor))
	}
	if r.Leverage.DebtToEquity > debtToEquityCeil {
		cmp.Recommendations = append(cmp.Recommendations,
			fmt.Sprintf("Debt-to-equity %.2f exceeds %.1f; prioritize paying down liabilities", r.Leverage.DebtToEquity, debtToEquityCeil))
	}
	return cmp
}
