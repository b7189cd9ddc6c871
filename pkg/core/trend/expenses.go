package trend

import (
	"sort"

	"finpulse/pkg/core/period"
	"finpulse/pkg/core/stats"
	"finpulse/pkg/models"
)

// minPatternObservations: categories with fewer raw expense records carry too
// little signal and are excluded from the output, not zero-filled.
const minPatternObservations = 3

type ExpensePattern struct {
	Category            string                `json:"category"`
	Direction           models.TrendDirection `json:"direction"`
	ChangeRatePercent   float64               `json:"change_rate_percent"`
	Confidence          float64               `json:"confidence"`
	SeasonalityDetected bool                  `json:"seasonality_detected"`
	Recommendations     []string              `json:"recommendations"`
}

// AnalyzeExpensePatterns buckets each expense category into its own series
// and reports per-category direction, change rate, and seasonality. Output is
// sorted by category for stable serialization.
func AnalyzeExpensePatterns(expenses []models.Expense, r models.DateRange, groupBy models.GroupBy) ([]ExpensePattern, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	// Baseline rows fetched from before the range carry no signal for the
	// requested period and must not count toward the observation minimum.
	byCategory := make(map[string][]period.Observation)
	counts := make(map[string]int)
	for _, e := range expenses {
		if !r.Contains(e.IncurredAt) {
			continue
		}
		byCategory[e.Category] = append(byCategory[e.Category], period.Observation{Date: e.IncurredAt, Amount: e.Amount})
		counts[e.Category]++
	}

	patterns := make([]ExpensePattern, 0, len(byCategory))
	for category, obs := range byCategory {
		if counts[category] < minPatternObservations {
			continue
		}

		series, err := period.BuildSeries(obs, r, groupBy)
		if err != nil {
			return nil, err
		}

		analysis := Analyze(series)

		changeRate := 0.0
		if len(series) >= 2 {
			changeRate = stats.PercentageChange(series[len(series)-1].Value, series[0].Value)
		}

		values := make([]float64, len(series))
		for i, p := range series {
			values[i] = p.Value
		}
		confidence := stats.LinearRegression(values).RSquared

		patterns = append(patterns, ExpensePattern{
			Category:            category,
			Direction:           analysis.Direction,
			ChangeRatePercent:   changeRate,
			Confidence:          confidence,
			SeasonalityDetected: analysis.Seasonality.Detected,
			Recommendations:     expenseRecommendations(category, analysis, changeRate),
		})
	}

	sort.Slice(patterns, func(i, j int) bool { return patterns[i].Category < patterns[j].Category })
	return patterns, nil
}

func expenseRecommendations(category string, analysis Analysis, changeRate float64) []string {
	recs := []string{}
	if analysis.Direction == models.TrendIncreasing && changeRate > 20 {
		recs = append(recs, "Spending in "+category+" is growing quickly; review vendors and recent commitments")
	} else if analysis.Direction == models.TrendIncreasing {
		recs = append(recs, "Monitor the upward drift in "+category)
	}
	if analysis.Seasonality.Detected {
		recs = append(recs, "Budget for recurring seasonal swings in "+category)
	}
	if len(analysis.Anomalies) > 0 {
		recs = append(recs, "Investigate outlier charges in "+category)
	}
	return recs
}
