// Package anomaly flags statistical outliers in categorized expense activity
// and summarizes spending pattern shifts (spikes, dips, new and dormant
// categories).
package anomaly

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"finpulse/pkg/core/stats"
	"finpulse/pkg/models"
)

const (
	// A category needs this many observations before its distribution is
	// worth testing.
	minObservations = 5

	severeZ = 3.0

	// Spike/dip classification relative to the category mean.
	spikeRatio = 1.5
	dipRatio   = 0.5

	// Window for "new" and "dormant" category checks.
	recentWindowMonths = 3
	newCategoryMaxObs  = 3

	maxAlerts = 10
)

// zThreshold maps sensitivity to the z cutoff. Lower cutoff = more sensitive.
func zThreshold(level models.SensitivityLevel) (float64, error) {
	switch level {
	case models.SensitivityLow:
		return 3.0, nil
	case models.SensitivityMedium:
		return 2.5, nil
	case models.SensitivityHigh:
		return 2.0, nil
	}
	return 0, &models.ConfigurationError{Param: "sensitivityLevel", Value: string(level)}
}

type Finding struct {
	Category       string          `json:"category"`
	Date           time.Time       `json:"date"`
	Amount         float64         `json:"amount"`
	ExpectedAmount float64         `json:"expected_amount"`
	Variance       float64         `json:"variance"`
	AnomalyScore   float64         `json:"anomaly_score"`
	Severity       models.Severity `json:"severity"`
	Reason         string          `json:"reason"`
}

type PatternSummary struct {
	Spikes            int      `json:"spikes"`
	Dips              int      `json:"dips"`
	NewCategories     []string `json:"new_categories"`
	DormantCategories []string `json:"dormant_categories"`
}

type Alert struct {
	ID       uuid.UUID       `json:"id"`
	Category string          `json:"category"`
	Severity models.Severity `json:"severity"`
	Message  string          `json:"message"`
}

type Report struct {
	Findings []Finding      `json:"findings"`
	Summary  PatternSummary `json:"summary"`
	Alerts   []Alert        `json:"alerts"`
}

// alertNamespace seeds deterministic alert IDs: identical input yields
// identical output, so reruns stay idempotent.
var alertNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("finpulse/anomaly"))

// Detect runs per-category outlier detection over the expenses. now anchors
// the recency windows for the new/dormant summaries and must be passed
// explicitly; the detector itself never reads the clock.
func Detect(expenses []models.Expense, sensitivity models.SensitivityLevel, now time.Time) (Report, error) {
	threshold, err := zThreshold(sensitivity)
	if err != nil {
		return Report{}, err
	}

	byCategory := make(map[string][]models.Expense)
	for _, e := range expenses {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	report := Report{Findings: []Finding{}, Alerts: []Alert{}}
	report.Summary = summarizePatterns(byCategory, categories, now)

	for _, category := range categories {
		items := byCategory[category]
		if len(items) < minObservations {
			continue
		}
		report.Findings = append(report.Findings, detectCategory(category, items, threshold)...)
	}

	// Highest score first; ties keep category order stable
	sort.SliceStable(report.Findings, func(i, j int) bool {
		return report.Findings[i].AnomalyScore > report.Findings[j].AnomalyScore
	})

	report.Alerts = synthesizeAlerts(report)
	return report, nil
}

// detectCategory scores each amount against the rest of its category
// (leave-one-out), so a single extreme charge cannot inflate the baseline
// enough to mask itself.
func detectCategory(category string, items []models.Expense, threshold float64) []Finding {
	var findings []Finding

	values := make([]float64, len(items))
	for i, e := range items {
		values[i] = e.Amount
	}

	for i, e := range items {
		rest := make([]float64, 0, len(values)-1)
		rest = append(rest, values[:i]...)
		rest = append(rest, values[i+1:]...)

		mean := stats.Mean(rest)
		sd := stats.StandardDeviation(rest)
		if sd == 0 {
			continue
		}

		z := (e.Amount - mean) / sd
		if z < 0 {
			z = -z
		}
		if z <= threshold {
			continue
		}

		severity := models.SeverityMedium
		if z > severeZ {
			severity = models.SeverityHigh
		}

		direction := "above"
		if e.Amount < mean {
			direction = "below"
		}

		findings = append(findings, Finding{
			Category:       category,
			Date:           e.IncurredAt,
			Amount:         e.Amount,
			ExpectedAmount: mean,
			Variance:       e.Amount - mean,
			AnomalyScore:   z,
			Severity:       severity,
			Reason: fmt.Sprintf("%s charge of %.2f is %.1f standard deviations %s the typical %.2f",
				category, e.Amount, z, direction, mean),
		})
	}
	return findings
}

func summarizePatterns(byCategory map[string][]models.Expense, categories []string, now time.Time) PatternSummary {
	summary := PatternSummary{NewCategories: []string{}, DormantCategories: []string{}}
	cutoff := now.AddDate(0, -recentWindowMonths, 0)

	for _, category := range categories {
		items := byCategory[category]

		mean := 0.0
		for _, e := range items {
			mean += e.Amount
		}
		mean /= float64(len(items))

		var earliest, latest time.Time
		recent := 0
		for i, e := range items {
			if mean > 0 && e.Amount > mean*spikeRatio {
				summary.Spikes++
			}
			if mean > 0 && e.Amount < mean*dipRatio {
				summary.Dips++
			}
			if i == 0 || e.IncurredAt.Before(earliest) {
				earliest = e.IncurredAt
			}
			if e.IncurredAt.After(latest) {
				latest = e.IncurredAt
			}
			if e.IncurredAt.After(cutoff) {
				recent++
			}
		}

		if earliest.After(cutoff) && len(items) <= newCategoryMaxObs {
			summary.NewCategories = append(summary.NewCategories, category)
		}
		if recent == 0 && latest.Before(cutoff) && len(items) > 0 {
			summary.DormantCategories = append(summary.DormantCategories, category)
		}
	}
	return summary
}

func synthesizeAlerts(report Report) []Alert {
	alerts := []Alert{}

	for _, f := range report.Findings {
		if f.Severity != models.SeverityHigh {
			continue
		}
		if len(alerts) >= maxAlerts {
			break
		}
		key := fmt.Sprintf("%s|%s|%.2f", f.Category, f.Date.Format("2006-01-02"), f.Amount)
		alerts = append(alerts, Alert{
			ID:       uuid.NewSHA1(alertNamespace, []byte(key)),
			Category: f.Category,
			Severity: f.Severity,
			Message:  f.Reason,
		})
	}

	for _, category := range report.Summary.DormantCategories {
		if len(alerts) >= maxAlerts {
			break
		}
		alerts = append(alerts, Alert{
			ID:       uuid.NewSHA1(alertNamespace, []byte("dormant|"+category)),
			Category: category,
			Severity: models.SeverityMedium,
			Message:  fmt.Sprintf("no %s activity in the last %d months despite prior history", category, recentWindowMonths),
		})
	}
	return alerts
}
