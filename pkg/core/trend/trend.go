// Package trend fits a linear trend over a bucketed time series, measures
// seasonality strength, and flags statistical outliers.
package trend

import (
	"time"

	"finpulse/pkg/core/stats"
	"finpulse/pkg/models"
)

const (
	// Slope thresholds for direction classification.
	directionThreshold = 0.1

	// Normalization scale for trend strength: strength = |slope|/scale
	// clamped to 1. Tunable; the absolute value is not load-bearing, it only
	// has to rank flat vs. steep series sensibly for typical amounts.
	slopeStrengthScale = 1000.0

	// Seasonality needs a full year of monthly buckets before the CV test
	// says anything meaningful.
	seasonalityMinPoints = 12
	seasonalityCVCutoff  = 0.2

	anomalyZCutoff  = 2.5
	anomalyZSevere  = 3.0
)

type Seasonality struct {
	Detected bool    `json:"detected"`
	Pattern  string  `json:"pattern,omitempty"`
	Strength float64 `json:"strength,omitempty"`
}

type AnomalyPoint struct {
	Period   string          `json:"period"`
	Value    float64         `json:"value"`
	ZScore   float64         `json:"z_score"`
	Severity models.Severity `json:"severity"`
	Date     time.Time       `json:"date"`
}

type Analysis struct {
	Direction   models.TrendDirection `json:"direction"`
	Strength    float64               `json:"strength"`
	Seasonality Seasonality           `json:"seasonality"`
	Anomalies   []AnomalyPoint        `json:"anomalies"`
}

// Analyze runs the full trend pass over a chronologically ordered series.
// Fewer than two points is not an error: the series is simply flat.
func Analyze(series []models.TimeSeriesPoint) Analysis {
	if len(series) < 2 {
		return Analysis{Direction: models.TrendStable, Anomalies: []AnomalyPoint{}}
	}

	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}

	reg := stats.LinearRegression(values)

	direction := models.TrendStable
	if reg.Slope > directionThreshold {
		direction = models.TrendIncreasing
	} else if reg.Slope < -directionThreshold {
		direction = models.TrendDecreasing
	}

	strength := reg.Slope / slopeStrengthScale
	if strength < 0 {
		strength = -strength
	}
	if strength > 1 {
		strength = 1
	}

	return Analysis{
		Direction:   direction,
		Strength:    strength,
		Seasonality: detectSeasonality(series),
		Anomalies:   detectAnomalies(series, values),
	}
}

// detectSeasonality groups values by calendar month and tests the coefficient
// of variation of the bucket means. High spread across months means the series
// has a repeating monthly shape.
func detectSeasonality(series []models.TimeSeriesPoint) Seasonality {
	if len(series) < seasonalityMinPoints {
		return Seasonality{}
	}

	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)
	for _, p := range series {
		m := p.Date.Month()
		sums[m] += p.Value
		counts[m]++
	}

	means := make([]float64, 0, len(sums))
	for m, sum := range sums {
		means = append(means, sum/float64(counts[m]))
	}

	mean := stats.Mean(means)
	if mean == 0 {
		return Seasonality{}
	}

	cv := stats.StandardDeviation(means) / mean
	if cv < 0 {
		cv = -cv
	}

	if cv <= seasonalityCVCutoff {
		return Seasonality{}
	}

	strength := cv
	if strength > 1 {
		strength = 1
	}
	return Seasonality{Detected: true, Pattern: "monthly", Strength: strength}
}

// detectAnomalies z-scores every point against the whole series. A constant
// series has zero deviation and therefore no anomalies.
func detectAnomalies(series []models.TimeSeriesPoint, values []float64) []AnomalyPoint {
	anomalies := []AnomalyPoint{}

	mean := stats.Mean(values)
	sd := stats.StandardDeviation(values)
	if sd == 0 {
		return anomalies
	}

	for _, p := range series {
		z := (p.Value - mean) / sd
		if z < 0 {
			z = -z
		}
		if z <= anomalyZCutoff {
			continue
		}

		severity := models.SeverityMedium
		if z > anomalyZSevere {
			severity = models.SeverityHigh
		}
		anomalies = append(anomalies, AnomalyPoint{
			Period:   p.Period,
			Value:    p.Value,
			ZScore:   z,
			Severity: severity,
			Date:     p.Date,
		})
	}
	return anomalies
}
