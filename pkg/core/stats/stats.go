// Package stats holds the statistical primitives shared by every analytics
// engine. All functions are pure; degenerate inputs resolve to zero values,
// never NaN or Inf.
package stats

import "math"

// =============================================================================
// REGRESSION
// =============================================================================

// Regression is an OLS fit of value against index 0..n-1.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// LinearRegression fits y = intercept + slope*x over x = 0..len(values)-1.
// Callers must guard len(values) >= 2; with fewer points the fit degenerates
// and the zero Regression is returned.
func LinearRegression(values []float64) Regression {
	n := float64(len(values))
	if n < 2 {
		return Regression{}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return Regression{}
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	// R^2 = 1 - SSres/SStot
	meanY := sumY / n
	var ssRes, ssTot float64
	for i, y := range values {
		fit := intercept + slope*float64(i)
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - meanY) * (y - meanY)
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
		// Floating error can push it marginally outside [0,1]
		if r2 < 0 {
			r2 = 0
		}
		if r2 > 1 {
			r2 = 1
		}
	}

	return Regression{Slope: slope, Intercept: intercept, RSquared: r2}
}

// =============================================================================
// DISPERSION & AVERAGES
// =============================================================================

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StandardDeviation is the population standard deviation (divide by n).
// Every caller in the core uses the population form so z-scores and CVs are
// comparable across engines.
func StandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var variance float64
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// MovingAverage uses a trailing window: index i averages
// values[max(0, i-window+1) .. i]. Early indexes average what exists.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 0 || len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		for j := start; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(i-start+1)
	}
	return out
}

// =============================================================================
// CHANGE & CORRELATION
// =============================================================================

// PercentageChange returns the percent change from previous to current.
// A zero previous value maps to 100 when current is positive and 0 otherwise,
// so a category appearing from nothing reads as "+100%" instead of dividing
// by zero.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / math.Abs(previous) * 100
}

// Correlation is the Pearson coefficient. Mismatched lengths, empty input,
// or a zero denominator all return 0.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	meanX := Mean(x)
	meanY := Mean(y)

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return 0
	}
	return cov / denom
}

// SafeDiv guards the zero denominator; ratio engines additionally treat
// negative denominators as degenerate via SafeRatio.
func SafeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// SafeRatio is SafeDiv with the stricter financial-ratio rule: a zero or
// negative denominator yields 0.
func SafeRatio(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return numerator / denominator
}
