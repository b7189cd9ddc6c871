package forecast

import (
	"time"

	"finpulse/pkg/core/period"
	"finpulse/pkg/core/stats"
	"finpulse/pkg/models"
)

// =============================================================================
// LINEAR MODEL
// =============================================================================

// forecastLinear extends the OLS fit: step h (0-based) predicts
// intercept + slope*(n+h). Confidence starts from the fit quality and decays
// with distance; the band width scales with the predicted value.
func (f *Forecaster) forecastLinear(series []models.TimeSeriesPoint, horizon int, groupBy models.GroupBy) []Point {
	vals := values(series)
	reg := stats.LinearRegression(vals)
	n := float64(len(vals))

	baseConf := clampConfidence(0.5+0.45*reg.RSquared, linearConfFloor)

	buckets := futureBuckets(series[len(series)-1].Date, horizon, groupBy)
	points := make([]Point, 0, horizon)
	for h, b := range buckets {
		predicted := reg.Intercept + reg.Slope*(n+float64(h))
		conf := clampConfidence(baseConf-confidenceDecay*float64(h), linearConfFloor)
		margin := predicted * (1 - conf) * 0.5

		points = append(points, Point{
			Period:             b.Label,
			Date:               b.Start,
			PredictedValue:     predicted,
			Confidence:         conf,
			ConfidenceInterval: interval(predicted, margin),
			ContributingFactors: []ContributingFactor{
				{
					Factor:      "trend",
					Impact:      reg.Slope,
					Description: "per-period change from the fitted linear trend",
				},
			},
		})
	}
	return points
}

// =============================================================================
// EXPONENTIAL SMOOTHING
// =============================================================================

const smoothingAlpha = 0.3

// forecastExponential holds the last smoothed level flat across the horizon.
// The band is a 95% normal approximation over the one-step-ahead MAE.
func (f *Forecaster) forecastExponential(series []models.TimeSeriesPoint, horizon int, groupBy models.GroupBy) []Point {
	vals := values(series)

	smoothed := vals[0]
	var absErrSum float64
	for i := 1; i < len(vals); i++ {
		diff := vals[i] - smoothed
		if diff < 0 {
			absErrSum -= diff
		} else {
			absErrSum += diff
		}
		smoothed = smoothingAlpha*vals[i] + (1-smoothingAlpha)*smoothed
	}
	mae := absErrSum / float64(len(vals)-1)
	margin := mae * 1.96

	baseConf := 0.9
	if mean := stats.Mean(vals); mean > 0 {
		baseConf = clampConfidence(1-mae/mean, expConfFloor)
		if baseConf > 0.9 {
			baseConf = 0.9
		}
	}

	buckets := futureBuckets(series[len(series)-1].Date, horizon, groupBy)
	points := make([]Point, 0, horizon)
	for h, b := range buckets {
		conf := clampConfidence(baseConf-confidenceDecay*float64(h), expConfFloor)
		points = append(points, Point{
			Period:             b.Label,
			Date:               b.Start,
			PredictedValue:     smoothed,
			Confidence:         conf,
			ConfidenceInterval: interval(smoothed, margin),
			ContributingFactors: []ContributingFactor{
				{
					Factor:      "recent_level",
					Impact:      smoothed,
					Description: "exponentially smoothed recent level held flat",
				},
			},
		})
	}
	return points
}

// =============================================================================
// SEASONAL DECOMPOSITION
// =============================================================================

const seasonalTrendWindow = 3

// forecastSeasonal decomposes the series into a moving-average trend plus a
// per-calendar-month seasonal component, then applies the three-season and
// holiday multipliers from config for each target bucket.
func (f *Forecaster) forecastSeasonal(series []models.TimeSeriesPoint, horizon int, groupBy models.GroupBy) []Point {
	vals := values(series)
	trendComp := stats.MovingAverage(vals, seasonalTrendWindow)

	// Seasonal component: mean detrended value per calendar month.
	seasSum := make(map[time.Month]float64)
	seasCount := make(map[time.Month]int)
	for i, p := range series {
		m := p.Date.Month()
		seasSum[m] += vals[i] - trendComp[i]
		seasCount[m]++
	}
	seasonalOf := func(m time.Month) float64 {
		if seasCount[m] == 0 {
			return 0
		}
		return seasSum[m] / float64(seasCount[m])
	}

	// Residual spread drives the band width.
	residuals := make([]float64, len(vals))
	for i, p := range series {
		residuals[i] = vals[i] - trendComp[i] - seasonalOf(p.Date.Month())
	}
	margin := stats.StandardDeviation(residuals) * 1.96

	lastTrend := trendComp[len(trendComp)-1]

	buckets := futureBuckets(series[len(series)-1].Date, horizon, groupBy)
	points := make([]Point, 0, horizon)
	for h, b := range buckets {
		base := lastTrend + seasonalOf(b.Start.Month())

		seasonMult := f.seasonMultiplier(b.Start)
		holidayMult := 1.0
		if m, ok := f.seasonal.HolidayMultipliers[int(b.Start.Month())]; ok {
			holidayMult = m
		}

		predicted := base * seasonMult * holidayMult
		conf := clampConfidence(0.7-confidenceDecay*float64(h), seasonalConfFloor)

		factors := []ContributingFactor{
			{
				Factor:      "seasonal_component",
				Impact:      seasonalOf(b.Start.Month()),
				Description: "average deviation from trend for this calendar month",
			},
			{
				Factor:      "season_multiplier",
				Impact:      seasonMult - 1,
				Description: "three-season activity adjustment",
			},
		}
		if holidayMult != 1 {
			factors = append(factors, ContributingFactor{
				Factor:      "holiday_multiplier",
				Impact:      holidayMult - 1,
				Description: "holiday-month demand adjustment",
			})
		}

		points = append(points, Point{
			Period:              b.Label,
			Date:                b.Start,
			PredictedValue:      predicted,
			Confidence:          conf,
			ConfidenceInterval:  interval(predicted, margin),
			ContributingFactors: factors,
		})
	}
	return points
}

func (f *Forecaster) seasonMultiplier(t time.Time) float64 {
	switch period.SeasonOf(t) {
	case period.SeasonHigh:
		return f.seasonal.HighMultiplier
	case period.SeasonLow:
		return f.seasonal.LowMultiplier
	default:
		return f.seasonal.TransitionMultiplier
	}
}
