package forecast

import (
	"errors"
	"testing"
	"time"

	"finpulse/pkg/core/config"
	"finpulse/pkg/models"
)

func monthlySeries(values []float64) []models.TimeSeriesPoint {
	series := make([]models.TimeSeriesPoint, len(values))
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		d := start.AddDate(0, i, 0)
		series[i] = models.TimeSeriesPoint{Period: d.Format("2006-01"), Value: v, Date: d}
	}
	return series
}

func newForecaster() *Forecaster {
	return New(config.Default().Seasonal)
}

func TestForecastRejectsShortHistory(t *testing.T) {
	_, err := newForecaster().Forecast(monthlySeries([]float64{100, 110}), 3, models.ModelLinear, models.GroupByMonth)
	if err == nil {
		t.Fatal("Expected error for 2 historical periods")
	}
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("Expected InsufficientDataError, got %v", err)
	}
}

func TestForecastRejectsMostlyZeroHistory(t *testing.T) {
	// 4 of 6 periods are zero -> above the 50% cutoff
	_, err := newForecaster().Forecast(monthlySeries([]float64{100, 0, 0, 0, 0, 120}), 3, models.ModelLinear, models.GroupByMonth)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("Expected InsufficientDataError, got %v", err)
	}
}

func TestForecastRejectsBadHorizonAndModel(t *testing.T) {
	series := monthlySeries([]float64{100, 110, 120, 130})

	if _, err := newForecaster().Forecast(series, 0, models.ModelLinear, models.GroupByMonth); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("horizon 0: expected ConfigurationError, got %v", err)
	}
	if _, err := newForecaster().Forecast(series, 3, models.ModelType("arima"), models.GroupByMonth); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("unknown model: expected ConfigurationError, got %v", err)
	}
}

func TestLinearForecastProjectsTrend(t *testing.T) {
	// Exact line y = 100 + 10x over x=0..5. Every future step lands on the
	// line and the fit is perfect, so confidence starts at its 0.95 cap.
	series := monthlySeries([]float64{100, 110, 120, 130, 140, 150})

	res, err := newForecaster().Forecast(series, 3, models.ModelLinear, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Model != models.ModelLinear {
		t.Errorf("Expected linear model, got %s", res.Model)
	}
	if len(res.Points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(res.Points))
	}

	// x = 6, 7, 8 -> 160, 170, 180
	wants := []float64{160, 170, 180}
	for i, want := range wants {
		got := res.Points[i].PredictedValue
		if got < want-1e-6 || got > want+1e-6 {
			t.Errorf("step %d: expected %f, got %f", i, want, got)
		}
	}

	// Periods continue monthly after 2024-06
	if res.Points[0].Period != "2024-07" || res.Points[2].Period != "2024-09" {
		t.Errorf("Unexpected periods: %s .. %s", res.Points[0].Period, res.Points[2].Period)
	}
}

func TestConfidenceMonotonicNonIncreasing(t *testing.T) {
	series := monthlySeries([]float64{100, 95, 130, 110, 140, 120, 160, 135})

	for _, model := range []models.ModelType{models.ModelLinear, models.ModelExponential} {
		res, err := newForecaster().Forecast(series, 12, model, models.GroupByMonth)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", model, err)
		}
		for i := 1; i < len(res.Points); i++ {
			prev, cur := res.Points[i-1].Confidence, res.Points[i].Confidence
			if cur > prev {
				t.Errorf("%s: confidence rose from %f to %f at step %d", model, prev, cur, i)
			}
		}
		for _, p := range res.Points {
			if p.Confidence > 1 {
				t.Errorf("%s: confidence above 1: %f", model, p.Confidence)
			}
		}
	}
}

func TestIntervalLowerBoundClampedToZero(t *testing.T) {
	// Steep decline pushes linear projections toward/below zero; the lower
	// band must never be negative.
	series := monthlySeries([]float64{500, 380, 260, 140, 20})

	res, err := newForecaster().Forecast(series, 6, models.ModelLinear, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range res.Points {
		if p.ConfidenceInterval.Lower < 0 {
			t.Errorf("step %d: negative lower bound %f", i, p.ConfidenceInterval.Lower)
		}
		if p.ConfidenceInterval.Upper < p.ConfidenceInterval.Lower {
			t.Errorf("step %d: inverted interval %+v", i, p.ConfidenceInterval)
		}
	}
}

func TestExponentialForecastFlat(t *testing.T) {
	series := monthlySeries([]float64{100, 104, 98, 102, 101, 99})

	res, err := newForecaster().Forecast(series, 4, models.ModelExponential, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Smoothing holds the last level flat across the horizon
	first := res.Points[0].PredictedValue
	for i, p := range res.Points {
		if p.PredictedValue != first {
			t.Errorf("step %d: expected flat forecast %f, got %f", i, first, p.PredictedValue)
		}
	}
	// The level must sit inside the observed band
	if first < 95 || first > 105 {
		t.Errorf("Smoothed level implausible: %f", first)
	}
}

func TestSeasonalForecastAppliesMultipliers(t *testing.T) {
	// Two years ending in October so the first forecast steps land in the
	// high season (Nov, Dec) and pick up season + holiday multipliers.
	start := time.Date(2022, time.November, 1, 0, 0, 0, 0, time.UTC)
	var series []models.TimeSeriesPoint
	for i := 0; i < 24; i++ {
		d := start.AddDate(0, i, 0)
		series = append(series, models.TimeSeriesPoint{Period: d.Format("2006-01"), Value: 100, Date: d})
	}

	res, err := newForecaster().Forecast(series, 2, models.ModelSeasonal, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Flat series: trend 100, seasonal component 0.
	// November: 100 * 1.1 (high season) * 1.05 (holiday) = 115.5
	// December: 100 * 1.1 * 1.15 = 126.5
	nov, dec := res.Points[0], res.Points[1]
	if nov.Period != "2024-11" || dec.Period != "2024-12" {
		t.Fatalf("Unexpected periods: %s, %s", nov.Period, dec.Period)
	}
	if nov.PredictedValue < 115.49 || nov.PredictedValue > 115.51 {
		t.Errorf("November: expected 115.5, got %f", nov.PredictedValue)
	}
	if dec.PredictedValue < 126.49 || dec.PredictedValue > 126.51 {
		t.Errorf("December: expected 126.5, got %f", dec.PredictedValue)
	}

	// Multiplier factors are reported
	foundSeason := false
	for _, f := range nov.ContributingFactors {
		if f.Factor == "season_multiplier" {
			foundSeason = true
		}
	}
	if !foundSeason {
		t.Error("Seasonal forecast must report the season multiplier factor")
	}
}

func TestAutoSelectionPrefersSeasonalThenLinear(t *testing.T) {
	// Strong December spikes over two years -> seasonal
	var spiky []float64
	for y := 0; y < 2; y++ {
		for m := 0; m < 12; m++ {
			if m == 11 {
				spiky = append(spiky, 500)
			} else {
				spiky = append(spiky, 100)
			}
		}
	}
	res, err := newForecaster().Forecast(monthlySeries(spiky), 3, models.ModelAuto, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Model != models.ModelSeasonal {
		t.Errorf("Expected seasonal selection, got %s", res.Model)
	}

	// Clean steep trend, no seasonality -> linear
	res, err = newForecaster().Forecast(monthlySeries([]float64{100, 300, 500, 700, 900, 1100}), 3, models.ModelAuto, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Model != models.ModelLinear {
		t.Errorf("Expected linear selection, got %s", res.Model)
	}

	// Flat noise -> exponential
	res, err = newForecaster().Forecast(monthlySeries([]float64{100, 101, 99, 100, 102, 98}), 3, models.ModelAuto, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Model != models.ModelExponential {
		t.Errorf("Expected exponential selection, got %s", res.Model)
	}
}

func TestForecastPeriodsStrictlyIncreasing(t *testing.T) {
	series := monthlySeries([]float64{100, 120, 110, 130, 125, 140})

	res, err := newForecaster().Forecast(series, 6, models.ModelLinear, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := series[len(series)-1].Date
	for i, p := range res.Points {
		if !p.Date.After(last) {
			t.Errorf("step %d: date %s not after previous %s", i, p.Date, last)
		}
		last = p.Date
	}
}
