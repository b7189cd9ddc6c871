// Package forecast projects a bucketed financial series N periods forward
// using one of three models: linear regression, single exponential smoothing,
// or seasonal decomposition with calendar adjustment.
package forecast

import (
	"time"

	"finpulse/pkg/core/config"
	"finpulse/pkg/core/period"
	"finpulse/pkg/core/trend"
	"finpulse/pkg/models"
)

const (
	minHistoryPeriods = 3

	// Reject series where more than half the buckets are empty: a forecast
	// over mostly-zero history is noise dressed up as a number.
	maxZeroShare = 0.5

	// Per-step confidence decay and per-model floors. Confidence never rises
	// with horizon distance.
	confidenceDecay   = 0.02
	linearConfFloor   = 0.5
	expConfFloor      = 0.3
	seasonalConfFloor = 0.4
)

type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

type ContributingFactor struct {
	Factor      string  `json:"factor"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
}

type Point struct {
	Period              string               `json:"period"`
	Date                time.Time            `json:"date"`
	PredictedValue      float64              `json:"predicted_value"`
	ConfidenceInterval  ConfidenceInterval   `json:"confidence_interval"`
	Confidence          float64              `json:"confidence"`
	ContributingFactors []ContributingFactor `json:"contributing_factors,omitempty"`
}

type Result struct {
	Model  models.ModelType `json:"model"`
	Points []Point          `json:"points"`
}

// Forecaster carries the seasonal adjustment tables. It holds no mutable
// state; one instance serves concurrent requests.
type Forecaster struct {
	seasonal config.Seasonal
}

func New(seasonal config.Seasonal) *Forecaster {
	return &Forecaster{seasonal: seasonal}
}

// Forecast validates the history, picks a model (unless the caller fixed one),
// and projects horizon periods starting immediately after the last historical
// bucket.
func (f *Forecaster) Forecast(series []models.TimeSeriesPoint, horizon int, modelType models.ModelType, groupBy models.GroupBy) (Result, error) {
	if horizon < 1 {
		return Result{}, &models.ConfigurationError{Param: "forecastPeriods", Value: "< 1"}
	}
	if err := validateHistory(series); err != nil {
		return Result{}, err
	}

	model := modelType
	if model == models.ModelAuto || model == "" {
		model = selectModel(series)
	}

	var points []Point
	switch model {
	case models.ModelLinear:
		points = f.forecastLinear(series, horizon, groupBy)
	case models.ModelExponential:
		points = f.forecastExponential(series, horizon, groupBy)
	case models.ModelSeasonal:
		points = f.forecastSeasonal(series, horizon, groupBy)
	default:
		return Result{}, &models.ConfigurationError{Param: "modelType", Value: string(model)}
	}

	return Result{Model: model, Points: points}, nil
}

func validateHistory(series []models.TimeSeriesPoint) error {
	if len(series) < minHistoryPeriods {
		return &models.InsufficientDataError{
			Op: "forecast", Need: minHistoryPeriods, Got: len(series), Unit: "periods",
		}
	}

	zeros := 0
	for _, p := range series {
		if p.Value == 0 {
			zeros++
		}
	}
	if float64(zeros)/float64(len(series)) > maxZeroShare {
		return &models.InsufficientDataError{
			Op: "forecast", Need: len(series) / 2, Got: len(series) - zeros, Unit: "non-zero periods",
		}
	}
	return nil
}

// selectModel: strong seasonality wins, then a meaningful trend, otherwise
// smoothing carries the recent level forward.
func selectModel(series []models.TimeSeriesPoint) models.ModelType {
	t := trend.Analyze(series)
	if t.Seasonality.Detected && t.Seasonality.Strength > 0.3 {
		return models.ModelSeasonal
	}
	if t.Strength > 0.1 {
		return models.ModelLinear
	}
	return models.ModelExponential
}

// futureBuckets yields the horizon bucket starts/labels after the last
// historical point, one calendar step apart.
func futureBuckets(last time.Time, horizon int, groupBy models.GroupBy) []period.Bucket {
	buckets := make([]period.Bucket, 0, horizon)
	cur := last
	for h := 0; h < horizon; h++ {
		cur = period.Next(cur, groupBy)
		buckets = append(buckets, period.Bucket{Label: period.Label(cur, groupBy), Start: cur})
	}
	return buckets
}

func clampConfidence(conf, floor float64) float64 {
	if conf > 1 {
		return 1
	}
	if conf < floor {
		return floor
	}
	return conf
}

func interval(predicted, margin float64) ConfidenceInterval {
	if margin < 0 {
		margin = -margin
	}
	lower := predicted - margin
	if lower < 0 {
		lower = 0 // amounts cannot go negative
	}
	return ConfidenceInterval{Lower: lower, Upper: predicted + margin}
}

func values(series []models.TimeSeriesPoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Value
	}
	return out
}
