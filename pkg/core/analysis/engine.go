// Package analysis orchestrates the full analytics run: one dataset in, one
// aggregated report out. Engines never call each other; this package is the
// only place their outputs meet.
package analysis

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"finpulse/pkg/core/anomaly"
	"finpulse/pkg/core/config"
	"finpulse/pkg/core/forecast"
	"finpulse/pkg/core/health"
	"finpulse/pkg/core/period"
	"finpulse/pkg/core/profitability"
	"finpulse/pkg/core/ratios"
	"finpulse/pkg/core/trend"
	"finpulse/pkg/models"
)

// Engine carries the configuration tables. It holds no request state; one
// instance serves concurrent requests.
type Engine struct {
	cfg config.Config
}

func NewEngine(cfg config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Params mirrors the request layer's query parameters. Now anchors every
// time-relative computation so identical input yields identical output.
type Params struct {
	GroupBy               models.GroupBy
	ForecastPeriods       int
	ModelType             models.ModelType
	Sensitivity           models.SensitivityLevel
	IncludeCostAllocation bool
	MinProfitThreshold    *float64
	IncludeBenchmarking   bool
	Sector                string
	Now                   time.Time
}

func (p Params) withDefaults() Params {
	if p.GroupBy == "" {
		p.GroupBy = models.GroupByMonth
	}
	if p.ForecastPeriods == 0 {
		p.ForecastPeriods = 3
	}
	if p.ModelType == "" {
		p.ModelType = models.ModelAuto
	}
	if p.Sensitivity == "" {
		p.Sensitivity = models.SensitivityMedium
	}
	return p
}

type Report struct {
	OrganizationID    uuid.UUID                             `json:"organization_id"`
	Range             models.DateRange                      `json:"range"`
	GeneratedAt       time.Time                             `json:"generated_at"`
	RevenueSeries     []models.TimeSeriesPoint              `json:"revenue_series"`
	RevenueTrend      trend.Analysis                        `json:"revenue_trend"`
	ExpensePatterns   []trend.ExpensePattern                `json:"expense_patterns"`
	Forecast          forecast.Result                       `json:"forecast"`
	ForecastSkipped   string                                `json:"forecast_skipped,omitempty"`
	Anomalies         anomaly.Report                        `json:"anomalies"`
	Profitability     []profitability.CustomerProfitability `json:"profitability"`
	AvgCollectionDays float64                               `json:"avg_collection_days"`
	Ratios            ratios.FinancialRatios                `json:"ratios"`
	RatioTrends       []ratios.TrendPoint                   `json:"ratio_trends"`
	Benchmark         *ratios.BenchmarkComparison           `json:"benchmark,omitempty"`
	Health            health.Score                          `json:"health"`
}

// Run executes every engine over the dataset. Engines share no state, so a
// skipped forecast (insufficient history) leaves every other section intact;
// any other engine error aborts the run.
func (e *Engine) Run(ds *models.AnalyticsDataset, p Params) (*Report, error) {
	if err := ds.Range.Validate(); err != nil {
		return nil, err
	}
	p = p.withDefaults()

	report := &Report{
		OrganizationID: ds.OrganizationID,
		Range:          ds.Range,
		GeneratedAt:    p.Now,
	}

	// Revenue series feeds both trend and forecast
	obs := make([]period.Observation, 0, len(ds.Invoices))
	for _, inv := range ds.Invoices {
		if inv.Status == models.InvoiceDraft {
			continue
		}
		obs = append(obs, period.Observation{Date: inv.IssuedAt, Amount: inv.Amount})
	}
	series, err := period.BuildSeries(obs, ds.Range, p.GroupBy)
	if err != nil {
		return nil, err
	}
	report.RevenueSeries = series
	report.RevenueTrend = trend.Analyze(series)

	patterns, err := trend.AnalyzeExpensePatterns(ds.Expenses, ds.Range, p.GroupBy)
	if err != nil {
		return nil, err
	}
	report.ExpensePatterns = patterns

	forecaster := forecast.New(e.cfg.Seasonal)
	fc, err := forecaster.Forecast(series, p.ForecastPeriods, p.ModelType, p.GroupBy)
	switch {
	case err == nil:
		report.Forecast = fc
	case errors.Is(err, models.ErrInsufficientData):
		report.ForecastSkipped = err.Error()
	default:
		return nil, err
	}

	anomalies, err := anomaly.Detect(ds.Expenses, p.Sensitivity, p.Now)
	if err != nil {
		return nil, err
	}
	report.Anomalies = anomalies

	report.Profitability = profitability.Analyze(ds, profitability.Params{
		IncludeCostAllocation: p.IncludeCostAllocation,
		MinProfitThreshold:    p.MinProfitThreshold,
		IndustryCostRatio:     e.cfg.IndustryCostRatio,
	})
	report.AvgCollectionDays = profitability.AvgPaymentTime(ds.Invoices)

	report.Ratios = ratios.Compute(ds, e.cfg.IndustryCostRatio)
	ratioTrends, err := ratios.Trends(ds, p.GroupBy, e.cfg.IndustryCostRatio)
	if err != nil {
		return nil, err
	}
	report.RatioTrends = ratioTrends

	if p.IncludeBenchmarking {
		cmp := ratios.CompareToBenchmark(report.Ratios, p.Sector, e.cfg.Benchmarks)
		report.Benchmark = &cmp
	}

	report.Health = health.Compute(ds, report.Ratios, e.cfg.Health)
	return report, nil
}
