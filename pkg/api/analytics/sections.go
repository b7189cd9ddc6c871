package analytics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"finpulse/pkg/core/analysis"
)

// Section endpoints serve one slice of the report over GET for dashboard
// panels that poll independently. They share the full engine run; the
// engines are cheap enough that slicing server-side beats a second API
// shape for partial runs.

// queryRequest maps GET query parameters onto the POST request body shape.
func queryRequest(r *http.Request) (*ReportRequest, error) {
	q := r.URL.Query()
	req := &ReportRequest{
		Start:       q.Get("start"),
		End:         q.Get("end"),
		GroupBy:     q.Get("group_by"),
		ModelType:   q.Get("model_type"),
		Sensitivity: q.Get("sensitivity"),
		Sector:      q.Get("sector"),
	}

	var err error
	if req.OrganizationID, err = uuid.Parse(q.Get("organization_id")); err != nil {
		return nil, fmt.Errorf("invalid organization_id: %w", err)
	}
	if v := q.Get("forecast_periods"); v != "" {
		if req.ForecastPeriods, err = strconv.Atoi(v); err != nil {
			return nil, err
		}
	}
	req.IncludeCostAllocation = q.Get("include_cost_allocation") == "true"
	req.IncludeBenchmarking = q.Get("include_benchmarking") == "true"
	if v := q.Get("min_profit_threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		req.MinProfitThreshold = &f
	}
	return req, nil
}

// runForQuery executes the full pipeline for a GET request. A nil return
// means the response was already written.
func runForQuery(w http.ResponseWriter, r *http.Request) *analysis.Report {
	req, err := queryRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	params, dateRange, err := parseParams(req, time.Now().UTC())
	if err != nil {
		writeEngineError(w, err)
		return nil
	}

	ds, err := datasetRepo.Fetch(r.Context(), req.OrganizationID, dateRange)
	if err != nil {
		http.Error(w, "Dataset fetch failed: "+err.Error(), http.StatusInternalServerError)
		return nil
	}
	if err := ds.CheckMinimumData(); err != nil {
		writeEngineError(w, err)
		return nil
	}

	result, err := currentEngine().Run(ds, params)
	if err != nil {
		writeEngineError(w, err)
		return nil
	}
	return result
}

func HandleTrends(w http.ResponseWriter, r *http.Request) {
	if corsPreamble(w, r, "GET") {
		return
	}
	if res := runForQuery(w, r); res != nil {
		respondJSON(w, map[string]any{
			"revenue_series":   res.RevenueSeries,
			"revenue_trend":    res.RevenueTrend,
			"expense_patterns": res.ExpensePatterns,
		})
	}
}

func HandleForecast(w http.ResponseWriter, r *http.Request) {
	if corsPreamble(w, r, "GET") {
		return
	}
	if res := runForQuery(w, r); res != nil {
		if res.ForecastSkipped != "" {
			http.Error(w, res.ForecastSkipped, http.StatusUnprocessableEntity)
			return
		}
		respondJSON(w, res.Forecast)
	}
}

func HandleAnomalies(w http.ResponseWriter, r *http.Request) {
	if corsPreamble(w, r, "GET") {
		return
	}
	if res := runForQuery(w, r); res != nil {
		respondJSON(w, res.Anomalies)
	}
}

func HandleProfitability(w http.ResponseWriter, r *http.Request) {
	if corsPreamble(w, r, "GET") {
		return
	}
	if res := runForQuery(w, r); res != nil {
		respondJSON(w, res.Profitability)
	}
}

func HandleRatios(w http.ResponseWriter, r *http.Request) {
	if corsPreamble(w, r, "GET") {
		return
	}
	if res := runForQuery(w, r); res != nil {
		respondJSON(w, map[string]any{
			"ratios":       res.Ratios,
			"ratio_trends": res.RatioTrends,
			"benchmark":    res.Benchmark,
		})
	}
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	if corsPreamble(w, r, "GET") {
		return
	}
	if res := runForQuery(w, r); res != nil {
		respondJSON(w, res.Health)
	}
}
