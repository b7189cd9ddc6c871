package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"finpulse/pkg/core/analysis"
	"finpulse/pkg/core/anomaly"
	"finpulse/pkg/core/config"
	"finpulse/pkg/core/ingest"
	"finpulse/pkg/core/report"
	"finpulse/pkg/core/store"
	"finpulse/pkg/models"
)

var (
	// mu guards cfg and engine: benchmark ingest swaps both at runtime while
	// report requests read them.
	mu          sync.RWMutex
	engine      *analysis.Engine
	cfg         config.Config
	datasetRepo *store.DatasetRepo
	reportRepo  *store.ReportRepo
	alertRepo   *store.AlertRepo
)

// InitHandler wires the engine and repositories. With no database pool the
// report repo falls back to local files and dataset fetches are rejected.
func InitHandler(c config.Config) {
	mu.Lock()
	cfg = c
	engine = analysis.NewEngine(c)
	mu.Unlock()
	pool := store.GetPool()
	datasetRepo = store.NewDatasetRepo(pool)
	reportRepo = store.NewReportRepo(pool, "")
	alertRepo = store.NewAlertRepo(pool)
}

// currentEngine snapshots the engine pointer for one request. Engine values
// are immutable once constructed; only the pointer swap needs the lock.
func currentEngine() *analysis.Engine {
	mu.RLock()
	defer mu.RUnlock()
	return engine
}

type ReportRequest struct {
	OrganizationID        uuid.UUID `json:"organization_id"`
	Start                 string    `json:"start"`
	End                   string    `json:"end"`
	GroupBy               string    `json:"group_by"`
	ForecastPeriods       int       `json:"forecast_periods"`
	ModelType             string    `json:"model_type"`
	Sensitivity           string    `json:"sensitivity"`
	IncludeCostAllocation bool      `json:"include_cost_allocation"`
	MinProfitThreshold    *float64  `json:"min_profit_threshold"`
	IncludeBenchmarking   bool      `json:"include_benchmarking"`
	Sector                string    `json:"sector"`
}

func corsPreamble(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// writeEngineError maps the typed engine errors onto HTTP statuses. Anything
// unrecognized is a 500.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrConfiguration), errors.Is(err, models.ErrInvalidRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrInsufficientData):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// parseParams validates the request enums and assembles engine parameters.
func parseParams(req *ReportRequest, now time.Time) (analysis.Params, models.DateRange, error) {
	var p analysis.Params
	var zero models.DateRange

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		return p, zero, &models.ConfigurationError{Param: "start", Value: req.Start}
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		return p, zero, &models.ConfigurationError{Param: "end", Value: req.End}
	}
	dateRange := models.DateRange{Start: start, End: end}
	if err := dateRange.Validate(); err != nil {
		return p, zero, err
	}

	if p.GroupBy, err = models.ParseGroupBy(req.GroupBy); err != nil {
		return p, zero, err
	}
	if p.ModelType, err = models.ParseModelType(req.ModelType); err != nil {
		return p, zero, err
	}
	if p.Sensitivity, err = models.ParseSensitivity(req.Sensitivity); err != nil {
		return p, zero, err
	}
	if req.ForecastPeriods < 0 {
		return p, zero, &models.ConfigurationError{Param: "forecastPeriods", Value: fmt.Sprintf("%d", req.ForecastPeriods)}
	}

	p.ForecastPeriods = req.ForecastPeriods
	p.IncludeCostAllocation = req.IncludeCostAllocation
	p.MinProfitThreshold = req.MinProfitThreshold
	p.IncludeBenchmarking = req.IncludeBenchmarking
	p.Sector = req.Sector
	p.Now = now
	return p, dateRange, nil
}

// HandleReport runs the full analytics pass for an organization and period.
// The generated report is persisted best-effort; persistence failures are
// logged, not surfaced, since the report itself is already computed.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	if corsPreamble(w, r, "POST") {
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params, dateRange, err := parseParams(&req, time.Now().UTC())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	fmt.Printf("[ANALYTICS] Report request: org=%s range=%s..%s groupBy=%s\n",
		req.OrganizationID, req.Start, req.End, params.GroupBy)

	ds, err := datasetRepo.Fetch(r.Context(), req.OrganizationID, dateRange)
	if err != nil {
		http.Error(w, fmt.Sprintf("Dataset fetch failed: %v", err), http.StatusInternalServerError)
		return
	}
	if err := ds.CheckMinimumData(); err != nil {
		writeEngineError(w, err)
		return
	}

	result, err := currentEngine().Run(ds, params)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if err := reportRepo.Save(r.Context(), result); err != nil {
		fmt.Printf("[WARNING] Failed to persist report: %v\n", err)
	}
	if len(result.Anomalies.Alerts) > 0 {
		newAlerts := 0
		for _, a := range result.Anomalies.Alerts {
			if !alertRepo.AlertExists(r.Context(), a.ID) {
				newAlerts++
			}
		}
		if err := alertRepo.SaveAllAlerts(r.Context(), req.OrganizationID, result.Anomalies.Alerts); err != nil {
			fmt.Printf("[WARNING] Failed to persist alerts: %v\n", err)
		} else {
			fmt.Printf("[ANALYTICS] Alerts persisted: %d total, %d new\n", len(result.Anomalies.Alerts), newAlerts)
		}
	}

	respondJSON(w, result)
}

// HandleReportExport returns the stored report rendered as Markdown or HTML.
// Query: organization_id, start, end, format=markdown|html (markdown default).
func HandleReportExport(w http.ResponseWriter, r *http.Request) {
	if corsPreamble(w, r, "GET") {
		return
	}

	q := r.URL.Query()
	orgID, err := uuid.Parse(q.Get("organization_id"))
	if err != nil {
		http.Error(w, "invalid organization_id", http.StatusBadRequest)
		return
	}
	start, err1 := time.Parse("2006-01-02", q.Get("start"))
	end, err2 := time.Parse("2006-01-02", q.Get("end"))
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid start/end", http.StatusBadRequest)
		return
	}

	stored, err := reportRepo.Load(r.Context(), orgID, models.DateRange{Start: start, End: end})
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	markdown := report.Render(stored)
	if q.Get("format") == "html" {
		html, err := report.RenderHTML(markdown)
		if err != nil {
			http.Error(w, fmt.Sprintf("Render failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, html)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, markdown)
}

// HandleAlerts lists stored anomaly alerts for an organization.
func HandleAlerts(w http.ResponseWriter, r *http.Request) {
	if corsPreamble(w, r, "GET") {
		return
	}

	orgID, err := uuid.Parse(r.URL.Query().Get("organization_id"))
	if err != nil {
		http.Error(w, "invalid organization_id", http.StatusBadRequest)
		return
	}

	alerts, err := alertRepo.GetAlerts(r.Context(), orgID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []anomaly.Alert{}
	}
	respondJSON(w, alerts)
}

// HandleBenchmarkIngest accepts an HTML benchmark page in the request body
// and overlays its sector rows onto the configured table for this process.
func HandleBenchmarkIngest(w http.ResponseWriter, r *http.Request) {
	if corsPreamble(w, r, "POST") {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	parsed, err := ingest.NewBenchmarkParser().ParseBenchmarkTables(string(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	mu.Lock()
	cfg.Benchmarks = ingest.MergeBenchmarks(cfg.Benchmarks, parsed)
	engine = analysis.NewEngine(cfg)
	merged := cfg.Benchmarks
	mu.Unlock()
	fmt.Printf("[ANALYTICS] Benchmark table updated: %d sectors ingested\n", len(parsed))

	respondJSON(w, merged)
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
