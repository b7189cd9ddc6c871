package analytics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"finpulse/pkg/core/config"
	"finpulse/pkg/models"
)

func TestParseParamsDefaults(t *testing.T) {
	now := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	req := &ReportRequest{Start: "2024-01-01", End: "2024-06-30"}

	p, dateRange, err := parseParams(req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.GroupBy != models.GroupByMonth || p.ModelType != models.ModelAuto || p.Sensitivity != models.SensitivityMedium {
		t.Errorf("Empty enums must default: %+v", p)
	}
	if !p.Now.Equal(now) {
		t.Errorf("Clock not threaded through: %v", p.Now)
	}
	if dateRange.Days() != 181 {
		t.Errorf("Range days: expected 181, got %d", dateRange.Days())
	}
}

func TestParseParamsRejectsBadInput(t *testing.T) {
	now := time.Now()
	cases := []ReportRequest{
		{Start: "01/01/2024", End: "2024-06-30"},
		{Start: "2024-01-01", End: "nope"},
		{Start: "2024-06-30", End: "2024-01-01"},
		{Start: "2024-01-01", End: "2024-06-30", GroupBy: "fortnight"},
		{Start: "2024-01-01", End: "2024-06-30", ModelType: "arima"},
		{Start: "2024-01-01", End: "2024-06-30", Sensitivity: "extreme"},
		{Start: "2024-01-01", End: "2024-06-30", ForecastPeriods: -1},
	}
	for i, c := range cases {
		if _, _, err := parseParams(&c, now); err == nil {
			t.Errorf("Case %d should fail: %+v", i, c)
		} else if !errors.Is(err, models.ErrConfiguration) && !errors.Is(err, models.ErrInvalidRange) {
			t.Errorf("Case %d: unexpected error type %v", i, err)
		}
	}
}

func TestQueryRequestMapping(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/analytics/trends?organization_id=11111111-2222-3333-4444-555555555555"+
			"&start=2024-01-01&end=2024-06-30&group_by=week&forecast_periods=6"+
			"&include_benchmarking=true&min_profit_threshold=100.5", nil)

	req, err := queryRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.GroupBy != "week" || req.ForecastPeriods != 6 || !req.IncludeBenchmarking {
		t.Errorf("Query params not mapped: %+v", req)
	}
	if req.MinProfitThreshold == nil || *req.MinProfitThreshold != 100.5 {
		t.Errorf("Threshold not mapped: %v", req.MinProfitThreshold)
	}

	// Bad org ID is rejected before any engine work
	r = httptest.NewRequest("GET", "/api/analytics/trends?organization_id=nope&start=2024-01-01&end=2024-06-30", nil)
	if _, err := queryRequest(r); err == nil {
		t.Error("Expected error for malformed organization_id")
	}
}

func TestHandleBenchmarkIngest(t *testing.T) {
	InitHandler(config.Default())

	page := `<table>
		<tr><th>Sector</th><th>Current Ratio</th><th>Net Margin</th></tr>
		<tr><td>Retail</td><td>1.9</td><td>4</td></tr>
	</table>`

	req := httptest.NewRequest("POST", "/api/analytics/benchmarks/ingest", strings.NewReader(page))
	rec := httptest.NewRecorder()
	HandleBenchmarkIngest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cfg.Benchmarks["retail"].CurrentRatio != 1.9 {
		t.Errorf("Ingested row not applied: %+v", cfg.Benchmarks["retail"])
	}
	if _, ok := cfg.Benchmarks["default"]; !ok {
		t.Error("Default benchmark row must survive ingest")
	}

	// Garbage in, 422 out
	req = httptest.NewRequest("POST", "/api/analytics/benchmarks/ingest", strings.NewReader("<p>nothing here</p>"))
	rec = httptest.NewRecorder()
	HandleBenchmarkIngest(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for a page with no benchmark table, got %d", rec.Code)
	}
}

func TestBenchmarkIngestConcurrentWithReports(t *testing.T) {
	// Ingest swaps the engine while report requests hold a snapshot of it;
	// run both sides at once so the race detector covers the swap.
	InitHandler(config.Default())

	page := `<table>
		<tr><th>Sector</th><th>Current Ratio</th><th>Net Margin</th></tr>
		<tr><td>Retail</td><td>1.9</td><td>4</td></tr>
	</table>`

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest("POST", "/api/analytics/benchmarks/ingest", strings.NewReader(page))
			HandleBenchmarkIngest(httptest.NewRecorder(), req)
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if currentEngine() == nil {
					t.Error("Engine must stay set across benchmark swaps")
					return
				}
			}
		}()
	}
	wg.Wait()
}
