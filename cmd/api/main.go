package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"finpulse/pkg/api/analytics"
	"finpulse/pkg/core/config"
	"finpulse/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Load analytics configuration (seasonal tables, benchmarks, health levels)
	configPath := os.Getenv("FINPULSE_CONFIG")
	if configPath == "" {
		configPath = "config/analytics.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("[WARNING] Failed to load config from %s: %v\n", configPath, err)
		fmt.Println("  Falling back to built-in defaults")
		cfg = config.Default()
	} else {
		fmt.Printf("[CONFIG] Loaded analytics config from %s (%d benchmark sectors)\n", configPath, len(cfg.Benchmarks))
	}

	// Database is optional for local runs; without it the report store falls
	// back to files and dataset endpoints return errors.
	if err := store.InitDB(context.Background()); err != nil {
		fmt.Printf("[WARNING] Database not available: %v\n", err)
	} else {
		defer store.Close()
		fmt.Println("[DB] Connection pool initialized")
	}

	// Analytics endpoints
	analytics.InitHandler(cfg)
	http.HandleFunc("/api/analytics/report", analytics.HandleReport)
	http.HandleFunc("/api/analytics/report/export", analytics.HandleReportExport)
	http.HandleFunc("/api/analytics/alerts", analytics.HandleAlerts)
	http.HandleFunc("/api/analytics/benchmarks/ingest", analytics.HandleBenchmarkIngest)

	// Per-section endpoints for dashboard panels
	http.HandleFunc("/api/analytics/trends", analytics.HandleTrends)
	http.HandleFunc("/api/analytics/forecast", analytics.HandleForecast)
	http.HandleFunc("/api/analytics/anomalies", analytics.HandleAnomalies)
	http.HandleFunc("/api/analytics/profitability", analytics.HandleProfitability)
	http.HandleFunc("/api/analytics/ratios", analytics.HandleRatios)
	http.HandleFunc("/api/analytics/health", analytics.HandleHealth)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - POST /api/analytics/report")
	fmt.Println("  - GET  /api/analytics/report/export  (format=markdown|html)")
	fmt.Println("  - GET  /api/analytics/alerts")
	fmt.Println("  - POST /api/analytics/benchmarks/ingest")
	fmt.Println("  - GET  /api/analytics/{trends,forecast,anomalies,profitability,ratios,health}")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
