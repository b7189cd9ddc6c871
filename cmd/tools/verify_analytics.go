// Console harness for eyeballing the analytics math end to end. Loads a
// dataset from a JSON file when a path is given, otherwise runs against a
// built-in synthetic year of data.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"finpulse/pkg/core/analysis"
	"finpulse/pkg/core/config"
	"finpulse/pkg/core/health"
	"finpulse/pkg/core/report"
	"finpulse/pkg/models"
)

func main() {
	var ds *models.AnalyticsDataset
	if len(os.Args) > 1 {
		loaded, err := loadDataset(os.Args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		ds = loaded
		fmt.Printf("Loaded dataset from %s\n", os.Args[1])
	} else {
		ds = syntheticDataset()
		fmt.Println("Using built-in synthetic dataset")
	}

	if err := ds.CheckMinimumData(); err != nil {
		fmt.Printf("Dataset below minimums: %v\n", err)
		return
	}

	engine := analysis.NewEngine(config.Default())
	result, err := engine.Run(ds, analysis.Params{
		IncludeBenchmarking: true,
		Sector:              "services",
		Now:                 time.Now().UTC(),
	})
	if err != nil {
		fmt.Printf("Engine error: %v\n", err)
		return
	}

	fmt.Println("\n====================================================================================================")
	fmt.Println("                            REVENUE TREND & FORECAST")
	fmt.Println("====================================================================================================")
	fmt.Printf("%-12s | %12s\n", "PERIOD", "REVENUE")
	for _, p := range result.RevenueSeries {
		fmt.Printf("%-12s | %12.2f\n", p.Period, p.Value)
	}
	fmt.Printf("\nDirection: %s (strength %.3f)\n", result.RevenueTrend.Direction, result.RevenueTrend.Strength)
	if result.ForecastSkipped != "" {
		fmt.Printf("Forecast skipped: %s\n", result.ForecastSkipped)
	} else {
		fmt.Printf("Forecast model: %s\n", result.Forecast.Model)
		fmt.Printf("%-12s | %12s | %12s | %12s | %s\n", "PERIOD", "PREDICTED", "LOW", "HIGH", "CONF")
		for _, p := range result.Forecast.Points {
			fmt.Printf("%-12s | %12.2f | %12.2f | %12.2f | %.0f%%\n",
				p.Period, p.PredictedValue, p.ConfidenceInterval.Lower, p.ConfidenceInterval.Upper, p.Confidence*100)
		}
	}

	fmt.Println("\n====================================================================================================")
	fmt.Println("                            CUSTOMER PROFITABILITY")
	fmt.Println("====================================================================================================")
	fmt.Printf("%-4s | %-25s | %12s | %12s | %8s | %s\n", "RANK", "CUSTOMER", "REVENUE", "NET PROFIT", "MARGIN", "RISK")
	for _, c := range result.Profitability {
		fmt.Printf("%-4d | %-25s | %12.2f | %12.2f | %7.1f%% | %s\n",
			c.Ranking, c.CustomerName, c.Revenue, c.NetProfit, c.ProfitMarginPercent, c.RiskLevel)
	}

	fmt.Println("\n====================================================================================================")
	fmt.Println("                            HEALTH SCORE")
	fmt.Println("====================================================================================================")
	fmt.Printf("Overall: %.1f/100 (%s)\n", result.Health.OverallScore, result.Health.Category)
	for _, name := range health.SortedComponentNames(result.Health.Components) {
		c := result.Health.Components[name]
		fmt.Printf("  %-15s %6.1f  (weight %.0f%%)\n", name, c.Score, c.Weight*100)
	}
	for _, rec := range result.Health.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}

	if len(result.Anomalies.Findings) > 0 {
		fmt.Println("\n====================================================================================================")
		fmt.Println("                            EXPENSE ANOMALIES")
		fmt.Println("====================================================================================================")
		for _, f := range result.Anomalies.Findings {
			fmt.Printf("  %-20s %s  %10.2f (expected %10.2f)  z=%.1f  %s\n",
				f.Category, f.Date.Format("2006-01-02"), f.Amount, f.ExpectedAmount, f.AnomalyScore, f.Severity)
		}
	}

	md := report.Render(result)
	if !report.ValidateMarkdown(md) {
		fmt.Println("\n[WARNING] Rendered markdown failed validation")
	} else {
		fmt.Printf("\nMarkdown report renders clean (%d bytes)\n", len(md))
	}
}

func loadDataset(path string) (*models.AnalyticsDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var ds models.AnalyticsDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// syntheticDataset builds a year of plausible small-business activity: three
// customers with different volumes, monthly rent, seasonal advertising, and
// one deliberate December expense spike for the anomaly detector to find.
func syntheticDataset() *models.AnalyticsDataset {
	ds := &models.AnalyticsDataset{
		OrganizationID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("finpulse/demo-org")),
		Range: models.DateRange{
			Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	names := []string{"Harbor Coffee", "Northside Dental", "Cedar Landscaping"}
	volumes := []float64{4000, 2500, 900}
	for i, name := range names {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("finpulse/demo-customer/"+name))
		ds.Customers = append(ds.Customers, models.Customer{ID: id, Name: name})
		for m := 0; m < 12; m++ {
			issued := time.Date(2024, time.Month(m+1), 5+i, 0, 0, 0, 0, time.UTC)
			amount := volumes[i] * (1 + 0.02*float64(m))
			ds.Invoices = append(ds.Invoices, models.Invoice{
				ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("finpulse/demo-inv/%s/%d", name, m))),
				CustomerID: id, Amount: amount, Status: models.InvoiceSent,
				IssuedAt: issued, DueAt: issued.AddDate(0, 1, 0),
			})
			ds.Payments = append(ds.Payments, models.Payment{
				ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("finpulse/demo-pay/%s/%d", name, m))),
				CustomerID: id, Amount: amount, ReceivedAt: issued.AddDate(0, 0, 20+5*i),
			})
		}
	}

	for m := 0; m < 12; m++ {
		incurred := time.Date(2024, time.Month(m+1), 1, 0, 0, 0, 0, time.UTC)
		ds.Expenses = append(ds.Expenses, models.Expense{
			ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("finpulse/demo-rent/%d", m))),
			Category: "rent", Amount: 2200, IncurredAt: incurred,
		})
		adSpend := 400.0
		if m == 11 {
			adSpend = 2400 // December push, should trip the detector
		}
		ds.Expenses = append(ds.Expenses, models.Expense{
			ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("finpulse/demo-ads/%d", m))),
			Category: "advertising", Amount: adSpend, IncurredAt: incurred.AddDate(0, 0, 10),
		})
	}

	ds.Accounts = []models.Account{
		{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("finpulse/demo-acct/cash")), Name: "Business Checking (Cash)", Type: models.AccountAsset, Current: true, Balance: 18000},
		{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("finpulse/demo-acct/ar")), Name: "Accounts Receivable", Type: models.AccountAsset, Current: true, Balance: 7500},
		{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("finpulse/demo-acct/equip")), Name: "Equipment", Type: models.AccountAsset, Balance: 22000},
		{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("finpulse/demo-acct/ap")), Name: "Accounts Payable", Type: models.AccountLiability, Current: true, Balance: 4100},
		{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("finpulse/demo-acct/loan")), Name: "Bank Loan", Type: models.AccountLiability, Balance: 12000},
		{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("finpulse/demo-acct/equity")), Name: "Owner Equity", Type: models.AccountEquity, Balance: 31400},
	}

	return ds
}
