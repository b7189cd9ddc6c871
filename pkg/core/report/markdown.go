// Package report renders an analytics report as Markdown for export and
// email digests. Rendering is pure string assembly; goldmark validates the
// result and converts it to HTML when the caller wants a web view.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"finpulse/pkg/core/analysis"
	"finpulse/pkg/core/health"
)

// Render builds the Markdown document for a report. Sections with no data
// are omitted rather than rendered empty.
func Render(r *analysis.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Financial Analytics Report\n\n")
	fmt.Fprintf(&b, "Organization: `%s`  \n", r.OrganizationID)
	fmt.Fprintf(&b, "Period: %s to %s  \n", r.Range.Start.Format("2006-01-02"), r.Range.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04 MST"))

	writeHealth(&b, r)
	writeTrend(&b, r)
	writeForecast(&b, r)
	writeAnomalies(&b, r)
	writeProfitability(&b, r)
	writeRatios(&b, r)

	return b.String()
}

func writeHealth(b *strings.Builder, r *analysis.Report) {
	fmt.Fprintf(b, "## Business Health: %.0f/100 (%s)\n\n", r.Health.OverallScore, r.Health.Category)

	fmt.Fprintf(b, "| Component | Score | Weight |\n|---|---|---|\n")
	for _, name := range health.SortedComponentNames(r.Health.Components) {
		c := r.Health.Components[name]
		fmt.Fprintf(b, "| %s | %.0f | %.0f%% |\n", strings.ReplaceAll(name, "_", " "), c.Score, c.Weight*100)
	}
	b.WriteString("\n")

	if len(r.Health.Recommendations) > 0 {
		fmt.Fprintf(b, "### Recommendations\n\n")
		for _, rec := range r.Health.Recommendations {
			fmt.Fprintf(b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}
}

func writeTrend(b *strings.Builder, r *analysis.Report) {
	fmt.Fprintf(b, "## Revenue Trend\n\n")
	fmt.Fprintf(b, "Direction: **%s** (strength %.2f)\n\n", r.RevenueTrend.Direction, r.RevenueTrend.Strength)

	if r.RevenueTrend.Seasonality.Detected {
		fmt.Fprintf(b, "Seasonality detected (%s, strength %.2f).\n\n",
			r.RevenueTrend.Seasonality.Pattern, r.RevenueTrend.Seasonality.Strength)
	}

	if len(r.ExpensePatterns) > 0 {
		fmt.Fprintf(b, "### Expense Patterns\n\n")
		for _, p := range r.ExpensePatterns {
			fmt.Fprintf(b, "- **%s**: %s (%.1f%% change)\n", p.Category, p.Direction, p.ChangeRatePercent)
		}
		b.WriteString("\n")
	}
}

func writeForecast(b *strings.Builder, r *analysis.Report) {
	fmt.Fprintf(b, "## Forecast\n\n")
	if r.ForecastSkipped != "" {
		fmt.Fprintf(b, "Not available: %s\n\n", r.ForecastSkipped)
		return
	}
	if len(r.Forecast.Points) == 0 {
		fmt.Fprintf(b, "No forecast points.\n\n")
		return
	}

	fmt.Fprintf(b, "Model: %s\n\n", r.Forecast.Model)
	fmt.Fprintf(b, "| Period | Predicted | Low | High | Confidence |\n|---|---|---|---|---|\n")
	for _, p := range r.Forecast.Points {
		fmt.Fprintf(b, "| %s | %.2f | %.2f | %.2f | %.0f%% |\n",
			p.Period, p.PredictedValue, p.ConfidenceInterval.Lower, p.ConfidenceInterval.Upper, p.Confidence*100)
	}
	b.WriteString("\n")
}

func writeAnomalies(b *strings.Builder, r *analysis.Report) {
	if len(r.Anomalies.Findings) == 0 && len(r.Anomalies.Alerts) == 0 {
		return
	}
	fmt.Fprintf(b, "## Expense Anomalies\n\n")
	for _, f := range r.Anomalies.Findings {
		fmt.Fprintf(b, "- **%s** on %s: %.2f (expected %.2f) - %s\n",
			f.Category, f.Date.Format("2006-01-02"), f.Amount, f.ExpectedAmount, f.Severity)
	}
	if len(r.Anomalies.Findings) > 0 {
		b.WriteString("\n")
	}
	for _, a := range r.Anomalies.Alerts {
		fmt.Fprintf(b, "> %s: %s\n\n", strings.ToUpper(string(a.Severity)), a.Message)
	}
}

func writeProfitability(b *strings.Builder, r *analysis.Report) {
	if len(r.Profitability) == 0 {
		return
	}
	fmt.Fprintf(b, "## Customer Profitability\n\n")
	fmt.Fprintf(b, "| Rank | Customer | Revenue | Net Profit | Margin | Risk |\n|---|---|---|---|---|---|\n")
	for _, c := range r.Profitability {
		fmt.Fprintf(b, "| %d | %s | %.2f | %.2f | %.1f%% | %s |\n",
			c.Ranking, c.CustomerName, c.Revenue, c.NetProfit, c.ProfitMarginPercent, c.RiskLevel)
	}
	b.WriteString("\n")
	if r.AvgCollectionDays > 0 {
		fmt.Fprintf(b, "Average collection time: %.1f days\n\n", r.AvgCollectionDays)
	}
}

func writeRatios(b *strings.Builder, r *analysis.Report) {
	fmt.Fprintf(b, "## Financial Ratios\n\n")
	fmt.Fprintf(b, "- Current ratio: %.2f\n", r.Ratios.Liquidity.CurrentRatio)
	fmt.Fprintf(b, "- Quick ratio: %.2f\n", r.Ratios.Liquidity.QuickRatio)
	fmt.Fprintf(b, "- Gross margin: %.1f%%\n", r.Ratios.Profitability.GrossMargin)
	fmt.Fprintf(b, "- Net margin: %.1f%%\n", r.Ratios.Profitability.NetMargin)
	fmt.Fprintf(b, "- Debt to equity: %.2f\n", r.Ratios.Leverage.DebtToEquity)
	b.WriteString("\n")

	if r.Benchmark != nil {
		fmt.Fprintf(b, "### Benchmark (%s)\n\n", r.Benchmark.Sector)
		fmt.Fprintf(b, "- Current ratio vs sector: %s\n", r.Benchmark.CurrentRatio.Bucket)
		fmt.Fprintf(b, "- Net margin vs sector: %s\n", r.Benchmark.NetMargin.Bucket)
		for _, rec := range r.Benchmark.Recommendations {
			fmt.Fprintf(b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}
}

// ValidateMarkdown checks that the string parses as Markdown. Goldmark is
// very permissive, so this is a structural sanity check, not a linter.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	doc := parser.Parse(reader)
	return doc != nil
}

// RenderHTML converts the Markdown document to HTML. Tables need the GFM
// extension; the base renderer would flatten them to paragraphs.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
