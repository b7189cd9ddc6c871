// Package ingest loads industry benchmark tables from published HTML pages
// into the benchmark configuration format. Pages vary wildly in layout, so
// parsing is driven by header recognition rather than fixed positions.
package ingest

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"finpulse/pkg/core/config"
)

// BenchmarkParser extracts sector benchmark rows from HTML tables.
type BenchmarkParser struct{}

func NewBenchmarkParser() *BenchmarkParser {
	return &BenchmarkParser{}
}

// columns we recognize in a header row, by substring
const (
	colSector       = "sector"
	colIndustry     = "industry"
	colCurrentRatio = "current ratio"
	colNetMargin    = "net margin"
)

// ParseBenchmarkTables scans every table in the document and returns the
// sector rows of the first table whose header carries a sector column plus
// both ratio columns. Sector names are lowercased to match config lookups.
func (p *BenchmarkParser) ParseBenchmarkTables(html string) (map[string]config.Benchmark, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var result map[string]config.Benchmark
	totalTables := 0

	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		totalTables++

		sectorCol, ratioCol, marginCol, ok := p.identifyColumns(table)
		if !ok {
			return true // keep scanning
		}

		parsed := p.parseRows(table, sectorCol, ratioCol, marginCol)
		if len(parsed) == 0 {
			return true
		}

		log.Printf("[BenchmarkIngest] Table #%d matched: %d sector rows", i, len(parsed))
		result = parsed
		return false
	})

	if result == nil {
		log.Printf("[BenchmarkIngest] SUMMARY: scanned %d tables, none matched", totalTables)
		return nil, fmt.Errorf("no benchmark table found in document")
	}
	return result, nil
}

// identifyColumns inspects the first non-empty row for the three columns we
// need. Returns their indices and whether all were found.
func (p *BenchmarkParser) identifyColumns(table *goquery.Selection) (sectorCol, ratioCol, marginCol int, ok bool) {
	sectorCol, ratioCol, marginCol = -1, -1, -1

	header := table.Find("tr").First()
	header.Find("td, th").Each(func(j int, cell *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(cell.Text()))
		switch {
		case strings.Contains(text, colSector) || strings.Contains(text, colIndustry):
			sectorCol = j
		case strings.Contains(text, colCurrentRatio):
			ratioCol = j
		case strings.Contains(text, colNetMargin):
			marginCol = j
		}
	})

	ok = sectorCol >= 0 && ratioCol >= 0 && marginCol >= 0
	return
}

func (p *BenchmarkParser) parseRows(table *goquery.Selection, sectorCol, ratioCol, marginCol int) map[string]config.Benchmark {
	out := make(map[string]config.Benchmark)

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header
		}
		cells := row.Find("td, th")
		need := sectorCol
		if ratioCol > need {
			need = ratioCol
		}
		if marginCol > need {
			need = marginCol
		}
		if cells.Length() <= need {
			return
		}

		sector := strings.ToLower(strings.TrimSpace(cells.Eq(sectorCol).Text()))
		if sector == "" {
			return
		}

		ratio, err1 := parseNumber(cells.Eq(ratioCol).Text())
		margin, err2 := parseNumber(cells.Eq(marginCol).Text())
		if err1 != nil || err2 != nil {
			log.Printf("[BenchmarkIngest] Skipping row %q: unparseable values", sector)
			return
		}

		out[sector] = config.Benchmark{CurrentRatio: ratio, NetMargin: margin}
	})

	return out
}

// parseNumber handles the formats benchmark publishers use: "1.5", "8%",
// "1,250.00", "8.0 %".
func parseNumber(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("empty cell")
	}
	return strconv.ParseFloat(cleaned, 64)
}

// MergeBenchmarks overlays ingested rows onto the configured table without
// dropping configured sectors the page does not carry (notably "default").
func MergeBenchmarks(base, ingested map[string]config.Benchmark) map[string]config.Benchmark {
	merged := make(map[string]config.Benchmark, len(base)+len(ingested))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range ingested {
		merged[k] = v
	}
	return merged
}
