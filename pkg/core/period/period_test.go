package period

import (
	"testing"
	"time"

	"finpulse/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSplitMonths(t *testing.T) {
	r := models.DateRange{Start: date(2024, time.January, 15), End: date(2024, time.April, 2)}

	buckets, err := Split(r, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Jan, Feb, Mar, Apr: the partial edge months still get buckets
	if len(buckets) != 4 {
		t.Fatalf("Expected 4 buckets, got %d", len(buckets))
	}
	if buckets[0].Label != "2024-01" || buckets[3].Label != "2024-04" {
		t.Errorf("Unexpected labels: %s .. %s", buckets[0].Label, buckets[3].Label)
	}
}

func TestSplitQuarters(t *testing.T) {
	r := models.DateRange{Start: date(2023, time.November, 1), End: date(2024, time.May, 1)}

	buckets, err := Split(r, models.GroupByQuarter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2023-Q4, 2024-Q1, 2024-Q2
	want := []string{"2023-Q4", "2024-Q1", "2024-Q2"}
	if len(buckets) != len(want) {
		t.Fatalf("Expected %d buckets, got %d", len(want), len(buckets))
	}
	for i, w := range want {
		if buckets[i].Label != w {
			t.Errorf("bucket %d: expected %s, got %s", i, w, buckets[i].Label)
		}
	}
}

func TestSplitWeeksStartMonday(t *testing.T) {
	// 2024-03-06 is a Wednesday; its ISO week starts Monday 2024-03-04
	s := Start(date(2024, time.March, 6), models.GroupByWeek)
	if !s.Equal(date(2024, time.March, 4)) {
		t.Errorf("Expected week start 2024-03-04, got %s", s)
	}
	if got := Label(s, models.GroupByWeek); got != "2024-W10" {
		t.Errorf("Expected 2024-W10, got %s", got)
	}
}

func TestSplitInvertedRange(t *testing.T) {
	r := models.DateRange{Start: date(2024, time.May, 1), End: date(2024, time.January, 1)}
	if _, err := Split(r, models.GroupByMonth); err == nil {
		t.Fatal("Expected InvalidRangeError for inverted range")
	}
}

func TestBuildSeriesZeroFillsGaps(t *testing.T) {
	r := models.DateRange{Start: date(2024, time.January, 1), End: date(2024, time.March, 31)}
	obs := []Observation{
		{Date: date(2024, time.January, 10), Amount: 100},
		{Date: date(2024, time.January, 20), Amount: 50},
		{Date: date(2024, time.March, 5), Amount: 75},
		// Outside the range; must be ignored
		{Date: date(2023, time.December, 31), Amount: 999},
	}

	series, err := BuildSeries(obs, r, models.GroupByMonth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(series) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(series))
	}
	if series[0].Value != 150 {
		t.Errorf("January: expected 150, got %f", series[0].Value)
	}
	if series[1].Value != 0 {
		t.Errorf("February gap: expected 0, got %f", series[1].Value)
	}
	if series[2].Value != 75 {
		t.Errorf("March: expected 75, got %f", series[2].Value)
	}

	// Chronological order and unique periods
	seen := map[string]bool{}
	for i, p := range series {
		if seen[p.Period] {
			t.Errorf("duplicate period %s", p.Period)
		}
		seen[p.Period] = true
		if i > 0 && !series[i-1].Date.Before(p.Date) {
			t.Errorf("series not chronological at %d", i)
		}
	}
}

func TestSeasonOf(t *testing.T) {
	if s := SeasonOf(date(2024, time.November, 15)); s != SeasonHigh {
		t.Errorf("November: expected high, got %s", s)
	}
	if s := SeasonOf(date(2024, time.July, 1)); s != SeasonLow {
		t.Errorf("July: expected low, got %s", s)
	}
	if s := SeasonOf(date(2024, time.April, 1)); s != SeasonTransition {
		t.Errorf("April: expected transition, got %s", s)
	}
}
