// Package period splits date ranges into calendar-aligned buckets and builds
// the time series every engine consumes. It also owns the coarse three-season
// classification used for seasonal forecast adjustment.
package period

import (
	"fmt"
	"time"

	"finpulse/pkg/models"
)

// Bucket is one contiguous sub-period of a range.
type Bucket struct {
	Label string
	Start time.Time
}

// =============================================================================
// BUCKETING
// =============================================================================

// Start truncates t to the start of its bucket.
func Start(t time.Time, groupBy models.GroupBy) time.Time {
	switch groupBy {
	case models.GroupByDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case models.GroupByWeek:
		// ISO weeks start Monday
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.GroupByQuarter:
		qMonth := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), qMonth, 1, 0, 0, 0, 0, t.Location())
	default: // month
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
}

// Next returns the start of the bucket immediately after the one holding t.
func Next(t time.Time, groupBy models.GroupBy) time.Time {
	s := Start(t, groupBy)
	switch groupBy {
	case models.GroupByDay:
		return s.AddDate(0, 0, 1)
	case models.GroupByWeek:
		return s.AddDate(0, 0, 7)
	case models.GroupByQuarter:
		return s.AddDate(0, 3, 0)
	default:
		return s.AddDate(0, 1, 0)
	}
}

// Label renders the bucket key: "2024-03-15", "2024-W11", "2024-03", "2024-Q1".
func Label(t time.Time, groupBy models.GroupBy) string {
	switch groupBy {
	case models.GroupByDay:
		return t.Format("2006-01-02")
	case models.GroupByWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case models.GroupByQuarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	default:
		return t.Format("2006-01")
	}
}

// Split breaks a range into contiguous buckets covering it. The range must be
// valid; an inverted range is an InvalidRangeError.
func Split(r models.DateRange, groupBy models.GroupBy) ([]Bucket, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var buckets []Bucket
	for cur := Start(r.Start, groupBy); !cur.After(r.End); cur = Next(cur, groupBy) {
		buckets = append(buckets, Bucket{Label: Label(cur, groupBy), Start: cur})
	}
	return buckets, nil
}

// =============================================================================
// TIME SERIES CONSTRUCTION
// =============================================================================

// Observation is a raw dated amount before bucketing.
type Observation struct {
	Date   time.Time
	Amount float64
}

// BuildSeries collapses observations into one point per bucket across the
// whole range. Buckets with no observations appear with value 0 so gaps are
// visible to the forecaster's sparse-data check.
func BuildSeries(obs []Observation, r models.DateRange, groupBy models.GroupBy) ([]models.TimeSeriesPoint, error) {
	buckets, err := Split(r, groupBy)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]float64)
	for _, o := range obs {
		if o.Date.Before(r.Start) || o.Date.After(r.End) {
			continue
		}
		sums[Label(o.Date, groupBy)] += o.Amount
	}

	series := make([]models.TimeSeriesPoint, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, models.TimeSeriesPoint{
			Period: b.Label,
			Value:  sums[b.Label],
			Date:   b.Start,
		})
	}
	return series, nil
}

// =============================================================================
// SEASONS
// =============================================================================

// Season is the coarse three-bucket classification behind the seasonal
// forecast multipliers. The month sets are a business-activity heuristic,
// tunable through config.Seasonal.
type Season string

const (
	SeasonHigh       Season = "high"
	SeasonLow        Season = "low"
	SeasonTransition Season = "transition"
)

// SeasonOf classifies a date: year-end quarter is high activity, the
// January/February lull and midsummer are low, everything else transition.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.October, time.November, time.December:
		return SeasonHigh
	case time.January, time.February, time.July, time.August:
		return SeasonLow
	default:
		return SeasonTransition
	}
}
