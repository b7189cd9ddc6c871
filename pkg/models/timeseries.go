package models

import "time"

// TimeSeriesPoint is one bucketed observation. Period is the calendar-aligned
// bucket label (e.g. "2024-03", "2024-Q1"), Date the bucket start. Series are
// ordered chronologically and periods are unique within one series.
type TimeSeriesPoint struct {
	Period string    `json:"period"`
	Value  float64   `json:"value"`
	Date   time.Time `json:"date"`
}
