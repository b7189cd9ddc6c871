package models

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy for the analytics core. Engines raise these; the request
// layer decides status codes and user-facing text. Sentinels exist so callers
// can branch with errors.Is without caring about the concrete fields.

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidRange     = errors.New("invalid date range")
	ErrConfiguration    = errors.New("invalid configuration")
)

type InsufficientDataError struct {
	Op   string
	Need int
	Got  int
	Unit string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need %d %s, got %d", e.Op, e.Need, e.Unit, e.Got)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s after end %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

type ConfigurationError struct {
	Param string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Param, e.Value)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }
