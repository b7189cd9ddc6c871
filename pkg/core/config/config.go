// Package config externalizes the tunable tables the engines consume:
// seasonal and holiday multipliers, the industry direct-cost ratio, and the
// industry benchmark table. Values ship with defaults and can be overridden
// from a YAML file, or an HJSON file when ops want comments in the config.
package config

import (
	"fmt"
	"os"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"
)

// Seasonal holds the three-season adjustment multipliers and the per-month
// holiday multipliers applied on top of seasonal forecasts.
type Seasonal struct {
	HighMultiplier       float64         `yaml:"high_multiplier" json:"high_multiplier"`
	LowMultiplier        float64         `yaml:"low_multiplier" json:"low_multiplier"`
	TransitionMultiplier float64         `yaml:"transition_multiplier" json:"transition_multiplier"`
	HolidayMultipliers   map[int]float64 `yaml:"holiday_multipliers" json:"holiday_multipliers"`
}

// Benchmark is one sector's reference ratios for industry comparison.
type Benchmark struct {
	CurrentRatio float64 `yaml:"current_ratio" json:"current_ratio"`
	NetMargin    float64 `yaml:"net_margin" json:"net_margin"`
}

// Health carries the reference levels the health scorer compares against.
type Health struct {
	CashFlowToRevenue float64 `yaml:"cash_flow_to_revenue" json:"cash_flow_to_revenue"`
	NetMargin         float64 `yaml:"net_margin" json:"net_margin"`
}

type Config struct {
	Seasonal          Seasonal             `yaml:"seasonal" json:"seasonal"`
	IndustryCostRatio float64              `yaml:"industry_cost_ratio" json:"industry_cost_ratio"`
	Benchmarks        map[string]Benchmark `yaml:"benchmarks" json:"benchmarks"`
	Health            Health               `yaml:"health" json:"health"`
}

// Default returns the shipped tables. Callers get a fresh value each time so
// nobody can mutate shared state.
func Default() Config {
	return Config{
		Seasonal: Seasonal{
			HighMultiplier:       1.1,
			LowMultiplier:        0.9,
			TransitionMultiplier: 1.0,
			HolidayMultipliers: map[int]float64{
				11: 1.05, // run-up to year end
				12: 1.15,
			},
		},
		IndustryCostRatio: 0.6,
		Benchmarks: map[string]Benchmark{
			"retail":        {CurrentRatio: 1.5, NetMargin: 5},
			"services":      {CurrentRatio: 2.0, NetMargin: 12},
			"manufacturing": {CurrentRatio: 1.8, NetMargin: 8},
			"construction":  {CurrentRatio: 1.4, NetMargin: 6},
			"default":       {CurrentRatio: 1.5, NetMargin: 8},
		},
		Health: Health{
			CashFlowToRevenue: 0.15,
			NetMargin:         10,
		},
	}
}

// Load reads a config file over the defaults. Missing file is not an error:
// the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if strings.HasSuffix(path, ".hjson") {
		if err := hjson.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse hjson config %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
