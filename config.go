// Package phgnuct holds the hyperparameters, outcome/result types, and
// selection-policy math shared by the factored and unfactored UCT engines.
package phgnuct

import (
	"fmt"

	"github.com/spf13/viper"
)

// ExtractionPolicy chooses how the engine's outer loop extracts a final
// choice from a node's statistics, once simulation rollouts have run.
type ExtractionPolicy int

const (
	// Max greedily extracts the highest-scoring choice (no exploration term).
	Max ExtractionPolicy = iota
	// Robust extracts the most-visited choice, a more conservative
	// alternative present in the original planner but dropped by the
	// distilled spec; restored here as a selectable option.
	Robust
)

func (p ExtractionPolicy) String() string {
	if p == Robust {
		return "robust"
	}
	return "max"
}

// HeuristicFn is a scalar state heuristic hook, e.g. h_util or h_ptg. The
// engine never consumes its output; it exists for forward compatibility
// with q_init, which the source defines but never wires into update.
type HeuristicFn func(stateKey string) float64

// ConstantHeuristic returns a heuristic hook that ignores its input.
func ConstantHeuristic(v float64) HeuristicFn {
	return func(string) float64 { return v }
}

// Config bundles every recognized hyperparameter (spec.md §6) plus the two
// ambient additions this repo carries: ExtractionPolicy and TelemetryAddr.
type Config struct {
	NRollouts                 int     `mapstructure:"n_rollouts" yaml:"n_rollouts"`
	Horizon                   int     `mapstructure:"horizon" yaml:"horizon"`
	Budget                    int     `mapstructure:"budget" yaml:"budget"`
	ExplorationConst          float64 `mapstructure:"exploration_const" yaml:"exploration_const"`
	NormalizeExplorationConst bool    `mapstructure:"normalize_exploration_const" yaml:"normalize_exploration_const"`
	// NInit is a reserved virtual prior visit count. The source retains it
	// but never consumes it in update; kept here as inert config for
	// forward compatibility, per spec.md §9.
	NInit       int     `mapstructure:"n_init" yaml:"n_init"`
	RiskFactor  float64 `mapstructure:"risk_factor" yaml:"risk_factor"`
	GoalUtility float64 `mapstructure:"goal_utility" yaml:"goal_utility"`
	Seed        *int64  `mapstructure:"seed" yaml:"seed"`
	ShowProgress bool   `mapstructure:"show_progress" yaml:"show_progress"`

	// ExtractionPolicy picks Max (default) or Robust for the outer loop's
	// final choice extraction. A supplement over spec.md, restored from the
	// original planner's RobustPolicy.
	ExtractionPolicy ExtractionPolicy `mapstructure:"-" yaml:"-"`

	// TelemetryAddr, non-empty, enables the progress websocket server for
	// this run. Empty disables it; off by default.
	TelemetryAddr string `mapstructure:"telemetry_addr" yaml:"telemetry_addr"`

	// HUtil, HPtg back the reserved q_init computation
	// (h_util(s) + h_ptg(s)*goal_utility); never consumed by update.
	HUtil HeuristicFn `mapstructure:"-" yaml:"-"`
	HPtg  HeuristicFn `mapstructure:"-" yaml:"-"`
}

// DefaultConfig mirrors the original planner's UCTConfig defaults exactly.
func DefaultConfig() Config {
	return Config{
		NRollouts:                 100,
		Horizon:                   20,
		Budget:                    100,
		ExplorationConst:          1.4142135623730951, // sqrt(2)
		NormalizeExplorationConst: true,
		NInit:                     5,
		RiskFactor:                -0.1,
		GoalUtility:               1,
		HUtil:                     ConstantHeuristic(1),
		HPtg:                      ConstantHeuristic(1),
		ExtractionPolicy:          Max,
	}
}

// QInit computes the reserved initial-Q hook: h_util(s) + h_ptg(s)*goal_utility.
// Documented as unconsumed by update; see spec.md §9.
func (c Config) QInit(stateKey string) float64 {
	return c.HUtil(stateKey) + c.HPtg(stateKey)*c.GoalUtility
}

// FromYAML loads a Config from a YAML file via viper, layered on top of
// DefaultConfig so that a partial file only overrides what it specifies.
func FromYAML(path string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("phgnuct: read config: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("phgnuct: unmarshal config: %w", err)
	}
	return cfg, nil
}
