// Package crashtest drives the simulation runner over synthetic stress
// fixtures and asserts the exact rule code and the exact step at which the
// safety gate first blocks. It is the primary correctness oracle for the
// gate's rule semantics.
package crashtest

import (
	"capital-shield/internal/dataset"
	"capital-shield/internal/domain"
	"capital-shield/internal/engine"
	"capital-shield/internal/market"
)

// Scenario is one parametrized stress fixture with its expected outcome.
type Scenario struct {
	Name    string
	Dataset *domain.Dataset
	Preset  domain.Preset

	// NewEngine builds a fresh signal engine per run so baseline and
	// shielded modes see identical streams.
	NewEngine func() engine.SignalEngine

	// HealthSchedule optionally forces the health flag per step.
	HealthSchedule func(step int) bool

	// ExpectedCode is the rule that must fire.
	ExpectedCode domain.RuleCode

	// ExpectedFirstBlockStep is the exact step index at which ExpectedCode
	// must first trigger - not merely "eventually".
	ExpectedFirstBlockStep int
}

// Fixture shape parameters.
const (
	crashCandles  = 50
	crashStart    = 25
	crashRiseStep = 0.02
	crashDropStep = 0.04

	healthCandles  = 20
	healthFailStep = 5

	bearCandles     = 30
	bearDeclineStep = 0.02

	mockSeed = 42
)

// DrawdownCrashScenario builds a stepwise price crash against the BALANCED
// preset (-10% threshold). The price rises, then declines 4% per candle;
// once the mock engine is fully invested the equity drawdown tracks the
// price drawdown, so the first breaching step is computed directly from
// the candle path.
func DrawdownCrashScenario() Scenario {
	ds := dataset.StepwiseCrash("drawdown-crash", "CRASH_TEST",
		crashCandles, crashStart, 100, crashRiseStep, crashDropStep)
	preset := domain.PresetBalanced

	return Scenario{
		Name:    "drawdown_crash",
		Dataset: ds,
		Preset:  preset,
		NewEngine: func() engine.SignalEngine {
			return engine.NewMock(mockSeed)
		},
		ExpectedCode:           domain.RuleDrawdownBreach,
		ExpectedFirstBlockStep: firstDrawdownBreachStep(ds, preset),
	}
}

// HealthFailureScenario forces health_ok=false from a known step over flat
// data, so the health rule is the only one that can fire.
func HealthFailureScenario() Scenario {
	ds := dataset.FlatTrend("health-failure", "HEALTH_TEST", healthCandles, 100)

	return Scenario{
		Name:    "health_failure",
		Dataset: ds,
		Preset:  domain.PresetBalanced,
		NewEngine: func() engine.SignalEngine {
			return engine.NewMock(mockSeed)
		},
		HealthSchedule: func(step int) bool {
			return step < healthFailStep
		},
		ExpectedCode:           domain.RuleHealthBlocked,
		ExpectedFirstBlockStep: healthFailStep,
	}
}

// BearRegimeScenario combines a forced monotonic decline with scripted BUY
// pressure under a STRICT preset. The drawdown threshold is widened so the
// regime guard is isolated: the first block must be REGIME_BLOCKED at the
// step the trailing-window return first classifies BEAR.
func BearRegimeScenario() Scenario {
	ds := dataset.BearTrend("bear-regime", "BEAR_TEST", bearCandles, 100, bearDeclineStep)

	preset := domain.Preset{
		Name:                 "BEAR_GUARD",
		MaxDrawdownThreshold: -0.95,
		RegimeGuardMode:      domain.GuardModeStrict,
		HealthCheckEnabled:   true,
		Description:          "Crash fixture: wide drawdown threshold isolates the regime guard.",
	}

	return Scenario{
		Name:    "bear_regime_strict_block",
		Dataset: ds,
		Preset:  preset,
		NewEngine: func() engine.SignalEngine {
			return engine.NewConstant(domain.ActionBuy, 0.9)
		},
		ExpectedCode:           domain.RuleRegimeBlocked,
		ExpectedFirstBlockStep: firstBearStep(ds, market.DefaultConfig()),
	}
}

// AllScenarios returns the standard crash suite.
func AllScenarios() []Scenario {
	return []Scenario{
		DrawdownCrashScenario(),
		HealthFailureScenario(),
		BearRegimeScenario(),
	}
}

// firstDrawdownBreachStep scans the close path with a running peak and
// returns the first step whose price drawdown exceeds the preset's
// threshold magnitude. Valid whenever the run is fully invested before the
// peak, which the fixture's rise phase guarantees.
func firstDrawdownBreachStep(ds *domain.Dataset, preset domain.Preset) int {
	limit := -preset.MaxDrawdownThreshold
	peak := 0.0
	for i, c := range ds.Candles {
		if c.Close > peak {
			peak = c.Close
		}
		if peak > 0 && (peak-c.Close)/peak > limit {
			return i
		}
	}
	return -1
}

// firstBearStep returns the first step at which the trailing-window return
// classifies BEAR under the given regime parameters.
func firstBearStep(ds *domain.Dataset, cfg market.Config) int {
	closes := ds.Closes()
	for i := cfg.RegimeWindow; i < len(closes); i++ {
		first := closes[i-cfg.RegimeWindow]
		if first <= 0 {
			continue
		}
		if (closes[i]-first)/first < -cfg.RegimeThreshold {
			return i
		}
	}
	return -1
}
