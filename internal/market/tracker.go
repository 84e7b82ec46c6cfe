// Package market maintains per-asset rolling market state across a
// simulation run: equity, peak, drawdown, regime and health.
package market

import (
	"capital-shield/internal/domain"
)

// Config holds the regime classification parameters. The trailing window
// length is a configuration parameter, not a constant.
type Config struct {
	// RegimeWindow is the number of trailing candles the return is
	// measured over. The classifier stays SIDEWAYS until the window fills.
	RegimeWindow int

	// RegimeThreshold is the absolute return magnitude that flips the
	// regime out of SIDEWAYS (e.g. 0.05 for +/-5%).
	RegimeThreshold float64
}

// DefaultConfig returns the default regime parameters.
func DefaultConfig() Config {
	return Config{
		RegimeWindow:    10,
		RegimeThreshold: 0.05,
	}
}

// Tracker owns one asset's MarketState for the duration of a run.
// It is not safe for concurrent use; each run owns its own tracker.
type Tracker struct {
	cfg    Config
	state  domain.MarketState
	closes []float64 // trailing closes, at most RegimeWindow+1
}

// NewTracker creates a tracker with equity and peak initialized to the
// starting equity and health defaulting to true.
func NewTracker(assetID string, initialEquity float64, cfg Config) *Tracker {
	if cfg.RegimeWindow <= 0 {
		cfg.RegimeWindow = DefaultConfig().RegimeWindow
	}
	if cfg.RegimeThreshold <= 0 {
		cfg.RegimeThreshold = DefaultConfig().RegimeThreshold
	}
	return &Tracker{
		cfg: cfg,
		state: domain.MarketState{
			AssetID:       assetID,
			PeakEquity:    initialEquity,
			CurrentEquity: initialEquity,
			Regime:        domain.RegimeSideways,
			HealthOK:      true,
		},
		closes: make([]float64, 0, cfg.RegimeWindow+1),
	}
}

// Step advances the state by one candle: updates equity and peak, recomputes
// the drawdown fraction, and reclassifies the regime from the trailing
// close-price window.
func (t *Tracker) Step(candle domain.Candle, currentEquity float64) {
	t.state.CurrentEquity = currentEquity
	if currentEquity > t.state.PeakEquity {
		t.state.PeakEquity = currentEquity
	}

	if t.state.PeakEquity > 0 {
		dd := (t.state.PeakEquity - t.state.CurrentEquity) / t.state.PeakEquity
		if dd < 0 {
			dd = 0
		}
		t.state.DrawdownFraction = dd
	} else {
		t.state.DrawdownFraction = 0
	}

	t.closes = append(t.closes, candle.Close)
	if len(t.closes) > t.cfg.RegimeWindow+1 {
		t.closes = t.closes[1:]
	}
	t.state.Regime = t.classify()
}

// classify derives the regime from the return over the trailing window.
func (t *Tracker) classify() domain.Regime {
	if len(t.closes) < t.cfg.RegimeWindow+1 {
		return domain.RegimeSideways
	}
	first := t.closes[0]
	last := t.closes[len(t.closes)-1]
	if first <= 0 {
		return domain.RegimeSideways
	}
	ret := (last - first) / first
	switch {
	case ret > t.cfg.RegimeThreshold:
		return domain.RegimeBull
	case ret < -t.cfg.RegimeThreshold:
		return domain.RegimeBear
	default:
		return domain.RegimeSideways
	}
}

// SetHealth sets the externally supplied health flag.
func (t *Tracker) SetHealth(ok bool) {
	t.state.HealthOK = ok
}

// State returns a copy of the current market state.
func (t *Tracker) State() domain.MarketState {
	return t.state
}
