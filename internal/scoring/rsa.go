// Package scoring computes the survival score (RSA): a composite [0, 1]
// metric balancing terminal equity against maximum drawdown.
package scoring

import (
	"errors"
	"fmt"
	"math"
)

// Scoring errors.
var (
	// ErrNonPositiveInitialEquity is returned when a score is requested
	// for a run whose initial equity is zero or negative.
	ErrNonPositiveInitialEquity = errors.New("initial equity must be positive")

	// ErrDrawdownOutOfRange is returned when the max drawdown fraction is
	// outside [0, 1].
	ErrDrawdownOutOfRange = errors.New("max drawdown fraction must be in [0, 1]")
)

// Score computes the survival score:
//
//	TE_norm = clamp(terminal/initial, 0, 2) / 2
//	RSA     = 0.5*TE_norm + 0.5*(1 - maxDrawdownFraction)
//
// The result is always in [0, 1]. Score is pure: identical inputs always
// yield identical output.
func Score(terminalEquity, initialEquity, maxDrawdownFraction float64) (float64, error) {
	if initialEquity <= 0 || math.IsNaN(initialEquity) {
		return 0, fmt.Errorf("%w: got %v", ErrNonPositiveInitialEquity, initialEquity)
	}
	if math.IsNaN(maxDrawdownFraction) || maxDrawdownFraction < 0 || maxDrawdownFraction > 1 {
		return 0, fmt.Errorf("%w: got %v", ErrDrawdownOutOfRange, maxDrawdownFraction)
	}

	teRatio := terminalEquity / initialEquity
	teNorm := clamp(teRatio, 0, 2) / 2

	rsa := 0.5*teNorm + 0.5*(1-maxDrawdownFraction)
	return clamp(rsa, 0, 1), nil
}

// Grade maps a survival score to a letter grade for reporting.
func Grade(rsa float64) string {
	switch {
	case rsa >= 0.95:
		return "A+"
	case rsa >= 0.85:
		return "A"
	case rsa >= 0.75:
		return "B+"
	case rsa >= 0.65:
		return "B"
	case rsa >= 0.55:
		return "C+"
	case rsa >= 0.45:
		return "C"
	case rsa >= 0.35:
		return "D"
	default:
		return "F"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
