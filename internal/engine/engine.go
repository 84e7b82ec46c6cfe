// Package engine provides the signal engine abstraction: a polymorphic
// source of proposed trades consumed by the simulation runner.
package engine

import (
	"context"
	"errors"

	"capital-shield/internal/domain"
)

// ErrEngineFault is returned when a signal engine cannot produce a signal.
// The simulation runner degrades the step to HOLD rather than aborting.
var ErrEngineFault = errors.New("signal engine fault")

// Snapshot is the market view handed to a signal engine for one step.
// Closes holds the trailing close prices, oldest to newest, including the
// current candle.
type Snapshot struct {
	AssetID   string
	Timestamp int64 // Unix ms
	Closes    []float64
}

// SignalEngine produces one proposed trade per snapshot.
type SignalEngine interface {
	// GenerateSignal returns the proposed trade for the snapshot.
	// Implementations must not retain the snapshot's slices.
	GenerateSignal(ctx context.Context, snap Snapshot) (domain.ProposedTrade, error)

	// Name returns the engine identifier.
	Name() string
}
