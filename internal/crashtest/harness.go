package crashtest

import (
	"context"
	"fmt"
	"log"

	"capital-shield/internal/domain"
	"capital-shield/internal/simulation"
)

// Outcome is the result of running one scenario.
type Outcome struct {
	Scenario string

	Baseline *domain.SimulationResult
	Shielded *domain.SimulationResult

	// FirstBlockStep is the first ledger step at which the expected rule
	// triggered in the shielded run, or -1 if it never did.
	FirstBlockStep int

	// Passed reports whether the expected rule fired at exactly the
	// expected step.
	Passed bool
}

// Harness runs crash scenarios through the simulation runner and checks
// their expected outcomes.
type Harness struct {
	base   simulation.Config
	logger *log.Logger
}

// NewHarness creates a harness. The base config supplies initial equity and
// market parameters; each scenario overrides the health schedule.
func NewHarness(base simulation.Config, logger *log.Logger) *Harness {
	return &Harness{base: base, logger: logger}
}

// Run executes one scenario in both modes and verifies the shielded run
// triggers the expected rule at the expected step.
func (h *Harness) Run(ctx context.Context, sc Scenario) (*Outcome, error) {
	cfg := h.base
	cfg.HealthSchedule = sc.HealthSchedule
	runner := simulation.NewRunner(cfg, h.logger)

	baseline, err := runner.Run(ctx, sc.NewEngine(), sc.Dataset, sc.Preset, domain.ModeBaseline)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: baseline: %w", sc.Name, err)
	}
	shielded, err := runner.Run(ctx, sc.NewEngine(), sc.Dataset, sc.Preset, domain.ModeShielded)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: shielded: %w", sc.Name, err)
	}

	first := firstTriggerStep(shielded.Ledger, sc.ExpectedCode)
	return &Outcome{
		Scenario:       sc.Name,
		Baseline:       baseline,
		Shielded:       shielded,
		FirstBlockStep: first,
		Passed:         first == sc.ExpectedFirstBlockStep,
	}, nil
}

// RunAll executes every scenario, continuing past failures so the report
// covers the full suite. A scenario that errors out is reported as failed.
func (h *Harness) RunAll(ctx context.Context, scenarios []Scenario) ([]*Outcome, error) {
	outcomes := make([]*Outcome, 0, len(scenarios))
	var firstErr error
	for _, sc := range scenarios {
		out, err := h.Run(ctx, sc)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if h.logger != nil {
				h.logger.Printf("scenario %s failed: %v", sc.Name, err)
			}
			outcomes = append(outcomes, &Outcome{Scenario: sc.Name, FirstBlockStep: -1})
			continue
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, firstErr
}

// firstTriggerStep scans the ledger for the first step whose decision
// triggered the given rule.
func firstTriggerStep(ledger []domain.TradeLedgerEntry, code domain.RuleCode) int {
	for i, entry := range ledger {
		if entry.Decision.Triggered(code) {
			return i
		}
	}
	return -1
}
