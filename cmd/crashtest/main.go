// Package main runs the crash scenario suite and reports whether each
// safety rule fired at its expected step.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"capital-shield/internal/crashtest"
	"capital-shield/internal/simulation"
)

func main() {
	seed := flag.Int64("seed", 42, "Seed for mock-engine scenarios")
	initialEquity := flag.Float64("initial-equity", 100000, "Starting capital per run")
	flag.Parse()

	logger := log.New(os.Stderr, "[crashtest] ", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	cfg := simulation.DefaultConfig()
	cfg.InitialEquity = *initialEquity
	cfg.Seed = *seed

	harness := crashtest.NewHarness(cfg, logger)
	scenarios := crashtest.AllScenarios()

	outcomes, err := harness.RunAll(ctx, scenarios)
	if err != nil {
		logger.Printf("suite error: %v", err)
	}

	failed := 0
	fmt.Println()
	fmt.Println("=== Crash Test Suite ===")
	for i, out := range outcomes {
		status := "PASS"
		if !out.Passed {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%-28s %s  rule=%s expected_step=%d actual_step=%d\n",
			out.Scenario, status,
			scenarios[i].ExpectedCode, scenarios[i].ExpectedFirstBlockStep, out.FirstBlockStep)
		if out.Shielded != nil {
			fmt.Printf("    baseline_dd=%.4f shielded_dd=%.4f blocked=%d\n",
				out.Baseline.MaxDrawdown, out.Shielded.MaxDrawdown, out.Shielded.BlockedCount)
		}
	}
	fmt.Printf("\n%d/%d scenarios passed\n", len(outcomes)-failed, len(outcomes))

	if failed > 0 || err != nil {
		os.Exit(1)
	}
}
