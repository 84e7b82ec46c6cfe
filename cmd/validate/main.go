// Package main runs the multi-dataset validation batch and writes the
// comparison report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"capital-shield/internal/config"
	"capital-shield/internal/dataset"
	"capital-shield/internal/domain"
	"capital-shield/internal/observability"
	"capital-shield/internal/reporting"
	"capital-shield/internal/simulation"
	"capital-shield/internal/validation"
)

func main() {
	env := config.LoadEnv()

	datasetGlob := flag.String("datasets", "", "Glob of candle CSV files (e.g. data/*.csv)")
	synthetic := flag.Bool("synthetic", false, "Validate against the built-in synthetic suite instead of files")
	assetID := flag.String("asset-id", "ASSET", "Asset identifier for loaded datasets")
	presetNames := flag.String("presets", "", "Comma-separated presets (empty = all registered)")
	presetFile := flag.String("preset-file", "", "Optional YAML file with custom preset definitions")
	seed := flag.Int64("seed", 42, "Seed for the mock signal engine")
	initialEquity := flag.Float64("initial-equity", 100000, "Starting capital per run")

	maxConcurrent := flag.Int("max-concurrent", 4, "Combinations in flight at once")
	combinationTimeout := flag.Duration("combination-timeout", 2*time.Minute, "Per-combination deadline")

	outputDir := flag.String("output-dir", "output", "Directory for report files")
	metricsAddr := flag.String("metrics-addr", env.MetricsAddr, "Prometheus metrics HTTP address (empty = disabled)")

	flag.Parse()

	logger := log.New(os.Stderr, "[validate] ", log.LstdFlags)

	registry := config.DefaultRegistry()
	if *presetFile != "" {
		if err := config.LoadPresetFile(*presetFile, registry); err != nil {
			logger.Fatalf("load preset file: %v", err)
		}
	}
	presets, err := registry.GetAll(*presetNames)
	if err != nil {
		logger.Fatalf("resolve presets: %v (known: %v)", err, registry.Names())
	}

	datasets, err := collectDatasets(*datasetGlob, *synthetic, *assetID, *seed, logger)
	if err != nil {
		logger.Fatalf("collect datasets: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("Serving metrics on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("metrics server error: %v", err)
			}
		}()
	}

	simCfg := simulation.DefaultConfig()
	simCfg.InitialEquity = *initialEquity
	simCfg.Seed = *seed

	validator := validation.NewValidator(validation.Config{
		Simulation:         simCfg,
		MaxConcurrent:      *maxConcurrent,
		CombinationTimeout: *combinationTimeout,
	}, logger)

	logger.Printf("Validating %d datasets x %d presets (seed=%d)...", len(datasets), len(presets), *seed)
	start := time.Now()

	report, err := validator.Validate(ctx, datasets, presets)
	if err != nil {
		logger.Fatalf("validation failed: %v", err)
	}
	observability.DefaultMetrics.BatchDuration.Observe(time.Since(start).Seconds())

	if err := writeReport(*outputDir, report); err != nil {
		logger.Fatalf("write report: %v", err)
	}
	observability.DefaultMetrics.ReportsGenerated.Inc()

	summary := reporting.Summarize(report)
	logger.Printf("Done in %v: %d runs, %d failures, drawdown improved in %d runs. Report in %s/",
		time.Since(start), summary.RunCount, summary.FailureCount, summary.ImprovedCount, *outputDir)

	if summary.FailureCount > 0 {
		os.Exit(1)
	}
}

// collectDatasets loads CSVs matching the glob, or the synthetic suite.
func collectDatasets(glob string, synthetic bool, assetID string, seed int64, logger *log.Logger) ([]*domain.Dataset, error) {
	if synthetic {
		return []*domain.Dataset{
			dataset.RandomWalk("random-walk", assetID, 250, 100, 0.03, seed),
			dataset.StepwiseCrash("stepwise-crash", assetID, 120, 60, 100, 0.02, 0.04),
			dataset.BearTrend("bear-trend", assetID, 120, 100, 0.02),
			dataset.FlatTrend("flat", assetID, 120, 100),
		}, nil
	}

	if glob == "" {
		return nil, fmt.Errorf("--datasets is required (or use --synthetic)")
	}
	paths, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("bad glob %q: %w", glob, err)
	}

	var datasets []*domain.Dataset
	for _, path := range paths {
		ds, err := dataset.LoadCSV(path, assetID)
		if err != nil {
			// Malformed files become failed combinations later; loading
			// errors here mean unreadable files and stop the batch.
			return nil, err
		}
		logger.Printf("loaded %s (%d candles)", ds.DatasetID, len(ds.Candles))
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// writeReport renders the Markdown and CSV report files.
func writeReport(dir string, report *domain.ComparisonReport) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	md := reporting.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(dir, "VALIDATION_REPORT.md"), []byte(md), 0644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}

	csv := reporting.RenderCSV(report.Rows)
	if err := os.WriteFile(filepath.Join(dir, "validation_results.csv"), []byte(csv), 0644); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}

	return nil
}
