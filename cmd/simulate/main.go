// Package main runs one baseline/shielded simulation pair over a single
// dataset and preset.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"capital-shield/internal/config"
	"capital-shield/internal/dataset"
	"capital-shield/internal/domain"
	"capital-shield/internal/idhash"
	"capital-shield/internal/scoring"
	"capital-shield/internal/simulation"
	"capital-shield/internal/storage"
	chstore "capital-shield/internal/storage/clickhouse"
	"capital-shield/internal/storage/memory"
	"capital-shield/internal/storage/migrations"
	pgstore "capital-shield/internal/storage/postgres"
	"capital-shield/internal/validation"
)

func main() {
	env := config.LoadEnv()

	datasetPath := flag.String("dataset", "", "Candle CSV file to simulate (required unless --synthetic)")
	synthetic := flag.Bool("synthetic", false, "Use a seeded random-walk dataset instead of a file")
	assetID := flag.String("asset-id", "ASSET", "Asset identifier for the dataset")
	presetName := flag.String("preset", "BALANCED", "Risk preset: CONSERVATIVE, BALANCED, AGGRESSIVE")
	presetFile := flag.String("preset-file", "", "Optional YAML file with custom preset definitions")
	seed := flag.Int64("seed", 42, "Seed for the mock signal engine")
	initialEquity := flag.Float64("initial-equity", 100000, "Starting capital")

	numCandles := flag.Int("candles", 200, "Synthetic dataset length")
	volatility := flag.Float64("volatility", 0.03, "Synthetic dataset per-candle volatility")

	postgresDSN := flag.String("postgres-dsn", env.PostgresDSN, "PostgreSQL connection string for run persistence")
	clickhouseDSN := flag.String("clickhouse-dsn", env.ClickHouseDSN, "ClickHouse connection string for curve persistence")
	persist := flag.Bool("persist", false, "Persist runs, ledgers and equity curves to storage")

	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	if *datasetPath == "" && !*synthetic {
		logger.Fatal("--dataset is required (or use --synthetic)")
	}

	registry := config.DefaultRegistry()
	if *presetFile != "" {
		if err := config.LoadPresetFile(*presetFile, registry); err != nil {
			logger.Fatalf("load preset file: %v", err)
		}
	}
	preset, err := registry.Get(*presetName)
	if err != nil {
		logger.Fatalf("resolve preset: %v (known: %v)", err, registry.Names())
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

	var ds *domain.Dataset
	if *synthetic {
		ds = dataset.RandomWalk("synthetic", *assetID, *numCandles, 100, *volatility, *seed)
	} else {
		ds, err = dataset.LoadCSV(*datasetPath, *assetID)
		if err != nil {
			logger.Fatalf("load dataset: %v", err)
		}
	}

	cfg := simulation.DefaultConfig()
	cfg.InitialEquity = *initialEquity
	cfg.Seed = *seed

	runner := simulation.NewRunner(cfg, logger)

	logger.Printf("Running pair: dataset=%s preset=%s seed=%d", ds.DatasetID, preset.Name, *seed)

	baseline, shielded, err := runner.RunPair(ctx, ds, preset)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}

	if *persist {
		if err := persistPair(ctx, logger, *postgresDSN, *clickhouseDSN, *seed, ds, baseline, shielded); err != nil {
			logger.Fatalf("persist runs: %v", err)
		}
	}

	row := validation.Compare(baseline, shielded)
	if *outputJSON {
		output, _ := json.MarshalIndent(row, "", "  ")
		fmt.Println(string(output))
	} else {
		printComparison(row)
	}
}

// persistPair writes both runs to the configured stores. Postgres is
// required; ClickHouse is optional and only holds the equity curves.
func persistPair(ctx context.Context, logger *log.Logger, postgresDSN, clickhouseDSN string, seed int64, ds *domain.Dataset, results ...*domain.SimulationResult) error {
	var resultStore storage.SimulationResultStore
	var curveStore storage.EquityCurveStore
	var candleStore storage.CandleStore

	if postgresDSN == "" {
		logger.Print("no --postgres-dsn, persisting to memory only (results discarded on exit)")
		resultStore = memory.NewSimulationResultStore()
		curveStore = memory.NewEquityCurveStore()
		candleStore = memory.NewCandleStore()
	} else {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("apply postgres migrations: %w", err)
		}
		resultStore = pgstore.NewSimulationResultStore(pool)

		if clickhouseDSN != "" {
			conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
			if err != nil {
				return fmt.Errorf("apply clickhouse migrations: %w", err)
			}
			defer conn.Close()
			curveStore = chstore.NewEquityCurveStore(conn)
			candleStore = chstore.NewCandleStore(conn)
		} else {
			curveStore = memory.NewEquityCurveStore()
		}
	}

	if candleStore != nil {
		switch err := candleStore.InsertDataset(ctx, ds); {
		case errors.Is(err, storage.ErrDuplicateKey):
			logger.Printf("dataset %s already stored, skipping candles", ds.DatasetID)
		case err != nil:
			return fmt.Errorf("insert candles: %w", err)
		}
	}

	for _, r := range results {
		runID := idhash.RunID(ds.DatasetID, r.PresetName, string(r.Mode), seed)
		if err := resultStore.Insert(ctx, runID, r); err != nil {
			return fmt.Errorf("insert run %s: %w", runID, err)
		}
		if err := curveStore.InsertCurve(ctx, runID, r.EquityCurve); err != nil {
			return fmt.Errorf("insert curve %s: %w", runID, err)
		}
		logger.Printf("persisted run %s (%s)", runID, r.Mode)
	}
	return nil
}

// printComparison outputs a human-readable baseline/shielded comparison.
func printComparison(row domain.ComparisonRow) {
	fmt.Println()
	fmt.Println("=== Simulation Result ===")
	fmt.Printf("Dataset:            %s\n", row.DatasetID)
	fmt.Printf("Preset:             %s\n", row.PresetName)
	fmt.Println()

	printRun("Baseline", row.Baseline)
	printRun("Shielded", row.Shielded)

	fmt.Println("Delta (shielded - baseline):")
	fmt.Printf("  Max Drawdown:     %+.4f\n", row.MaxDrawdownDelta)
	fmt.Printf("  Trades:           %+d\n", row.TradeCountDelta)
	fmt.Printf("  Blocked:          %d\n", row.BlockedCount)
	fmt.Printf("  Survival Score:   %+.4f\n", row.SurvivalScoreDelta)
}

func printRun(label string, r *domain.SimulationResult) {
	fmt.Printf("%s:\n", label)
	fmt.Printf("  Terminal Equity:  %.2f (from %.2f)\n", r.TerminalEquity, r.InitialEquity)
	fmt.Printf("  Max Drawdown:     %.4f\n", r.MaxDrawdown)
	fmt.Printf("  Trades:           %d\n", r.TradeCount)
	fmt.Printf("  Blocked:          %d\n", r.BlockedCount)
	fmt.Printf("  Survival Score:   %.4f (%s)\n", r.SurvivalScore, scoring.Grade(r.SurvivalScore))
	fmt.Println()
}
