package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"hopwalk/internal/stats"
	"hopwalk/internal/storage"
	hopapi "hopwalk/pkg/hopwalk"
)

const exportsDir = "exports"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "report":
		return runReport(ctx, args[1:])
	case "error":
		return runError(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hopwalk.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := hopapi.New(hopapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	patternsPath := fs.String("patterns", "", "patterns JSON path (rows of booleans or +/- strings)")
	temp := fs.Float64("temp", 1.0, "walk temperature; negative focuses above the entropy peak")
	steps := fs.Int64("steps", 1_000_000, "Monte Carlo step count")
	refineEvery := fs.Int64("refine-every", 100_000, "steps between weight refinements")
	seed := fs.Int64("seed", 1, "rng seed")
	fixedTemp := fs.Bool("fixed-temp", false, "disable the adaptive bias and walk at the Boltzmann distribution")
	resumeFrom := fs.String("resume-from", "", "seed histograms and weights from a stored run id")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hopwalk.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = hopapi.RunRequest{
			RunID:            *runID,
			Temp:             *temp,
			Steps:            *steps,
			RefineEvery:      *refineEvery,
			Seed:             *seed,
			FixedTemperature: *fixedTemp,
			ResumeFrom:       *resumeFrom,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"run-id":       *runID,
			"temp":         *temp,
			"steps":        *steps,
			"refine-every": *refineEvery,
			"seed":         *seed,
			"fixed-temp":   *fixedTemp,
			"resume-from":  *resumeFrom,
		})
	}
	if *patternsPath != "" {
		patterns, err := loadPatterns(*patternsPath)
		if err != nil {
			return err
		}
		req.Patterns = patterns
	}
	if len(req.Patterns) == 0 {
		return errors.New("run requires patterns, via --patterns or the config file")
	}

	client, err := hopapi.New(hopapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("run completed run_id=%s steps=%d accepted=%d entropy_peak=%d sample_error=%.6f\n",
		summary.RunID,
		summary.Steps,
		summary.Accepted,
		summary.EntropyPeak,
		summary.SampleError,
	)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hopwalk.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := hopapi.New(hopapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	items, err := client.Runs(ctx, hopapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	for _, item := range items {
		fmt.Println(stats.RunLine(item.RunID, item.CreatedAtUTC, item.Temp, item.Steps, item.FixedTemperature))
	}
	return nil
}

func runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	table := fs.String("table", "energy", "table to render: energy|spins|distances")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hopwalk.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("report requires --run-id")
	}

	client, err := hopapi.New(hopapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	report, err := client.Report(ctx, *runID, *table)
	if err != nil {
		return err
	}
	fmt.Print(report)
	return nil
}

func runError(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("error", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	temp := fs.Float64("temp", 0, "temperature to evaluate at (0 uses the run's own)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hopwalk.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("error requires --run-id")
	}

	client, err := hopapi.New(hopapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	estimate, err := client.SampleError(ctx, *runID, *temp)
	if err != nil {
		return err
	}
	fmt.Printf("run_id=%s sample_error=%.6f\n", *runID, estimate)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	outDir := fs.String("out", exportsDir, "export output directory")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "hopwalk.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("export requires --run-id")
	}

	client, err := hopapi.New(hopapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	tables, err := client.Tables(ctx, *runID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(*outDir, *runID+".json")
	data, err := json.MarshalIndent(tables, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", *runID, filepath.Clean(outPath))
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: hopwalkctl <init|run|runs|report|error|export> [flags]", msg)
}
