//go:build sqlite

package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"hopwalk/internal/model"
)

func TestRunCommandSQLitePersistsAcrossInvocations(t *testing.T) {
	workdir := t.TempDir()
	dbPath := filepath.Join(workdir, "hopwalk.db")
	patternsPath := filepath.Join(workdir, "patterns.json")
	if err := os.WriteFile(patternsPath, []byte(`["+++++"]`), 0o644); err != nil {
		t.Fatalf("write patterns: %v", err)
	}

	ctx := context.Background()
	args := []string{
		"run",
		"--store", "sqlite",
		"--db-path", dbPath,
		"--run-id", "it-run",
		"--patterns", patternsPath,
		"--steps", "2000",
		"--refine-every", "500",
		"--seed", "11",
	}
	if err := run(ctx, args); err != nil {
		t.Fatalf("run command: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected sqlite db at %s: %v", dbPath, err)
	}

	if err := run(ctx, []string{"runs", "--store", "sqlite", "--db-path", dbPath}); err != nil {
		t.Fatalf("runs command: %v", err)
	}
	if err := run(ctx, []string{"report", "--store", "sqlite", "--db-path", dbPath, "--run-id", "it-run"}); err != nil {
		t.Fatalf("report command: %v", err)
	}
	if err := run(ctx, []string{"error", "--store", "sqlite", "--db-path", dbPath, "--run-id", "it-run"}); err != nil {
		t.Fatalf("error command: %v", err)
	}

	outDir := filepath.Join(workdir, "exports")
	if err := run(ctx, []string{"export", "--store", "sqlite", "--db-path", dbPath, "--run-id", "it-run", "--out", outDir}); err != nil {
		t.Fatalf("export command: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "it-run.json"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var tables model.RunTables
	if err := json.Unmarshal(data, &tables); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(tables.Energies) == 0 || len(tables.Weights) == 0 {
		t.Fatalf("exported tables should carry data: %+v", tables)
	}
}
