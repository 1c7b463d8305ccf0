package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeJSON(t *testing.T, name string, payload any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := writeJSON(t, "run_config.json", map[string]any{
		"run_id":            "cfg-run",
		"patterns":          []any{"++-", []any{true, false, true}},
		"temp":              -2.5,
		"steps":             4000,
		"refine_every":      500,
		"seed":              77,
		"fixed_temperature": true,
		"resume_from":       "older",
	})

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load run request: %v", err)
	}
	if req.RunID != "cfg-run" || req.Seed != 77 || req.ResumeFrom != "older" {
		t.Fatalf("unexpected base fields: %+v", req)
	}
	if req.Temp != -2.5 || req.Steps != 4000 || req.RefineEvery != 500 {
		t.Fatalf("unexpected walk fields: %+v", req)
	}
	if !req.FixedTemperature {
		t.Fatal("expected fixed temperature")
	}
	want := [][]bool{{true, true, false}, {true, false, true}}
	if len(req.Patterns) != len(want) {
		t.Fatalf("pattern count: got %d want %d", len(req.Patterns), len(want))
	}
	for i, pattern := range want {
		for j, cell := range pattern {
			if req.Patterns[i][j] != cell {
				t.Fatalf("pattern[%d][%d]: got %t want %t", i, j, req.Patterns[i][j], cell)
			}
		}
	}
}

func TestLoadRunRequestFromConfigRejectsBadPatterns(t *testing.T) {
	for _, payload := range []any{
		map[string]any{"patterns": "not-an-array"},
		map[string]any{"patterns": []any{"+?"}},
		map[string]any{"patterns": []any{[]any{2.0}}},
	} {
		path := writeJSON(t, "bad_config.json", payload)
		if _, err := loadRunRequestFromConfig(path); err == nil {
			t.Fatalf("expected error for %v", payload)
		}
	}
}

func TestOverrideFromFlagsOnlyTouchesSetFlags(t *testing.T) {
	path := writeJSON(t, "run_config.json", map[string]any{
		"run_id": "cfg-run",
		"temp":   3.0,
		"steps":  4000,
	})
	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load run request: %v", err)
	}

	overrideFromFlags(&req, map[string]bool{"temp": true, "seed": true}, map[string]any{
		"run-id": "flag-run",
		"temp":   -1.0,
		"steps":  int64(99),
		"seed":   int64(5),
	})
	if req.RunID != "cfg-run" {
		t.Fatalf("run id should keep config value, got %q", req.RunID)
	}
	if req.Temp != -1.0 || req.Seed != 5 {
		t.Fatalf("set flags should override: %+v", req)
	}
	if req.Steps != 4000 {
		t.Fatalf("unset flag should not override steps: %d", req.Steps)
	}
}

func TestLoadPatternsNumericAndSigned(t *testing.T) {
	path := writeJSON(t, "patterns.json", []any{
		[]any{1.0, 0.0, -1.0},
		"+-+",
	})
	patterns, err := loadPatterns(path)
	if err != nil {
		t.Fatalf("load patterns: %v", err)
	}
	want := [][]bool{{true, false, false}, {true, false, true}}
	for i, pattern := range want {
		for j, cell := range pattern {
			if patterns[i][j] != cell {
				t.Fatalf("pattern[%d][%d]: got %t want %t", i, j, patterns[i][j], cell)
			}
		}
	}
}

func TestLoadPatternsMissingFile(t *testing.T) {
	if _, err := loadPatterns(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
